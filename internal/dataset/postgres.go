package dataset

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresSource loads a claims table from PostgreSQL
type PostgresSource struct {
	pool    *pgxpool.Pool
	table   string
	options Options
	log     zerolog.Logger
}

// NewPostgresSource creates a source reading every row of table ("schema.table" or "table")
func NewPostgresSource(pool *pgxpool.Pool, table string, opts Options, log zerolog.Logger) *PostgresSource {
	return &PostgresSource{
		pool:    pool,
		table:   table,
		options: opts,
		log:     log.With().Str("component", "dataset.postgres").Logger(),
	}
}

// Describe returns the table name
func (s *PostgresSource) Describe() string {
	return "postgres:" + s.table
}

// Load reads the whole table into a dataset
func (s *PostgresSource) Load(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	query := "SELECT * FROM " + pgx.Identifier(strings.Split(s.table, ".")).Sanitize()

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}

	records := [][]string{header}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = formatCell(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}

	ds, err := FromRecords(records, s.options)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("table", s.table).
		Int("rows", ds.Len()).
		Int("columns", len(header)).
		Dur("elapsed", time.Since(start)).
		Msg("dataset loaded")

	return ds, nil
}

// formatCell renders a driver value as a record cell; NULL becomes "NaN"
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NaN"
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return "NaN"
		}
		return strconv.FormatFloat(f.Float64, 'g', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
