// Package quality reports missing values and numeric distributions of a dataset.
package quality

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

// Inspector checks data completeness
type Inspector struct {
	log zerolog.Logger
}

// NewInspector creates a new inspector
func NewInspector(log zerolog.Logger) *Inspector {
	return &Inspector{
		log: log.With().Str("component", "quality.inspector").Logger(),
	}
}

// MissingSummary returns the percent of null values per column, highest first.
// The date column (optional) also counts unparseable dates as missing.
func (in *Inspector) MissingSummary(ds *dataset.Dataset, categorical, numerical []string, date string) ([]contracts.MissingValue, error) {
	columns := append(append([]string{}, categorical...), numerical...)
	if date != "" {
		columns = append(columns, date)
	}
	if err := ds.Require(columns...); err != nil {
		return nil, err
	}

	n := ds.Len()
	summary := make([]contracts.MissingValue, 0, len(columns))
	for _, col := range columns {
		var valid []bool
		var err error
		if col == date {
			_, valid, err = ds.Times(col)
		} else {
			_, valid, err = ds.Keys(col)
		}
		if err != nil {
			return nil, err
		}

		summary = append(summary, contracts.MissingValue{
			Column:  col,
			Percent: missingPercent(valid, n),
		})
	}

	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Percent > summary[j].Percent
	})

	in.log.Debug().
		Int("columns", len(summary)).
		Int("rows", n).
		Msg("missing value summary calculated")

	return summary, nil
}

func missingPercent(valid []bool, n int) float64 {
	if n == 0 {
		return 0
	}
	missing := 0
	for _, v := range valid {
		if !v {
			missing++
		}
	}
	return float64(missing) / float64(n) * 100
}
