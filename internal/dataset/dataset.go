package dataset

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/wonny/claimlens/internal/contracts"
)

// Dataset is an in-memory claims table backed by a gota DataFrame
// ⭐ SSOT: 모든 분석은 이 타입을 통해서만 컬럼에 접근
type Dataset struct {
	mu sync.RWMutex
	df dataframe.DataFrame
}

// New wraps a DataFrame, surfacing any deferred gota error
func New(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("build dataframe: %w", df.Err)
	}
	return &Dataset{df: df}, nil
}

// FromRecords builds a dataset from a header row followed by data rows
func FromRecords(records [][]string, opts Options) (*Dataset, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, contracts.ErrEmptyDataset
	}

	width := len(records[0])
	if len(records) == 1 {
		// gota는 헤더만 있는 입력을 거부하므로 0행 프레임을 직접 구성
		types := make([]series.Type, width)
		for i := range types {
			types[i] = series.String
		}
		return New(emptyFrame(records[0], types))
	}

	normalized := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, width)
		copy(row, rec)
		normalized[i] = row
	}

	df := dataframe.LoadRecords(normalized, opts.loadOptions()...)
	return New(df)
}

// Names returns the column names in order
func (d *Dataset) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.df.Names()
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.df.Nrow()
}

// HasColumn reports whether the dataset has a column with the given name
func (d *Dataset) HasColumn(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hasColumn(name)
}

func (d *Dataset) hasColumn(name string) bool {
	for _, n := range d.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Require fails with ErrColumnNotFound for the first absent column
func (d *Dataset) Require(names ...string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, name := range names {
		if !d.hasColumn(name) {
			return fmt.Errorf("%w: %s", contracts.ErrColumnNotFound, name)
		}
	}
	return nil
}

func (d *Dataset) column(name string) (series.Series, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.hasColumn(name) {
		return series.Series{}, fmt.Errorf("%w: %s", contracts.ErrColumnNotFound, name)
	}
	return d.df.Col(name), nil
}

func isNumeric(s series.Series) bool {
	t := s.Type()
	return t == series.Int || t == series.Float
}

// allNull reports whether every element is null (vacuously true with no rows).
// gota types such a column as String since it has no value to detect from.
func allNull(s series.Series) bool {
	for i := 0; i < s.Len(); i++ {
		if !s.Elem(i).IsNA() {
			return false
		}
	}
	return true
}

// Floats returns the numeric values of a column and a validity mask
// Null cells have valid[i] == false and values[i] == 0.
// A column with no non-null value is numeric with every row null.
func (d *Dataset) Floats(name string) (values []float64, valid []bool, err error) {
	s, err := d.column(name)
	if err != nil {
		return nil, nil, err
	}
	if !isNumeric(s) && allNull(s) {
		return make([]float64, s.Len()), make([]bool, s.Len()), nil
	}
	if !isNumeric(s) {
		return nil, nil, fmt.Errorf("%w: %s (%s)", contracts.ErrColumnNotNumeric, name, s.Type())
	}

	raw := s.Float()
	values = make([]float64, len(raw))
	valid = make([]bool, len(raw))
	for i, v := range raw {
		if s.Elem(i).IsNA() || math.IsNaN(v) {
			continue
		}
		values[i] = v
		valid[i] = true
	}
	return values, valid, nil
}

// Keys returns the values of a column as grouping keys and a validity mask
func (d *Dataset) Keys(name string) (keys []string, valid []bool, err error) {
	s, err := d.column(name)
	if err != nil {
		return nil, nil, err
	}

	n := s.Len()
	keys = make([]string, n)
	valid = make([]bool, n)
	isFloat := s.Type() == series.Float
	for i := 0; i < n; i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		if isFloat {
			f := e.Float()
			if math.IsNaN(f) {
				continue
			}
			keys[i] = strconv.FormatFloat(f, 'f', -1, 64)
		} else {
			keys[i] = e.String()
		}
		valid[i] = true
	}
	return keys, valid, nil
}

// Filter returns the rows whose key in column equals value
func (d *Dataset) Filter(column, value string) (*Dataset, error) {
	keys, valid, err := d.Keys(column)
	if err != nil {
		return nil, err
	}

	idx := make([]int, 0, len(keys))
	for i, k := range keys {
		if valid[i] && k == value {
			idx = append(idx, i)
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(idx) == 0 {
		return New(emptyFrame(d.df.Names(), d.df.Types()))
	}
	return New(d.df.Subset(idx))
}

// emptyFrame builds a zero-row frame with the given column names and types
func emptyFrame(names []string, types []series.Type) dataframe.DataFrame {
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = series.New([]string{}, types[i], name)
	}
	return dataframe.New(cols...)
}
