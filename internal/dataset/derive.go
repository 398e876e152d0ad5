package dataset

import (
	"fmt"
	"strconv"

	"github.com/go-gota/gota/series"
)

// AddFloatColumn appends (or replaces) a numeric column; rows with valid[i] == false are null
func (d *Dataset) AddFloatColumn(name string, values []float64, valid []bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mutateFloat(name, values, valid)
}

func (d *Dataset) mutateFloat(name string, values []float64, valid []bool) error {
	if len(values) != d.df.Nrow() || len(valid) != len(values) {
		return fmt.Errorf("column %s: got %d values for %d rows", name, len(values), d.df.Nrow())
	}

	raw := make([]string, len(values))
	for i, v := range values {
		if !valid[i] {
			raw[i] = "NaN"
			continue
		}
		raw[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	df := d.df.Mutate(series.New(raw, series.Float, name))
	if df.Err != nil {
		return fmt.Errorf("add column %s: %w", name, df.Err)
	}
	d.df = df
	return nil
}

// EnsureMargin derives margin = premium - claims when the margin column is absent
// A row with a null premium or claims gets a null margin.
// Returns true when the column was added.
func (d *Dataset) EnsureMargin(premium, claims, margin string) (bool, error) {
	if d.HasColumn(margin) {
		return false, nil
	}

	prem, premValid, err := d.Floats(premium)
	if err != nil {
		return false, fmt.Errorf("derive %s: %w", margin, err)
	}
	clm, clmValid, err := d.Floats(claims)
	if err != nil {
		return false, fmt.Errorf("derive %s: %w", margin, err)
	}

	values := make([]float64, len(prem))
	valid := make([]bool, len(prem))
	for i := range prem {
		if premValid[i] && clmValid[i] {
			values[i] = prem[i] - clm[i]
			valid[i] = true
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	// 다른 호출자가 먼저 추가했을 수 있음
	if d.hasColumn(margin) {
		return false, nil
	}
	if err := d.mutateFloat(margin, values, valid); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureHasClaim derives a boolean column that is true where claims > 0
// Null claims count as no claim.
func (d *Dataset) EnsureHasClaim(claims, hasClaim string) (bool, error) {
	if d.HasColumn(hasClaim) {
		return false, nil
	}

	clm, valid, err := d.Floats(claims)
	if err != nil {
		return false, fmt.Errorf("derive %s: %w", hasClaim, err)
	}

	flags := make([]bool, len(clm))
	for i, v := range clm {
		flags[i] = valid[i] && v > 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hasColumn(hasClaim) {
		return false, nil
	}
	df := d.df.Mutate(series.New(flags, series.Bool, hasClaim))
	if df.Err != nil {
		return false, fmt.Errorf("add column %s: %w", hasClaim, df.Err)
	}
	d.df = df
	return true, nil
}
