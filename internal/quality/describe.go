package quality

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

// Describe summarizes the distribution of each numeric column (nulls skipped)
// Quartiles use the empirical quantile definition.
func (in *Inspector) Describe(ds *dataset.Dataset, columns []string) ([]contracts.ColumnSummary, error) {
	summaries := make([]contracts.ColumnSummary, 0, len(columns))
	for _, col := range columns {
		values, valid, err := ds.Floats(col)
		if err != nil {
			return nil, err
		}

		xs := make([]float64, 0, len(values))
		for i, v := range values {
			if valid[i] {
				xs = append(xs, v)
			}
		}
		summaries = append(summaries, summarize(col, xs))
	}
	return summaries, nil
}

func summarize(col string, xs []float64) contracts.ColumnSummary {
	s := contracts.ColumnSummary{Column: col, Count: len(xs)}
	if len(xs) == 0 {
		return s
	}

	sort.Float64s(xs)
	s.Mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		s.Std = stat.StdDev(xs, nil)
	}
	s.Min = xs[0]
	s.Max = xs[len(xs)-1]
	s.Q1 = stat.Quantile(0.25, stat.Empirical, xs, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	s.Q3 = stat.Quantile(0.75, stat.Empirical, xs, nil)
	return s
}
