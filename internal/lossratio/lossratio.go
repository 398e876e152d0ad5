// Package lossratio computes loss ratios (claims / premium) over a dataset,
// either overall or ranked per category.
package lossratio

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

// RatioDigits is the rounding precision of the overall ratio
const RatioDigits = 4

// Aggregator computes grouped ratios
type Aggregator struct {
	log zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(log zerolog.Logger) *Aggregator {
	return &Aggregator{
		log: log.With().Str("component", "lossratio.aggregator").Logger(),
	}
}

// Overall returns sum(numerator) / sum(denominator) rounded to RatioDigits
// A zero denominator sum yields contracts.UndefinedRatio.
func (a *Aggregator) Overall(ds *dataset.Dataset, numerator, denominator string) (contracts.Ratio, error) {
	num, err := columnSum(ds, numerator)
	if err != nil {
		return contracts.UndefinedRatio, err
	}
	den, err := columnSum(ds, denominator)
	if err != nil {
		return contracts.UndefinedRatio, err
	}

	ratio := contracts.NewRatio(num, den).Rounded(RatioDigits)

	a.log.Debug().
		Str("numerator", numerator).
		Str("denominator", denominator).
		Float64("numerator_sum", num).
		Float64("denominator_sum", den).
		Bool("defined", ratio.Defined).
		Msg("overall ratio calculated")

	return ratio, nil
}

// ByCategory returns one ratio per distinct non-null value of category,
// sorted by ratio descending. Groups with a zero denominator are undefined
// and sort after every defined group.
func (a *Aggregator) ByCategory(ds *dataset.Dataset, category, numerator, denominator string) ([]contracts.CategoryRatio, error) {
	groups, err := ds.Partition(category)
	if err != nil {
		return nil, err
	}
	num, numValid, err := ds.Floats(numerator)
	if err != nil {
		return nil, err
	}
	den, denValid, err := ds.Floats(denominator)
	if err != nil {
		return nil, err
	}

	rows := make([]contracts.CategoryRatio, 0, len(groups))
	for _, g := range groups {
		var numSum, denSum float64
		for _, i := range g.Rows {
			if numValid[i] {
				numSum += num[i]
			}
			if denValid[i] {
				denSum += den[i]
			}
		}
		rows = append(rows, contracts.CategoryRatio{
			Category:  g.Key,
			Claims:    numSum,
			Premium:   denSum,
			LossRatio: contracts.NewRatio(numSum, denSum),
		})
	}

	sortByRatio(rows)

	a.log.Debug().
		Str("category", category).
		Int("groups", len(rows)).
		Msg("ratio by category calculated")

	return rows, nil
}

// Summarize computes the overall ratio and one table per category
func (a *Aggregator) Summarize(ds *dataset.Dataset, categories []string, cols contracts.Columns) (*contracts.LossRatioSummary, error) {
	overall, err := a.Overall(ds, cols.Claims, cols.Premium)
	if err != nil {
		return nil, fmt.Errorf("overall loss ratio: %w", err)
	}

	summary := &contracts.LossRatioSummary{
		Overall: overall,
		Tables:  make([]contracts.CategoryTable, 0, len(categories)),
	}
	for _, cat := range categories {
		rows, err := a.ByCategory(ds, cat, cols.Claims, cols.Premium)
		if err != nil {
			return nil, fmt.Errorf("loss ratio by %s: %w", cat, err)
		}
		summary.Tables = append(summary.Tables, contracts.CategoryTable{Category: cat, Rows: rows})
	}

	a.log.Info().
		Str("overall", overall.String()).
		Int("tables", len(summary.Tables)).
		Msg("loss ratio summary completed")

	return summary, nil
}

// columnSum sums a numeric column, treating nulls as zero
func columnSum(ds *dataset.Dataset, name string) (float64, error) {
	values, valid, err := ds.Floats(name)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, v := range values {
		if valid[i] {
			sum += v
		}
	}
	return sum, nil
}

// sortByRatio orders rows by ratio descending, undefined last; ties keep input order
func sortByRatio(rows []contracts.CategoryRatio) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].LossRatio, rows[j].LossRatio
		if ri.Defined != rj.Defined {
			return ri.Defined
		}
		return ri.Value > rj.Value
	})
}
