// Package significance runs chi-squared and one-way ANOVA tests over dataset groups.
package significance

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

// Notes attached to ANOVA results that could not run
const (
	NoteInsufficientGroups = "Not enough groups with sufficient data to run ANOVA"
	NoteInsufficientMargin = "Not enough data to perform ANOVA"
	NoteZeroVariance       = "Within-group variance is zero; F statistic is undefined"
)

// minGroupSize is the smallest group kept for ANOVA (groups with a single value are skipped)
const minGroupSize = 2

// minGroups is the number of qualifying groups required to run ANOVA
const minGroups = 2

// Condition restricts the rows fed to a test to those where Column equals Value
type Condition struct {
	Column string
	Value  string
}

// Tester runs significance tests
type Tester struct {
	cols contracts.Columns
	log  zerolog.Logger
}

// NewTester creates a tester using cols for derived columns (Margin, HasClaim)
func NewTester(cols contracts.Columns, log zerolog.Logger) *Tester {
	return &Tester{
		cols: cols.WithDefaults(),
		log:  log.With().Str("component", "significance").Logger(),
	}
}

// ANOVA runs a one-way ANOVA of value across the groups of group.
// Rows with a null group or value are dropped and groups with a single value
// are skipped; fewer than two remaining groups gives an insufficient result.
func (t *Tester) ANOVA(ds *dataset.Dataset, group, value string, cond *Condition) (*contracts.ANOVAResult, error) {
	if err := ds.Require(group, value); err != nil {
		return nil, err
	}

	if cond != nil {
		filtered, err := ds.Filter(cond.Column, cond.Value)
		if err != nil {
			return nil, err
		}
		ds = filtered
	}

	return t.anova(ds, group, value, NoteInsufficientGroups)
}

// MarginANOVA derives Margin = premium - claims when absent and runs ANOVA of
// Margin across group. The derived column is added to ds.
func (t *Tester) MarginANOVA(ds *dataset.Dataset, group string) (*contracts.ANOVAResult, error) {
	if err := ds.Require(group); err != nil {
		return nil, err
	}
	if _, err := ds.EnsureMargin(t.cols.Premium, t.cols.Claims, t.cols.Margin); err != nil {
		return nil, err
	}

	return t.anova(ds, group, t.cols.Margin, NoteInsufficientMargin)
}

func (t *Tester) anova(ds *dataset.Dataset, group, value, insufficientNote string) (*contracts.ANOVAResult, error) {
	samples, err := groupSamples(ds, group, value)
	if err != nil {
		return nil, err
	}

	result := &contracts.ANOVAResult{
		GroupColumn: group,
		ValueColumn: value,
		GroupCount:  len(samples),
	}

	if len(samples) < minGroups {
		result.Note = insufficientNote
		t.log.Debug().
			Str("group_col", group).
			Str("value_col", value).
			Int("group_count", result.GroupCount).
			Msg("anova skipped")
		return result, nil
	}

	f, p, ok := oneWay(samples)
	if !ok {
		result.Note = NoteZeroVariance
		return result, nil
	}
	result.FStatistic = &f
	result.PValue = &p

	t.log.Debug().
		Str("group_col", group).
		Str("value_col", value).
		Int("group_count", result.GroupCount).
		Float64("f_statistic", f).
		Float64("p_value", p).
		Msg("anova completed")

	return result, nil
}

// groupSamples collects the non-null values of each group with at least minGroupSize values
func groupSamples(ds *dataset.Dataset, group, value string) ([][]float64, error) {
	keys, keyValid, err := ds.Keys(group)
	if err != nil {
		return nil, err
	}
	values, valueValid, err := ds.Floats(value)
	if err != nil {
		return nil, err
	}

	// 값이 null인 행은 그룹 키도 무효 처리 (dropna)
	valid := make([]bool, len(keys))
	for i := range keys {
		valid[i] = keyValid[i] && valueValid[i]
	}

	var samples [][]float64
	for _, g := range dataset.PartitionKeys(keys, valid) {
		if g.Size() < minGroupSize {
			continue
		}
		xs := make([]float64, len(g.Rows))
		for j, i := range g.Rows {
			xs[j] = values[i]
		}
		samples = append(samples, xs)
	}
	return samples, nil
}

// oneWay computes the F statistic and its p-value for k independent samples.
// ok is false when the within-group sum of squares is zero.
func oneWay(samples [][]float64) (f, p float64, ok bool) {
	var all []float64
	for _, xs := range samples {
		all = append(all, xs...)
	}
	grand := stat.Mean(all, nil)

	var ssBetween, ssWithin float64
	for _, xs := range samples {
		m := stat.Mean(xs, nil)
		ssBetween += float64(len(xs)) * (m - grand) * (m - grand)
		for _, x := range xs {
			ssWithin += (x - m) * (x - m)
		}
	}

	k := float64(len(samples))
	n := float64(len(all))
	dfBetween := k - 1
	dfWithin := n - k
	if ssWithin == 0 || dfWithin <= 0 {
		return 0, 0, false
	}

	f = (ssBetween / dfBetween) / (ssWithin / dfWithin)
	p = distuv.F{D1: dfBetween, D2: dfWithin}.Survival(f)
	if math.IsNaN(p) {
		return 0, 0, false
	}
	return f, p, true
}
