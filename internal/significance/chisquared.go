package significance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

// ChiSquared tests independence between a grouping column and an outcome column.
// When outcome is the configured HasClaim column and absent, it is derived from claims > 0.
func (t *Tester) ChiSquared(ds *dataset.Dataset, group, outcome string) (*contracts.ChiSquaredResult, error) {
	if outcome == t.cols.HasClaim && !ds.HasColumn(outcome) {
		if _, err := ds.EnsureHasClaim(t.cols.Claims, outcome); err != nil {
			return nil, err
		}
	}

	table, err := Crosstab(ds, group, outcome)
	if err != nil {
		return nil, err
	}

	chi2, dof, expected, err := pearson(table.Counts)
	if err != nil {
		return nil, fmt.Errorf("chi-squared %s x %s: %w", group, outcome, err)
	}

	p := 1.0
	if dof > 0 {
		p = distuv.ChiSquared{K: float64(dof)}.Survival(chi2)
	}

	t.log.Debug().
		Str("group_col", group).
		Str("outcome_col", outcome).
		Float64("chi2", chi2).
		Float64("p_value", p).
		Int("dof", dof).
		Msg("chi-squared completed")

	return &contracts.ChiSquaredResult{
		GroupColumn:      group,
		OutcomeColumn:    outcome,
		Chi2:             chi2,
		PValue:           p,
		DOF:              dof,
		ContingencyTable: table,
		Expected:         expected,
	}, nil
}

// Crosstab counts rows per (group, outcome) pair; rows with a null in either column are dropped
func Crosstab(ds *dataset.Dataset, group, outcome string) (*contracts.ContingencyTable, error) {
	if err := ds.Require(group, outcome); err != nil {
		return nil, err
	}
	gKeys, gValid, err := ds.Keys(group)
	if err != nil {
		return nil, err
	}
	oKeys, oValid, err := ds.Keys(outcome)
	if err != nil {
		return nil, err
	}

	valid := make([]bool, len(gKeys))
	for i := range gKeys {
		valid[i] = gValid[i] && oValid[i]
	}

	rowGroups := dataset.PartitionKeys(gKeys, valid)
	colGroups := dataset.PartitionKeys(oKeys, valid)

	colIndex := make(map[string]int, len(colGroups))
	table := &contracts.ContingencyTable{
		Rows:    make([]string, len(rowGroups)),
		Columns: make([]string, len(colGroups)),
		Counts:  make([][]int64, len(rowGroups)),
	}
	for j, g := range colGroups {
		table.Columns[j] = g.Key
		colIndex[g.Key] = j
	}
	for r, g := range rowGroups {
		table.Rows[r] = g.Key
		table.Counts[r] = make([]int64, len(colGroups))
		for _, i := range g.Rows {
			table.Counts[r][colIndex[oKeys[i]]]++
		}
	}
	return table, nil
}

// pearson computes the chi-squared statistic with Yates' correction when dof == 1
func pearson(observed [][]int64) (chi2 float64, dof int, expected [][]float64, err error) {
	nRows := len(observed)
	if nRows == 0 {
		return 0, 0, nil, nil
	}
	nCols := len(observed[0])

	rowSums := make([]float64, nRows)
	colSums := make([]float64, nCols)
	var total float64
	for r, row := range observed {
		for c, v := range row {
			rowSums[r] += float64(v)
			colSums[c] += float64(v)
			total += float64(v)
		}
	}

	expected = make([][]float64, nRows)
	for r := range observed {
		expected[r] = make([]float64, nCols)
		for c := range observed[r] {
			e := rowSums[r] * colSums[c] / total
			if e == 0 || math.IsNaN(e) {
				return 0, 0, nil, contracts.ErrZeroExpected
			}
			expected[r][c] = e
		}
	}

	dof = (nRows - 1) * (nCols - 1)
	if dof == 0 {
		return 0, 0, expected, nil
	}

	for r := range observed {
		for c := range observed[r] {
			o := float64(observed[r][c])
			e := expected[r][c]
			if dof == 1 {
				// Yates: |O - E| 를 0.5 만큼 E 쪽으로 당김
				diff := e - o
				o += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			chi2 += (o - e) * (o - e) / e
		}
	}
	return chi2, dof, expected, nil
}
