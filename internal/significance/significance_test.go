package significance

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

func newTester() *Tester {
	return NewTester(contracts.DefaultColumns(), zerolog.Nop())
}

func buildDataset(t *testing.T, header []string, rows [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords(append([][]string{header}, rows...), dataset.Options{StringColumns: []string{"Province"}})
	require.NoError(t, err)
	return ds
}

func TestANOVA_KnownValues(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims"}, [][]string{
		{"A", "1"}, {"A", "2"}, {"A", "3"},
		{"B", "4"}, {"B", "5"}, {"B", "6"},
	})

	res, err := newTester().ANOVA(ds, "Province", "TotalClaims", nil)
	require.NoError(t, err)
	require.True(t, res.Ran())

	assert.Equal(t, 2, res.GroupCount)
	assert.InDelta(t, 13.5, *res.FStatistic, 1e-9)
	assert.InDelta(t, 0.0213116, *res.PValue, 1e-6)
	assert.Empty(t, res.Note)
}

func TestANOVA_SkipsSingletonGroupsAndNulls(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims"}, [][]string{
		{"A", "1"}, {"A", "2"}, {"A", "3"},
		{"B", "4"}, {"B", ""}, // B has one non-null value
		{"", "100"}, {"", "200"},
	})

	res, err := newTester().ANOVA(ds, "Province", "TotalClaims", nil)
	require.NoError(t, err)
	assert.False(t, res.Ran())
	assert.Equal(t, 1, res.GroupCount)
	assert.Equal(t, NoteInsufficientGroups, res.Note)
	assert.Nil(t, res.FStatistic)
	assert.Nil(t, res.PValue)
}

func TestANOVA_Condition(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims", "Claimed"}, [][]string{
		{"A", "10", "yes"}, {"A", "20", "yes"}, {"A", "0", "no"},
		{"B", "30", "yes"}, {"B", "50", "yes"}, {"B", "0", "no"},
	})

	res, err := newTester().ANOVA(ds, "Province", "TotalClaims", &Condition{Column: "Claimed", Value: "yes"})
	require.NoError(t, err)
	require.True(t, res.Ran())
	// A=[10,20] B=[30,50]: SSB=2*(15-27.5)^2+2*(40-27.5)^2=625, SSW=50+200=250
	assert.InDelta(t, 625.0/(250.0/2.0), *res.FStatistic, 1e-9)

	_, err = newTester().ANOVA(ds, "Province", "TotalClaims", &Condition{Column: "Missing", Value: "yes"})
	assert.ErrorIs(t, err, contracts.ErrColumnNotFound)
}

func TestANOVA_ZeroVariance(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims"}, [][]string{
		{"A", "1"}, {"A", "1"},
		{"B", "2"}, {"B", "2"},
	})

	res, err := newTester().ANOVA(ds, "Province", "TotalClaims", nil)
	require.NoError(t, err)
	assert.False(t, res.Ran())
	assert.Equal(t, 2, res.GroupCount)
	assert.Equal(t, NoteZeroVariance, res.Note)
}

func TestANOVA_UnknownColumn(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims"}, [][]string{{"A", "1"}})

	_, err := newTester().ANOVA(ds, "Gender", "TotalClaims", nil)
	assert.ErrorIs(t, err, contracts.ErrColumnNotFound)
}

func TestMarginANOVA_Insufficient(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims", "TotalPremium"}, [][]string{
		{"A", "10", "100"}, {"A", "20", "100"},
		{"B", "5", "50"},
		{"C", "", "50"}, {"C", "1", "50"}, // one null margin leaves a single row
	})

	res, err := newTester().MarginANOVA(ds, "Province")
	require.NoError(t, err)

	assert.Equal(t, 1, res.GroupCount)
	assert.Equal(t, NoteInsufficientMargin, res.Note)
	assert.Equal(t, contracts.DefaultMarginColumn, res.ValueColumn)
	assert.Nil(t, res.FStatistic)
	assert.Nil(t, res.PValue)
	assert.True(t, ds.HasColumn(contracts.DefaultMarginColumn), "margin column is derived in place")
}

func TestMarginANOVA_HeaderOnly(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims", "TotalPremium"}, nil)

	res, err := newTester().MarginANOVA(ds, "Province")
	require.NoError(t, err)
	assert.Equal(t, 0, res.GroupCount)
	assert.Equal(t, NoteInsufficientMargin, res.Note)
	assert.False(t, res.Ran())
}

func TestMarginANOVA_Runs(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims", "TotalPremium"}, [][]string{
		{"A", "0", "1"}, {"A", "0", "2"}, {"A", "0", "3"},
		{"B", "0", "4"}, {"B", "0", "5"}, {"B", "0", "6"},
	})

	res, err := newTester().MarginANOVA(ds, "Province")
	require.NoError(t, err)
	require.True(t, res.Ran())
	assert.InDelta(t, 13.5, *res.FStatistic, 1e-9)
	assert.Equal(t, 2, res.GroupCount)
}

func TestMarginANOVA_UsesExistingMargin(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "Margin"}, [][]string{
		{"A", "1"}, {"A", "2"}, {"A", "3"},
		{"B", "4"}, {"B", "5"}, {"B", "6"},
	})

	res, err := newTester().MarginANOVA(ds, "Province")
	require.NoError(t, err)
	require.True(t, res.Ran())
}

func claimRows(province string, withClaim, without int) [][]string {
	var rows [][]string
	for i := 0; i < withClaim; i++ {
		rows = append(rows, []string{province, "5"})
	}
	for i := 0; i < without; i++ {
		rows = append(rows, []string{province, "0"})
	}
	return rows
}

func TestChiSquared_YatesCorrection(t *testing.T) {
	rows := append(claimRows("A", 10, 20), claimRows("B", 30, 40)...)
	ds := buildDataset(t, []string{"Province", "TotalClaims"}, rows)

	res, err := newTester().ChiSquared(ds, "Province", contracts.DefaultHasClaimColumn)
	require.NoError(t, err)

	assert.Equal(t, 1, res.DOF)
	assert.InDelta(t, 0.4464286, res.Chi2, 1e-6)
	assert.InDelta(t, 0.504, res.PValue, 1e-3)

	require.NotNil(t, res.ContingencyTable)
	assert.Equal(t, []string{"A", "B"}, res.ContingencyTable.Rows)
	assert.Equal(t, []string{"false", "true"}, res.ContingencyTable.Columns)
	assert.Equal(t, [][]int64{{20, 10}, {40, 30}}, res.ContingencyTable.Counts)
	assert.Equal(t, int64(100), res.ContingencyTable.Total())
}

func TestChiSquared_ThreeGroups(t *testing.T) {
	var rows [][]string
	rows = append(rows, claimRows("A", 10, 10)...)
	rows = append(rows, claimRows("B", 5, 20)...)
	rows = append(rows, claimRows("C", 20, 5)...)
	ds := buildDataset(t, []string{"Province", "TotalClaims"}, rows)

	res, err := newTester().ChiSquared(ds, "Province", contracts.DefaultHasClaimColumn)
	require.NoError(t, err)

	assert.Equal(t, 2, res.DOF)
	assert.InDelta(t, 18.0, res.Chi2, 1e-9)
	assert.InDelta(t, math.Exp(-9), res.PValue, 1e-9)
}

func TestChiSquared_SingleGroup(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims"}, claimRows("A", 3, 4))

	res, err := newTester().ChiSquared(ds, "Province", contracts.DefaultHasClaimColumn)
	require.NoError(t, err)
	assert.Equal(t, 0, res.DOF)
	assert.Equal(t, 0.0, res.Chi2)
	assert.Equal(t, 1.0, res.PValue)
}

func TestChiSquared_UnknownOutcome(t *testing.T) {
	ds := buildDataset(t, []string{"Province", "TotalClaims"}, claimRows("A", 1, 1))

	_, err := newTester().ChiSquared(ds, "Province", "Outcome")
	assert.ErrorIs(t, err, contracts.ErrColumnNotFound)
}

func TestCrosstab_DropsNulls(t *testing.T) {
	rows := [][]string{{"A", "x"}, {"A", "y"}, {"", "x"}, {"B", ""}, {"B", "y0"}, {"B", "y0"}, {"B", "y0"}}
	ds := buildDataset(t, []string{"Province", "Outcome"}, rows)

	tbl, err := Crosstab(ds, "Province", "Outcome")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tbl.Rows)
	assert.Equal(t, []string{"x", "y", "y0"}, tbl.Columns)
	assert.Equal(t, [][]int64{{1, 1, 0}, {0, 0, 3}}, tbl.Counts)
}

func TestPearson_ZeroExpected(t *testing.T) {
	_, _, _, err := pearson([][]int64{{0, 0}, {1, 2}})
	assert.ErrorIs(t, err, contracts.ErrZeroExpected)
}
