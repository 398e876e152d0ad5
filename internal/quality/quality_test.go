package quality

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

func sample(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords([][]string{
		{"Gender", "Province", "TotalClaims", "TransactionMonth"},
		{"Male", "Gauteng", "10", "2015-03-01"},
		{"", "Gauteng", "", "2015-04-01"},
		{"", "Limpopo", "30", "bad"},
		{"Female", "Limpopo", "40", ""},
	}, dataset.Options{})
	require.NoError(t, err)
	return ds
}

func TestMissingSummary(t *testing.T) {
	in := NewInspector(zerolog.Nop())

	got, err := in.MissingSummary(sample(t), []string{"Province", "Gender"}, []string{"TotalClaims"}, "TransactionMonth")
	require.NoError(t, err)

	assert.Equal(t, []contracts.MissingValue{
		{Column: "Gender", Percent: 50},
		{Column: "TransactionMonth", Percent: 50},
		{Column: "TotalClaims", Percent: 25},
		{Column: "Province", Percent: 0},
	}, got)
}

func TestMissingSummary_UnknownColumn(t *testing.T) {
	in := NewInspector(zerolog.Nop())

	_, err := in.MissingSummary(sample(t), []string{"VehicleType"}, nil, "")
	assert.ErrorIs(t, err, contracts.ErrColumnNotFound)
}

func TestDescribe(t *testing.T) {
	in := NewInspector(zerolog.Nop())

	got, err := in.Describe(sample(t), []string{"TotalClaims"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 26.6667, s.Mean, 1e-4)
	assert.InDelta(t, 15.2753, s.Std, 1e-4)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 40.0, s.Max)
	assert.Equal(t, 30.0, s.Median)

	_, err = in.Describe(sample(t), []string{"Gender"})
	assert.ErrorIs(t, err, contracts.ErrColumnNotNumeric)
}

func TestSummarize_Degenerate(t *testing.T) {
	assert.Equal(t, contracts.ColumnSummary{Column: "x"}, summarize("x", nil))

	one := summarize("x", []float64{5})
	assert.Equal(t, 1, one.Count)
	assert.Equal(t, 0.0, one.Std)
	assert.Equal(t, 5.0, one.Median)
}
