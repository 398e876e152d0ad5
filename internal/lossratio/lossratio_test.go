package lossratio

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

func newDataset(t *testing.T, rows ...[]string) *dataset.Dataset {
	t.Helper()
	records := append([][]string{{"Province", "TotalClaims", "TotalPremium"}}, rows...)
	ds, err := dataset.FromRecords(records, dataset.Options{StringColumns: []string{"Province"}})
	require.NoError(t, err)
	return ds
}

func TestOverall(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	tests := []struct {
		name        string
		rows        [][]string
		wantDefined bool
		want        float64
	}{
		{
			name:        "example dataset",
			rows:        [][]string{{"A", "100", "200"}, {"A", "50", "50"}, {"B", "0", "100"}},
			wantDefined: true,
			want:        0.4286,
		},
		{
			name:        "null cells count as zero",
			rows:        [][]string{{"A", "100", "200"}, {"A", "", "50"}, {"", "25", ""}},
			wantDefined: true,
			want:        0.5,
		},
		{
			name:        "zero premium is undefined",
			rows:        [][]string{{"A", "100", "0"}, {"B", "50", "0"}},
			wantDefined: false,
		},
		{
			name:        "all-null premium is undefined",
			rows:        [][]string{{"A", "100", ""}, {"B", "50", ""}},
			wantDefined: false,
		},
		{
			name:        "header only is undefined",
			wantDefined: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := newDataset(t, tt.rows...)

			got, err := agg.Overall(ds, contracts.DefaultClaimsColumn, contracts.DefaultPremiumColumn)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDefined, got.Defined)
			if tt.wantDefined {
				assert.InDelta(t, tt.want, got.Value, 1e-12)
			} else {
				assert.Equal(t, contracts.UndefinedRatio, got)
			}
		})
	}
}

func TestOverall_UnknownColumn(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())
	ds := newDataset(t, []string{"A", "1", "2"})

	_, err := agg.Overall(ds, "Claims", contracts.DefaultPremiumColumn)
	assert.ErrorIs(t, err, contracts.ErrColumnNotFound)
}

func TestByCategory(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())
	ds := newDataset(t,
		[]string{"A", "100", "200"},
		[]string{"A", "50", "50"},
		[]string{"B", "0", "100"},
	)

	rows, err := agg.ByCategory(ds, "Province", contracts.DefaultClaimsColumn, contracts.DefaultPremiumColumn)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "A", rows[0].Category)
	assert.InDelta(t, 0.6, rows[0].LossRatio.Value, 1e-12)
	assert.Equal(t, 150.0, rows[0].Claims)
	assert.Equal(t, 250.0, rows[0].Premium)

	assert.Equal(t, "B", rows[1].Category)
	assert.True(t, rows[1].LossRatio.Defined)
	assert.Equal(t, 0.0, rows[1].LossRatio.Value)
}

func TestByCategory_NullAndZeroPremiumGroups(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())
	ds := newDataset(t,
		[]string{"A", "10", "100"},
		[]string{"Z", "30", "0"},
		[]string{"", "999", "1"},
		[]string{"B", "50", "100"},
	)

	rows, err := agg.ByCategory(ds, "Province", contracts.DefaultClaimsColumn, contracts.DefaultPremiumColumn)
	require.NoError(t, err)
	require.Len(t, rows, 3, "null category rows are excluded")

	assert.Equal(t, []string{"B", "A", "Z"}, []string{rows[0].Category, rows[1].Category, rows[2].Category})
	assert.False(t, rows[2].LossRatio.Defined, "zero premium group is undefined and ranked last")
}

func TestByCategory_AllNullPremium(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())
	ds := newDataset(t, []string{"A", "100", ""}, []string{"B", "50", ""})

	rows, err := agg.ByCategory(ds, "Province", contracts.DefaultClaimsColumn, contracts.DefaultPremiumColumn)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.False(t, r.LossRatio.Defined, r.Category)
		assert.Equal(t, 0.0, r.Premium)
	}
}

func TestByCategory_HeaderOnly(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	rows, err := agg.ByCategory(newDataset(t), "Province", contracts.DefaultClaimsColumn, contracts.DefaultPremiumColumn)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestByCategory_UnknownColumn(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())
	ds := newDataset(t, []string{"A", "1", "2"})

	_, err := agg.ByCategory(ds, "Gender", contracts.DefaultClaimsColumn, contracts.DefaultPremiumColumn)
	assert.ErrorIs(t, err, contracts.ErrColumnNotFound)
}

func TestByCategory_Properties(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())
	rng := rand.New(rand.NewSource(7))
	provinces := []string{"Gauteng", "Limpopo", "KwaZulu-Natal", "Free State", ""}

	for round := 0; round < 20; round++ {
		var rows [][]string
		var totalWithKey float64
		for i := 0; i < 50; i++ {
			p := provinces[rng.Intn(len(provinces))]
			claims := rng.Intn(1000)
			premium := rng.Intn(500)
			if p != "" {
				totalWithKey += float64(claims)
			}
			rows = append(rows, []string{p, strconv.Itoa(claims), strconv.Itoa(premium)})
		}
		ds := newDataset(t, rows...)

		got, err := agg.ByCategory(ds, "Province", contracts.DefaultClaimsColumn, contracts.DefaultPremiumColumn)
		require.NoError(t, err)

		// partition completeness
		var sum float64
		for _, r := range got {
			sum += r.Claims
		}
		assert.Equal(t, totalWithKey, sum)

		// non-increasing order
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1].LossRatio, got[i].LossRatio
			if prev.Defined && cur.Defined {
				assert.GreaterOrEqual(t, prev.Value, cur.Value)
			}
			if !prev.Defined {
				assert.False(t, cur.Defined)
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())
	ds := newDataset(t,
		[]string{"A", "100", "200"},
		[]string{"A", "50", "50"},
		[]string{"B", "0", "100"},
	)

	summary, err := agg.Summarize(ds, []string{"Province"}, contracts.DefaultColumns())
	require.NoError(t, err)
	assert.InDelta(t, 0.4286, summary.Overall.Value, 1e-12)
	require.Len(t, summary.Tables, 1)
	assert.Equal(t, "Province", summary.Tables[0].Category)

	_, err = agg.Summarize(ds, []string{"Gender"}, contracts.DefaultColumns())
	assert.ErrorIs(t, err, contracts.ErrColumnNotFound)
}
