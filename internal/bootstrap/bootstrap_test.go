package bootstrap

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

// policies builds n rows; every fourth policy has a claim of 300 against a premium of 100
func policies(t *testing.T, n int, premium string) *dataset.Dataset {
	t.Helper()
	records := [][]string{{"TotalClaims", "TotalPremium"}}
	for i := 0; i < n; i++ {
		claim := "0"
		if i%4 == 0 {
			claim = "300"
		}
		records = append(records, []string{claim, premium})
	}
	ds, err := dataset.FromRecords(records, dataset.Options{})
	require.NoError(t, err)
	return ds
}

func newResampler(t *testing.T, cfg Config) *Resampler {
	t.Helper()
	r, err := NewResampler(cfg, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestLossRatio_Percentile(t *testing.T) {
	ds := policies(t, 80, "100")
	r := newResampler(t, Config{Samples: 500, Seed: 42})

	res, err := r.LossRatio(context.Background(), ds, contracts.Columns{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "percentile", res.Method)
	assert.Equal(t, int64(42), res.Seed)
	assert.Equal(t, 500, res.Used)
	assert.Equal(t, 0.75, res.Estimate.Value)

	require.True(t, res.Bounded())
	require.NotNil(t, res.StdErr)
	assert.Greater(t, *res.StdErr, 0.0)
	assert.LessOrEqual(t, res.Lower.Value, res.Estimate.Value)
	assert.GreaterOrEqual(t, res.Upper.Value, res.Estimate.Value)
	assert.Empty(t, res.Note)
}

func TestLossRatio_SameSeedSameInterval(t *testing.T) {
	ds := policies(t, 60, "100")

	a, err := newResampler(t, Config{Samples: 200, Seed: 7}).LossRatio(context.Background(), ds, contracts.Columns{})
	require.NoError(t, err)
	b, err := newResampler(t, Config{Samples: 200, Seed: 7}).LossRatio(context.Background(), ds, contracts.Columns{})
	require.NoError(t, err)

	assert.Equal(t, a.Lower, b.Lower)
	assert.Equal(t, a.Upper, b.Upper)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestLossRatio_Normal(t *testing.T) {
	ds := policies(t, 80, "100")
	r := newResampler(t, Config{Samples: 500, Seed: 1, Method: MethodNormal})

	res, err := r.LossRatio(context.Background(), ds, contracts.Columns{})
	require.NoError(t, err)
	require.True(t, res.Bounded())

	below := res.Estimate.Value - res.Lower.Value
	above := res.Upper.Value - res.Estimate.Value
	assert.InDelta(t, below, above, 2e-4)
}

func TestLossRatio_TooFewRows(t *testing.T) {
	ds := policies(t, 5, "100")
	r := newResampler(t, Config{Samples: 100, Seed: 1})

	res, err := r.LossRatio(context.Background(), ds, contracts.Columns{})
	require.NoError(t, err)

	assert.False(t, res.Bounded())
	assert.Nil(t, res.StdErr)
	assert.Contains(t, res.Note, "need at least 30 rows")
	assert.True(t, res.Estimate.Defined)
}

func TestLossRatio_ZeroPremium(t *testing.T) {
	ds := policies(t, 40, "0")
	r := newResampler(t, Config{Samples: 100, Seed: 1})

	res, err := r.LossRatio(context.Background(), ds, contracts.Columns{})
	require.NoError(t, err)

	assert.False(t, res.Estimate.Defined)
	assert.False(t, res.Bounded())
	assert.Equal(t, 0, res.Used)
	assert.NotEmpty(t, res.Note)
}

func TestLossRatio_MissingColumn(t *testing.T) {
	ds := policies(t, 40, "100")
	r := newResampler(t, Config{Samples: 100, Seed: 1})

	_, err := r.LossRatio(context.Background(), ds, contracts.Columns{Premium: "Premium"})
	assert.ErrorIs(t, err, contracts.ErrColumnNotFound)
}

func TestLossRatio_Cancelled(t *testing.T) {
	ds := policies(t, 40, "100")
	r := newResampler(t, Config{Samples: 100, Seed: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.LossRatio(ctx, ds, contracts.Columns{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"too few samples", Config{Samples: 10}, true},
		{"too many samples", Config{Samples: 200000}, true},
		{"confidence one", Config{Confidence: 1}, true},
		{"negative confidence", Config{Confidence: -0.5}, true},
		{"unknown method", Config{Method: "bca"}, true},
		{"normal", Config{Method: MethodNormal}, false},
		{"min rows one", Config{MinRows: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.WithDefaults().Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewResampler_InvalidConfig(t *testing.T) {
	_, err := NewResampler(Config{Samples: 5}, zerolog.Nop())
	assert.ErrorContains(t, err, "samples")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2000, cfg.Samples)
	assert.Equal(t, 0.95, cfg.Confidence)
	assert.Equal(t, MethodPercentile, cfg.Method)
	assert.Equal(t, 30, cfg.MinRows)
}
