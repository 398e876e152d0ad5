// Package bootstrap estimates the sampling uncertainty of the overall loss ratio
// by resampling policy rows with replacement.
package bootstrap

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
	"github.com/wonny/claimlens/internal/lossratio"
)

// checkEvery is how many resamples run between context checks
const checkEvery = 100

// Resampler draws bootstrap samples of (claims, premium) row pairs
type Resampler struct {
	config Config
	seed   int64
	rng    *rand.Rand
	log    zerolog.Logger
}

// NewResampler creates a resampler; cfg zero fields take DefaultConfig values
func NewResampler(cfg Config, log zerolog.Logger) (*Resampler, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Resampler{
		config: cfg,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
		log:    log.With().Str("component", "bootstrap.resampler").Logger(),
	}, nil
}

// LossRatio returns a confidence interval of sum(claims) / sum(premium).
// Null cells count as zero, matching the overall ratio.
// Too few rows or too few defined resamples yield undefined bounds and a note.
func (r *Resampler) LossRatio(ctx context.Context, ds *dataset.Dataset, cols contracts.Columns) (*contracts.RatioInterval, error) {
	cols = cols.WithDefaults()

	claims, err := zeroFilled(ds, cols.Claims)
	if err != nil {
		return nil, err
	}
	premium, err := zeroFilled(ds, cols.Premium)
	if err != nil {
		return nil, err
	}

	res := &contracts.RatioInterval{
		RunID:      uuid.New().String(),
		Method:     string(r.config.Method),
		Samples:    r.config.Samples,
		Confidence: r.config.Confidence,
		Seed:       r.seed,
		Estimate:   contracts.NewRatio(sum(claims), sum(premium)).Rounded(lossratio.RatioDigits),
		Lower:      contracts.UndefinedRatio,
		Upper:      contracts.UndefinedRatio,
	}

	n := len(claims)
	if n < r.config.MinRows {
		res.Note = fmt.Sprintf("need at least %d rows, got %d", r.config.MinRows, n)
		return res, nil
	}

	ratios := make([]float64, 0, r.config.Samples)
	for s := 0; s < r.config.Samples; s++ {
		if s%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("bootstrap cancelled after %d samples: %w", s, err)
			}
		}

		var c, p float64
		for i := 0; i < n; i++ {
			idx := r.rng.Intn(n)
			c += claims[idx]
			p += premium[idx]
		}
		if v, ok := contracts.NewRatio(c, p).Float(); ok {
			ratios = append(ratios, v)
		}
	}
	res.Used = len(ratios)

	if len(ratios) < 2 {
		res.Note = "fewer than 2 resamples had a non-zero premium sum"
		return res, nil
	}

	sort.Float64s(ratios)
	se := stat.StdDev(ratios, nil)
	res.StdErr = &se

	alpha := 1 - r.config.Confidence
	switch r.config.Method {
	case MethodNormal:
		est, ok := contracts.NewRatio(sum(claims), sum(premium)).Float()
		if !ok {
			res.Note = "overall premium sum is zero"
			return res, nil
		}
		z := distuv.UnitNormal.Quantile(1 - alpha/2)
		res.Lower = rounded(est - z*se)
		res.Upper = rounded(est + z*se)
	default:
		res.Lower = rounded(stat.Quantile(alpha/2, stat.LinInterp, ratios, nil))
		res.Upper = rounded(stat.Quantile(1-alpha/2, stat.LinInterp, ratios, nil))
	}

	r.log.Debug().
		Str("run_id", res.RunID).
		Int("rows", n).
		Int("used", res.Used).
		Float64("std_err", se).
		Msg("loss ratio interval calculated")

	return res, nil
}

// zeroFilled returns a numeric column with nulls replaced by zero
func zeroFilled(ds *dataset.Dataset, name string) ([]float64, error) {
	values, valid, err := ds.Floats(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if valid[i] {
			out[i] = v
		}
	}
	return out, nil
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func rounded(v float64) contracts.Ratio {
	return contracts.Ratio{Value: v, Defined: true}.Rounded(lossratio.RatioDigits)
}
