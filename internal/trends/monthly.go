// Package trends aggregates claim statistics over calendar months.
package trends

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

// Analyzer computes time-based claim statistics
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a new trend analyzer
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{
		log: log.With().Str("component", "trends.analyzer").Logger(),
	}
}

type monthAcc struct {
	policies    int
	frequency   int
	total       float64
	positiveSum float64
}

// Monthly groups rows by the calendar month of cols.Date.
// Rows whose date is null or unparseable are dropped.
func (a *Analyzer) Monthly(ds *dataset.Dataset, cols contracts.Columns) ([]contracts.MonthlyClaimStats, error) {
	if err := ds.Require(cols.Date, cols.Claims, cols.Policy); err != nil {
		return nil, err
	}
	dates, dateValid, err := ds.Times(cols.Date)
	if err != nil {
		return nil, err
	}
	claims, claimValid, err := ds.Floats(cols.Claims)
	if err != nil {
		return nil, err
	}
	_, policyValid, err := ds.Keys(cols.Policy)
	if err != nil {
		return nil, err
	}

	months := make(map[time.Time]*monthAcc)
	dropped := 0
	for i, d := range dates {
		if !dateValid[i] {
			dropped++
			continue
		}
		key := dataset.MonthStart(d)
		acc, ok := months[key]
		if !ok {
			acc = &monthAcc{}
			months[key] = acc
		}

		if policyValid[i] {
			acc.policies++
		}
		if claimValid[i] {
			acc.total += claims[i]
			if claims[i] > 0 {
				acc.frequency++
				acc.positiveSum += claims[i]
			}
		}
	}

	stats := make([]contracts.MonthlyClaimStats, 0, len(months))
	for month, acc := range months {
		s := contracts.MonthlyClaimStats{
			Month:          month,
			ClaimCount:     acc.policies,
			ClaimFrequency: acc.frequency,
			TotalClaims:    acc.total,
		}
		if acc.frequency > 0 {
			avg := acc.positiveSum / float64(acc.frequency)
			s.AvgClaimSeverity = &avg
		}
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Month.Before(stats[j].Month)
	})

	a.log.Debug().
		Int("months", len(stats)).
		Int("dropped_rows", dropped).
		Msg("monthly claim stats calculated")

	return stats, nil
}
