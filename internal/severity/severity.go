// Package severity ranks vehicle make/model pairs by average claim amount.
package severity

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
)

// DefaultTopN is the number of pairs reported at each end of the ranking
const DefaultTopN = 10

// Ranker computes average claim amounts per make/model
type Ranker struct {
	log zerolog.Logger
}

// NewRanker creates a new severity ranker
func NewRanker(log zerolog.Logger) *Ranker {
	return &Ranker{
		log: log.With().Str("component", "severity.ranker").Logger(),
	}
}

// ByMakeModel averages cols.Claims per (make, model) pair and returns the
// topN highest and topN lowest pairs. Rows with a null make or model are
// dropped; null claims are skipped in the mean.
func (r *Ranker) ByMakeModel(ds *dataset.Dataset, cols contracts.Columns, topN int) (*contracts.SeverityRanking, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if err := ds.Require(cols.Make, cols.Model, cols.Claims); err != nil {
		return nil, err
	}

	makes, makeValid, err := ds.Keys(cols.Make)
	if err != nil {
		return nil, err
	}
	models, modelValid, err := ds.Keys(cols.Model)
	if err != nil {
		return nil, err
	}
	claims, claimValid, err := ds.Floats(cols.Claims)
	if err != nil {
		return nil, err
	}

	// make\x00model 복합 키로 파티션
	keys := make([]string, len(makes))
	valid := make([]bool, len(makes))
	for i := range makes {
		valid[i] = makeValid[i] && modelValid[i]
		keys[i] = makes[i] + "\x00" + models[i]
	}

	var pairs []contracts.ModelClaim
	for _, g := range dataset.PartitionKeys(keys, valid) {
		var sum float64
		n := 0
		for _, i := range g.Rows {
			if claimValid[i] {
				sum += claims[i]
				n++
			}
		}
		if n == 0 {
			continue
		}
		first := g.Rows[0]
		pairs = append(pairs, contracts.ModelClaim{
			Make:           makes[first],
			Model:          models[first],
			AvgClaimAmount: sum / float64(n),
			Count:          n,
		})
	}

	ranking := &contracts.SeverityRanking{
		Top:    head(pairs, topN, func(a, b contracts.ModelClaim) bool { return a.AvgClaimAmount > b.AvgClaimAmount }),
		Bottom: head(pairs, topN, func(a, b contracts.ModelClaim) bool { return a.AvgClaimAmount < b.AvgClaimAmount }),
	}

	r.log.Debug().
		Int("pairs", len(pairs)).
		Int("top_n", topN).
		Msg("severity ranking calculated")

	return ranking, nil
}

// head returns the first n items of a sorted copy of pairs
func head(pairs []contracts.ModelClaim, n int, less func(a, b contracts.ModelClaim) bool) []contracts.ModelClaim {
	sorted := make([]contracts.ModelClaim, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
