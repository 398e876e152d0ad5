package contracts

// ModelClaim is the average claim amount of one vehicle make/model pair
type ModelClaim struct {
	Make           string  `json:"make"`
	Model          string  `json:"model"`
	AvgClaimAmount float64 `json:"avg_claim_amount"`
	Count          int     `json:"count"`
}

// Label returns "make model"
func (m ModelClaim) Label() string {
	return m.Make + " " + m.Model
}

// SeverityRanking holds the top and bottom make/model pairs by average claim
type SeverityRanking struct {
	Top    []ModelClaim `json:"top"`
	Bottom []ModelClaim `json:"bottom"`
}
