package contracts

import "time"

// MonthlyClaimStats holds claim statistics for one calendar month
type MonthlyClaimStats struct {
	Month            time.Time `json:"month"`
	ClaimCount       int       `json:"claim_count"`        // non-null policy ids
	ClaimFrequency   int       `json:"claim_frequency"`    // rows with claims > 0
	TotalClaims      float64   `json:"total_claims"`
	AvgClaimSeverity *float64  `json:"avg_claim_severity"` // nil when no positive claims
}
