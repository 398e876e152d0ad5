package contracts

// RatioInterval is a resampled confidence interval of the overall loss ratio
type RatioInterval struct {
	RunID      string   `json:"run_id"`
	Method     string   `json:"method"` // percentile | normal
	Samples    int      `json:"samples"`
	Used       int      `json:"used"` // 정의된 재표본 수 (보험료 합 0인 재표본 제외)
	Confidence float64  `json:"confidence"`
	Seed       int64    `json:"seed"`
	Estimate   Ratio    `json:"estimate"`
	Lower      Ratio    `json:"lower"`
	Upper      Ratio    `json:"upper"`
	StdErr     *float64 `json:"std_err"`
	Note       string   `json:"note,omitempty"`
}

// Bounded reports whether both interval bounds are defined
func (r *RatioInterval) Bounded() bool {
	return r.Lower.Defined && r.Upper.Defined
}
