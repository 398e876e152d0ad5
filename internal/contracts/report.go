package contracts

import "time"

// Report is the full exploratory analysis of one dataset
// ⭐ SSOT: API, CLI, 스케줄러가 공유하는 리포트 포맷
type Report struct {
	ProfileHash string                       `json:"profile_hash"`
	GeneratedAt time.Time                    `json:"generated_at"`
	Rows        int                          `json:"rows"`
	LossRatio   LossRatioSummary             `json:"loss_ratio"`
	Interval    *RatioInterval               `json:"loss_ratio_interval,omitempty"`
	MarginANOVA map[string]*ANOVAResult      `json:"margin_anova,omitempty"`
	ANOVA       map[string]*ANOVAResult      `json:"anova,omitempty"`
	ChiSquared  map[string]*ChiSquaredResult `json:"chi_squared,omitempty"`
	Monthly     []MonthlyClaimStats          `json:"monthly,omitempty"`
	Missing     []MissingValue               `json:"missing,omitempty"`
	Describe    []ColumnSummary              `json:"describe,omitempty"`
	Severity    *SeverityRanking             `json:"severity,omitempty"`
	Alpha       float64                      `json:"alpha"`
	Significant []string                     `json:"significant,omitempty"` // alpha 미만 p-value 검정 (정렬됨)
	Errors      map[string]string            `json:"errors,omitempty"` // 분석별 실패 사유
}

// AddError records a failed analysis without aborting the report
func (r *Report) AddError(analysis string, err error) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[analysis] = err.Error()
}

// HasErrors reports whether any analysis failed
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}
