package profile

import (
	"github.com/wonny/claimlens/internal/bootstrap"
	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
	"github.com/wonny/claimlens/internal/significance"
)

// Profile는 한 데이터셋에 대해 실행할 분석 전체 설정
type Profile struct {
	Meta       Meta              `yaml:"meta" json:"meta"`
	Dataset    Dataset           `yaml:"dataset" json:"dataset"`
	Columns    contracts.Columns `yaml:"columns" json:"columns"`
	LossRatio  LossRatio         `yaml:"loss_ratio" json:"loss_ratio"`
	ANOVA      ANOVA             `yaml:"anova" json:"anova"`
	ChiSquared ChiSquared        `yaml:"chi_squared" json:"chi_squared"`
	Trends     Trends            `yaml:"trends" json:"trends"`
	Quality    Quality           `yaml:"quality" json:"quality"`
	Severity   Severity          `yaml:"severity" json:"severity"`
	Excess     Excess            `yaml:"excess" json:"excess"`
	Bootstrap  Bootstrap         `yaml:"bootstrap" json:"bootstrap"`
}

// Meta 메타 정보
type Meta struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// Dataset describes how the dataset file is read
type Dataset struct {
	Path          string   `yaml:"path" json:"path"`
	Delimiter     string   `yaml:"delimiter" json:"delimiter"` // 단일 문자, 빈 값 = 확장자로 결정
	Sheet         string   `yaml:"sheet" json:"sheet"`
	StringColumns []string `yaml:"string_columns" json:"string_columns"`
	NullValues    []string `yaml:"null_values" json:"null_values"`
}

// Options converts the dataset section into loader options
func (d Dataset) Options() dataset.Options {
	opts := dataset.Options{
		Sheet:         d.Sheet,
		StringColumns: d.StringColumns,
		NullValues:    d.NullValues,
	}
	if r := []rune(d.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}

// LossRatio lists the category columns that get a by-category table
type LossRatio struct {
	Categories []string `yaml:"categories" json:"categories"`
}

// ANOVA lists margin ANOVA categories and ad-hoc tests
type ANOVA struct {
	Margin []string    `yaml:"margin" json:"margin"`
	Tests  []ANOVATest `yaml:"tests" json:"tests"`
}

// ANOVATest is one one-way ANOVA of Value across the groups of Group
type ANOVATest struct {
	Name      string     `yaml:"name" json:"name"`
	Group     string     `yaml:"group" json:"group"`
	Value     string     `yaml:"value" json:"value"`
	Condition *Condition `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// Condition restricts an ANOVA test to rows where Column equals Value
type Condition struct {
	Column string `yaml:"column" json:"column"`
	Value  string `yaml:"value" json:"value"`
}

// Significance converts the condition for the significance package
func (c *Condition) Significance() *significance.Condition {
	if c == nil {
		return nil
	}
	return &significance.Condition{Column: c.Column, Value: c.Value}
}

// ChiSquared lists the group columns tested against the outcome column
type ChiSquared struct {
	Groups  []string `yaml:"groups" json:"groups"`
	Outcome string   `yaml:"outcome" json:"outcome"` // 빈 값 = columns.has_claim
}

// Trends 월별 추세
type Trends struct {
	Monthly bool `yaml:"monthly" json:"monthly"`
}

// Quality lists the columns of the missing-value and describe analyses
type Quality struct {
	Categorical []string `yaml:"categorical" json:"categorical"`
	Numerical   []string `yaml:"numerical" json:"numerical"`
	Describe    []string `yaml:"describe" json:"describe"`
}

// Severity 차종별 평균 청구액 순위
type Severity struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	TopN    int  `yaml:"top_n" json:"top_n"`
}

// Excess derives a numeric excess amount column before the analyses run
type Excess struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Target  string `yaml:"target" json:"target"`
}

// Bootstrap 전체 손해율 재표본 신뢰구간 (행 수 × samples 만큼 연산하므로 기본 비활성)
type Bootstrap struct {
	Enabled          bool `yaml:"enabled" json:"enabled"`
	bootstrap.Config `yaml:",inline"`
}

// OutcomeColumn returns the chi-squared outcome column
func (p *Profile) OutcomeColumn() string {
	if p.ChiSquared.Outcome != "" {
		return p.ChiSquared.Outcome
	}
	return p.Columns.HasClaim
}

// Default returns the built-in profile for the motor insurance claims dataset
func Default() *Profile {
	return &Profile{
		Meta: Meta{Name: "insurance_claims", Version: "1"},
		Dataset: Dataset{
			StringColumns: []string{"PostalCode", "mmcode", "VehicleType", "Gender", "Province"},
		},
		Columns: contracts.DefaultColumns(),
		LossRatio: LossRatio{
			Categories: []string{"Province", "VehicleType", "Gender"},
		},
		ANOVA: ANOVA{
			Margin: []string{"PostalCode", "Gender"},
		},
		ChiSquared: ChiSquared{
			Groups: []string{"Province", "PostalCode", "Gender"},
		},
		Trends: Trends{Monthly: true},
		Quality: Quality{
			Categorical: []string{"Gender", "Province", "VehicleType"},
			Numerical:   []string{contracts.DefaultClaimsColumn, contracts.DefaultPremiumColumn, "CustomValueEstimate"},
			Describe:    []string{contracts.DefaultClaimsColumn, contracts.DefaultPremiumColumn},
		},
		Severity: Severity{Enabled: true, TopN: 10},
	}
}
