package contracts

// Default column names of the claims dataset
const (
	DefaultClaimsColumn   = "TotalClaims"
	DefaultPremiumColumn  = "TotalPremium"
	DefaultMarginColumn   = "Margin"
	DefaultHasClaimColumn = "HasClaim"
	DefaultDateColumn     = "TransactionMonth"
	DefaultPolicyColumn   = "PolicyID"
	DefaultMakeColumn     = "make"
	DefaultModelColumn    = "Model"
	DefaultExcessColumn   = "ExcessSelected"

	// LossRatioColumn is the value column name of by-category outputs
	LossRatioColumn = "LossRatio"
)

// Columns maps the recognized column roles to dataset column names
// ⭐ SSOT: 컬럼 이름은 이 구조체로만 전달 (전역 변수 금지)
type Columns struct {
	Claims   string `yaml:"claims" json:"claims"`
	Premium  string `yaml:"premium" json:"premium"`
	Margin   string `yaml:"margin" json:"margin"`
	HasClaim string `yaml:"has_claim" json:"has_claim"`
	Date     string `yaml:"date" json:"date"`
	Policy   string `yaml:"policy" json:"policy"`
	Make     string `yaml:"make" json:"make"`
	Model    string `yaml:"model" json:"model"`
	Excess   string `yaml:"excess" json:"excess"`
}

// DefaultColumns returns the column roles of the standard claims dataset
func DefaultColumns() Columns {
	return Columns{
		Claims:   DefaultClaimsColumn,
		Premium:  DefaultPremiumColumn,
		Margin:   DefaultMarginColumn,
		HasClaim: DefaultHasClaimColumn,
		Date:     DefaultDateColumn,
		Policy:   DefaultPolicyColumn,
		Make:     DefaultMakeColumn,
		Model:    DefaultModelColumn,
		Excess:   DefaultExcessColumn,
	}
}

// WithDefaults fills empty roles from DefaultColumns
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if c.Claims == "" {
		c.Claims = d.Claims
	}
	if c.Premium == "" {
		c.Premium = d.Premium
	}
	if c.Margin == "" {
		c.Margin = d.Margin
	}
	if c.HasClaim == "" {
		c.HasClaim = d.HasClaim
	}
	if c.Date == "" {
		c.Date = d.Date
	}
	if c.Policy == "" {
		c.Policy = d.Policy
	}
	if c.Make == "" {
		c.Make = d.Make
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Excess == "" {
		c.Excess = d.Excess
	}
	return c
}
