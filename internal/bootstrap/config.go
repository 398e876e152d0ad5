package bootstrap

import "fmt"

// Method is how the interval bounds are read from the resampled ratios
type Method string

const (
	// MethodPercentile uses the empirical quantiles of the resampled ratios
	MethodPercentile Method = "percentile"
	// MethodNormal uses estimate ± z * standard error
	MethodNormal Method = "normal"
)

// Config controls a resampling run
// ⭐ SSOT: 재현성을 위해 모든 설정을 결과에 기록
type Config struct {
	Samples    int     `yaml:"samples" json:"samples"`       // 재표본 수 (기본: 2000)
	Confidence float64 `yaml:"confidence" json:"confidence"` // 신뢰수준 (기본: 0.95)
	Method     Method  `yaml:"method" json:"method"`         // percentile | normal
	Seed       int64   `yaml:"seed" json:"seed"`             // 0 = 랜덤
	MinRows    int     `yaml:"min_rows" json:"min_rows"`     // 최소 행 수 (기본: 30)
}

// DefaultConfig returns the default resampling settings
func DefaultConfig() Config {
	return Config{
		Samples:    2000,
		Confidence: 0.95,
		Method:     MethodPercentile,
		MinRows:    30,
	}
}

// WithDefaults fills zero fields from DefaultConfig
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Samples == 0 {
		c.Samples = d.Samples
	}
	if c.Confidence == 0 {
		c.Confidence = d.Confidence
	}
	if c.Method == "" {
		c.Method = d.Method
	}
	if c.MinRows == 0 {
		c.MinRows = d.MinRows
	}
	return c
}

// Validate checks the settings
func (c Config) Validate() error {
	if c.Samples < 100 || c.Samples > 100000 {
		return fmt.Errorf("samples must be between 100 and 100000, got %d", c.Samples)
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("confidence must be in (0, 1), got %g", c.Confidence)
	}
	switch c.Method {
	case MethodPercentile, MethodNormal:
	default:
		return fmt.Errorf("unknown method %q", c.Method)
	}
	if c.MinRows < 2 {
		return fmt.Errorf("min_rows must be at least 2, got %d", c.MinRows)
	}
	return nil
}
