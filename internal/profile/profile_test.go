package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/claimlens/internal/bootstrap"
)

func TestLoad(t *testing.T) {
	path := "../../configs/profile.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("profile file not found")
	}

	p, data, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	assert.Equal(t, "insurance_claims", p.Meta.Name)
	assert.Equal(t, '|', p.Dataset.Options().Delimiter)
	assert.Equal(t, "TotalClaims", p.Columns.Claims)
	assert.Len(t, p.ANOVA.Tests, 2)
	require.NotNil(t, p.ANOVA.Tests[1].Condition)
	assert.Equal(t, "HasClaim", p.ANOVA.Tests[1].Condition.Significance().Column)
	assert.False(t, p.Bootstrap.Enabled)
	assert.Equal(t, 2000, p.Bootstrap.Samples)
	assert.Equal(t, int64(42), p.Bootstrap.Seed)
	assert.Equal(t, bootstrap.MethodPercentile, p.Bootstrap.Method)

	// 동일 설정 → 동일 해시
	hash, err := Hash(p)
	require.NoError(t, err)
	assert.Len(t, hash, 64)
	hash2, _ := Hash(p)
	assert.Equal(t, hash, hash2)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("loss_ratio:\n  categoriez: [Province]\n"))
	assert.Error(t, err)
}

func TestParse_FillsColumnDefaults(t *testing.T) {
	p, err := Parse([]byte("columns:\n  claims: Claims\n"))
	require.NoError(t, err)
	assert.Equal(t, "Claims", p.Columns.Claims)
	assert.Equal(t, "TotalPremium", p.Columns.Premium)
	assert.Equal(t, "HasClaim", p.OutcomeColumn())
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestHash_ChangesWithProfile(t *testing.T) {
	a := Default()
	b := Default()
	b.Severity.TopN = 5

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Profile)
		field  string
	}{
		{"long delimiter", func(p *Profile) { p.Dataset.Delimiter = "||" }, "dataset.delimiter"},
		{"bad extension", func(p *Profile) { p.Dataset.Path = "claims.parquet" }, "dataset.path"},
		{"empty role", func(p *Profile) { p.Columns.Premium = "" }, "columns.premium"},
		{"same claims and premium", func(p *Profile) { p.Columns.Premium = p.Columns.Claims }, "columns"},
		{"margin collides", func(p *Profile) { p.Columns.Margin = p.Columns.Claims }, "columns.margin"},
		{"duplicate category", func(p *Profile) { p.LossRatio.Categories = []string{"Gender", "Gender"} }, "loss_ratio.categories"},
		{"blank margin category", func(p *Profile) { p.ANOVA.Margin = []string{" "} }, "anova.margin"},
		{"anova test without value", func(p *Profile) { p.ANOVA.Tests = []ANOVATest{{Group: "Gender"}} }, "anova.tests[0]"},
		{"anova condition without column", func(p *Profile) {
			p.ANOVA.Tests = []ANOVATest{{Group: "Gender", Value: "TotalClaims", Condition: &Condition{Value: "x"}}}
		}, "anova.tests[0].condition.column"},
		{"chi2 group is outcome", func(p *Profile) { p.ChiSquared.Groups = []string{"HasClaim"} }, "chi_squared.groups"},
		{"top_n too large", func(p *Profile) { p.Severity.TopN = 1000 }, "severity.top_n"},
		{"excess without target", func(p *Profile) { p.Excess.Enabled = true }, "excess.target"},
		{"bootstrap too few samples", func(p *Profile) {
			p.Bootstrap.Enabled = true
			p.Bootstrap.Samples = 10
		}, "bootstrap"},
		{"bad url extension", func(p *Profile) { p.Dataset.Path = "https://example.com/claims.json?x=1" }, "dataset.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(p)

			err := Validate(p)
			require.Error(t, err)
			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestWarn(t *testing.T) {
	p := Default()
	p.LossRatio.Categories = nil
	p.Dataset.Path = "claims.txt"
	p.ANOVA.Margin = []string{"Citizenship"}

	codes := make([]string, 0)
	for _, w := range Warn(p) {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{"NO_CATEGORIES", "TXT_PIPE", "NUMERIC_CATEGORY"}, codes)
}

func TestValidate_URLPath(t *testing.T) {
	p := Default()
	p.Dataset.Path = "https://example.com/data/claims.txt?token=abc"
	assert.NoError(t, Validate(p))
}

func TestValidate_BootstrapDisabledIgnoresSettings(t *testing.T) {
	p := Default()
	p.Bootstrap.Samples = 10
	assert.NoError(t, Validate(p))
}

func TestConditionSignificance_Nil(t *testing.T) {
	var c *Condition
	assert.Nil(t, c.Significance())
}
