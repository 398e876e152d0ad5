package profile

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wonny/claimlens/internal/dataset"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// maxTopN bounds the severity ranking size
const maxTopN = 100

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(p *Profile) error {
	// === Dataset ===
	if n := len([]rune(p.Dataset.Delimiter)); n > 1 {
		return ValidationError{"dataset.delimiter", "must be a single character"}
	}
	if p.Dataset.Path != "" {
		switch ext := datasetExt(p.Dataset.Path); ext {
		case ".csv", ".txt", ".xlsx":
		default:
			return ValidationError{"dataset.path", fmt.Sprintf("unsupported extension %q", ext)}
		}
	}

	// === Columns ===
	roles := map[string]string{
		"columns.claims":    p.Columns.Claims,
		"columns.premium":   p.Columns.Premium,
		"columns.margin":    p.Columns.Margin,
		"columns.has_claim": p.Columns.HasClaim,
		"columns.date":      p.Columns.Date,
		"columns.policy":    p.Columns.Policy,
		"columns.make":      p.Columns.Make,
		"columns.model":     p.Columns.Model,
		"columns.excess":    p.Columns.Excess,
	}
	for _, field := range sortedKeys(roles) {
		if strings.TrimSpace(roles[field]) == "" {
			return ValidationError{field, "required"}
		}
	}
	if p.Columns.Claims == p.Columns.Premium {
		return ValidationError{"columns", "claims and premium must differ"}
	}
	if p.Columns.Margin == p.Columns.Claims || p.Columns.Margin == p.Columns.Premium {
		return ValidationError{"columns.margin", "must differ from claims and premium"}
	}

	// === Analyses ===
	if err := validateList("loss_ratio.categories", p.LossRatio.Categories); err != nil {
		return err
	}
	if err := validateList("anova.margin", p.ANOVA.Margin); err != nil {
		return err
	}
	for i, t := range p.ANOVA.Tests {
		field := fmt.Sprintf("anova.tests[%d]", i)
		if t.Group == "" || t.Value == "" {
			return ValidationError{field, "group and value are required"}
		}
		if t.Group == t.Value {
			return ValidationError{field, "group and value must differ"}
		}
		if t.Condition != nil && t.Condition.Column == "" {
			return ValidationError{field + ".condition.column", "required"}
		}
	}
	if err := validateList("chi_squared.groups", p.ChiSquared.Groups); err != nil {
		return err
	}
	for _, g := range p.ChiSquared.Groups {
		if g == p.OutcomeColumn() {
			return ValidationError{"chi_squared.groups", fmt.Sprintf("%s is the outcome column", g)}
		}
	}
	if err := validateList("quality.categorical", p.Quality.Categorical); err != nil {
		return err
	}
	if err := validateList("quality.numerical", p.Quality.Numerical); err != nil {
		return err
	}
	if err := validateList("quality.describe", p.Quality.Describe); err != nil {
		return err
	}

	if p.Severity.TopN < 0 || p.Severity.TopN > maxTopN {
		return ValidationError{"severity.top_n", fmt.Sprintf("must be in range [0, %d]", maxTopN)}
	}
	if p.Excess.Enabled && p.Excess.Target == "" {
		return ValidationError{"excess.target", "required when excess is enabled"}
	}
	if p.Bootstrap.Enabled {
		if err := p.Bootstrap.Config.WithDefaults().Validate(); err != nil {
			return ValidationError{"bootstrap", err.Error()}
		}
	}

	return nil
}

// Warn returns soft violations that do not stop the program
func Warn(p *Profile) []Warning {
	var warnings []Warning

	if len(p.LossRatio.Categories) == 0 {
		warnings = append(warnings, Warning{"NO_CATEGORIES", "loss_ratio.categories is empty; only the overall ratio is reported"})
	}
	if p.Dataset.Path != "" && datasetExt(p.Dataset.Path) == ".txt" && p.Dataset.Delimiter == "" {
		warnings = append(warnings, Warning{"TXT_PIPE", "dataset.delimiter not set; .txt files are read as pipe-delimited"})
	}
	for _, c := range p.ANOVA.Margin {
		if !contains(p.Dataset.StringColumns, c) {
			warnings = append(warnings, Warning{"NUMERIC_CATEGORY", fmt.Sprintf("anova.margin %s is not in dataset.string_columns; numeric codes may be read as floats", c)})
		}
	}

	return warnings
}

// validateList rejects empty entries and duplicates
func validateList(field string, items []string) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			return ValidationError{field, "contains an empty entry"}
		}
		if seen[it] {
			return ValidationError{field, fmt.Sprintf("duplicate entry %s", it)}
		}
		seen[it] = true
	}
	return nil
}

// datasetExt returns the lower-case extension of a dataset file path or URL
func datasetExt(p string) string {
	if dataset.IsURL(p) {
		if u, err := url.Parse(p); err == nil {
			return strings.ToLower(path.Ext(u.Path))
		}
	}
	return strings.ToLower(filepath.Ext(p))
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
