// Package report runs every analysis an analysis profile enables and caches the result.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/claimlens/internal/bootstrap"
	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
	"github.com/wonny/claimlens/internal/excess"
	"github.com/wonny/claimlens/internal/lossratio"
	"github.com/wonny/claimlens/internal/profile"
	"github.com/wonny/claimlens/internal/quality"
	"github.com/wonny/claimlens/internal/severity"
	"github.com/wonny/claimlens/internal/significance"
	"github.com/wonny/claimlens/internal/trends"
)

// Analysis names used as Report.Errors keys
const (
	AnalysisOverall  = "loss_ratio"
	AnalysisHasClaim = "has_claim"
	AnalysisExcess   = "excess"
	AnalysisMonthly  = "monthly"
	AnalysisMissing  = "missing"
	AnalysisDescribe = "describe"
	AnalysisSeverity = "severity"
	AnalysisInterval = "loss_ratio_interval"
)

// SignificanceAlpha is the level at which tests are reported as significant
const SignificanceAlpha = 0.05

// Builder assembles a Report from a dataset and a profile
type Builder struct {
	log zerolog.Logger
	now func() time.Time
}

// NewBuilder creates a new report builder
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{
		log: log.With().Str("component", "report.builder").Logger(),
		now: time.Now,
	}
}

// Build runs the analyses enabled by p.
// A failing analysis is recorded in Report.Errors and the rest still run.
// Only a cancelled context or an unusable profile aborts the build.
func (b *Builder) Build(ctx context.Context, ds *dataset.Dataset, p *profile.Profile) (*contracts.Report, error) {
	start := time.Now()

	hash, err := profile.Hash(p)
	if err != nil {
		return nil, fmt.Errorf("hash profile: %w", err)
	}
	cols := p.Columns.WithDefaults()

	rep := &contracts.Report{
		ProfileHash: hash,
		GeneratedAt: b.now().UTC(),
		Rows:        ds.Len(),
		Alpha:       SignificanceAlpha,
	}

	steps := []struct {
		name string
		run  func(*dataset.Dataset, *profile.Profile, contracts.Columns, *contracts.Report)
	}{
		{"prepare", b.prepare},
		{"loss_ratio", b.lossRatio},
		{"anova", b.anova},
		{"chi_squared", b.chiSquared},
		{"trends", b.trends},
		{"quality", b.quality},
		{"severity", b.severity},
		{"bootstrap", func(ds *dataset.Dataset, p *profile.Profile, cols contracts.Columns, rep *contracts.Report) {
			b.interval(ctx, ds, p, cols, rep)
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("report cancelled before %s: %w", step.name, err)
		}
		step.run(ds, p, cols, rep)
	}
	rep.Significant = significant(rep, SignificanceAlpha)

	ev := b.log.Info()
	if rep.HasErrors() {
		ev = b.log.Warn().Int("failed", len(rep.Errors))
	}
	ev.Str("profile_hash", hash[:12]).
		Int("rows", rep.Rows).
		Dur("elapsed", time.Since(start)).
		Msg("report built")

	return rep, nil
}

// prepare adds the derived columns later analyses rely on
func (b *Builder) prepare(ds *dataset.Dataset, p *profile.Profile, cols contracts.Columns, rep *contracts.Report) {
	if ds.HasColumn(cols.Claims) {
		if _, err := ds.EnsureHasClaim(cols.Claims, cols.HasClaim); err != nil {
			rep.AddError(AnalysisHasClaim, err)
		}
	}
	if p.Excess.Enabled && !ds.HasColumn(p.Excess.Target) {
		if err := excess.Derive(ds, cols.Excess, p.Excess.Target); err != nil {
			rep.AddError(AnalysisExcess, err)
		}
	}
}

func (b *Builder) lossRatio(ds *dataset.Dataset, p *profile.Profile, cols contracts.Columns, rep *contracts.Report) {
	agg := lossratio.NewAggregator(b.log)

	overall, err := agg.Overall(ds, cols.Claims, cols.Premium)
	if err != nil {
		rep.AddError(AnalysisOverall, err)
		rep.LossRatio.Overall = contracts.UndefinedRatio
	} else {
		rep.LossRatio.Overall = overall
	}

	// 카테고리별 실패는 해당 테이블만 제외
	for _, cat := range p.LossRatio.Categories {
		rows, err := agg.ByCategory(ds, cat, cols.Claims, cols.Premium)
		if err != nil {
			rep.AddError(AnalysisOverall+":"+cat, err)
			continue
		}
		rep.LossRatio.Tables = append(rep.LossRatio.Tables, contracts.CategoryTable{Category: cat, Rows: rows})
	}
}

func (b *Builder) anova(ds *dataset.Dataset, p *profile.Profile, cols contracts.Columns, rep *contracts.Report) {
	tester := significance.NewTester(cols, b.log)

	for _, cat := range p.ANOVA.Margin {
		res, err := tester.MarginANOVA(ds, cat)
		if err != nil {
			rep.AddError("margin_anova:"+cat, err)
			continue
		}
		if rep.MarginANOVA == nil {
			rep.MarginANOVA = make(map[string]*contracts.ANOVAResult)
		}
		rep.MarginANOVA[cat] = res
	}

	for _, t := range p.ANOVA.Tests {
		name := testName(t)
		res, err := tester.ANOVA(ds, t.Group, t.Value, t.Condition.Significance())
		if err != nil {
			rep.AddError("anova:"+name, err)
			continue
		}
		if rep.ANOVA == nil {
			rep.ANOVA = make(map[string]*contracts.ANOVAResult)
		}
		rep.ANOVA[name] = res
	}
}

func (b *Builder) chiSquared(ds *dataset.Dataset, p *profile.Profile, cols contracts.Columns, rep *contracts.Report) {
	tester := significance.NewTester(cols, b.log)
	outcome := p.OutcomeColumn()

	for _, group := range p.ChiSquared.Groups {
		res, err := tester.ChiSquared(ds, group, outcome)
		if err != nil {
			rep.AddError("chi_squared:"+group, err)
			continue
		}
		if rep.ChiSquared == nil {
			rep.ChiSquared = make(map[string]*contracts.ChiSquaredResult)
		}
		rep.ChiSquared[group] = res
	}
}

func (b *Builder) trends(ds *dataset.Dataset, p *profile.Profile, cols contracts.Columns, rep *contracts.Report) {
	if !p.Trends.Monthly {
		return
	}
	monthly, err := trends.NewAnalyzer(b.log).Monthly(ds, cols)
	if err != nil {
		rep.AddError(AnalysisMonthly, err)
		return
	}
	rep.Monthly = monthly
}

func (b *Builder) quality(ds *dataset.Dataset, p *profile.Profile, cols contracts.Columns, rep *contracts.Report) {
	in := quality.NewInspector(b.log)

	if len(p.Quality.Categorical)+len(p.Quality.Numerical) > 0 {
		missing, err := in.MissingSummary(ds, p.Quality.Categorical, p.Quality.Numerical, cols.Date)
		if err != nil {
			rep.AddError(AnalysisMissing, err)
		} else {
			rep.Missing = missing
		}
	}

	if len(p.Quality.Describe) > 0 {
		desc, err := in.Describe(ds, p.Quality.Describe)
		if err != nil {
			rep.AddError(AnalysisDescribe, err)
		} else {
			rep.Describe = desc
		}
	}
}

func (b *Builder) severity(ds *dataset.Dataset, p *profile.Profile, cols contracts.Columns, rep *contracts.Report) {
	if !p.Severity.Enabled {
		return
	}
	ranking, err := severity.NewRanker(b.log).ByMakeModel(ds, cols, p.Severity.TopN)
	if err != nil {
		rep.AddError(AnalysisSeverity, err)
		return
	}
	rep.Severity = ranking
}

// interval resamples the overall loss ratio; cancellation is recorded like any other failure
func (b *Builder) interval(ctx context.Context, ds *dataset.Dataset, p *profile.Profile, cols contracts.Columns, rep *contracts.Report) {
	if !p.Bootstrap.Enabled {
		return
	}
	r, err := bootstrap.NewResampler(p.Bootstrap.Config, b.log)
	if err != nil {
		rep.AddError(AnalysisInterval, err)
		return
	}
	res, err := r.LossRatio(ctx, ds, cols)
	if err != nil {
		rep.AddError(AnalysisInterval, err)
		return
	}
	rep.Interval = res
}

// significant lists the tests of rep whose p-value is below alpha,
// keyed like Report.Errors
func significant(rep *contracts.Report, alpha float64) []string {
	var names []string
	for cat, res := range rep.MarginANOVA {
		if res.Significant(alpha) {
			names = append(names, "margin_anova:"+cat)
		}
	}
	for name, res := range rep.ANOVA {
		if res.Significant(alpha) {
			names = append(names, "anova:"+name)
		}
	}
	for group, res := range rep.ChiSquared {
		if res.Significant(alpha) {
			names = append(names, "chi_squared:"+group)
		}
	}
	sort.Strings(names)
	return names
}

// testName returns the report key of an ANOVA test
func testName(t profile.ANOVATest) string {
	if t.Name != "" {
		return t.Name
	}
	if t.Condition != nil {
		return fmt.Sprintf("%s_by_%s_where_%s=%s", t.Value, t.Group, t.Condition.Column, t.Condition.Value)
	}
	return fmt.Sprintf("%s_by_%s", t.Value, t.Group)
}
