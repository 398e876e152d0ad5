package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/claimlens/internal/bootstrap"
	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
	"github.com/wonny/claimlens/internal/profile"
	"github.com/wonny/claimlens/pkg/config"
	"github.com/wonny/claimlens/pkg/redis"
)

func claimsRecords() [][]string {
	return [][]string{
		{"PolicyID", "TransactionMonth", "Province", "Gender", "make", "Model", "TotalPremium", "TotalClaims", "ExcessSelected"},
		{"1", "2015-02-01 00:00:00", "Gauteng", "Male", "TOYOTA", "Corolla", "100", "0", "No excess"},
		{"2", "2015-02-01 00:00:00", "Gauteng", "Female", "TOYOTA", "Corolla", "200", "150", "Mobility - Windscreen R 5 000"},
		{"3", "2015-03-01 00:00:00", "Western Cape", "Male", "VW", "Polo", "100", "50", "R2500"},
		{"4", "2015-03-01 00:00:00", "Western Cape", "Female", "VW", "Polo", "50", "0", "No excess"},
		{"5", "2015-03-01 00:00:00", "Gauteng", "", "FORD", "Ranger", "150", "0", ""},
	}
}

func newClaims(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords(claimsRecords(), dataset.Options{})
	require.NoError(t, err)
	return ds
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		Columns:    contracts.DefaultColumns(),
		LossRatio:  profile.LossRatio{Categories: []string{"Province", "VehicleType"}},
		ANOVA:      profile.ANOVA{Margin: []string{"Province"}, Tests: []profile.ANOVATest{{Group: "Province", Value: "TotalPremium"}}},
		ChiSquared: profile.ChiSquared{Groups: []string{"Gender"}},
		Trends:     profile.Trends{Monthly: true},
		Quality: profile.Quality{
			Categorical: []string{"Gender"},
			Numerical:   []string{"TotalClaims"},
			Describe:    []string{"TotalPremium"},
		},
		Severity: profile.Severity{Enabled: true, TopN: 2},
		Excess:   profile.Excess{Enabled: true, Target: "ExcessAmount"},
	}
}

func TestBuild(t *testing.T) {
	ds := newClaims(t)
	p := testProfile()

	rep, err := NewBuilder(zerolog.Nop()).Build(context.Background(), ds, p)
	require.NoError(t, err)

	hash, _ := profile.Hash(p)
	assert.Equal(t, hash, rep.ProfileHash)
	assert.Equal(t, 5, rep.Rows)

	// 200 / 600
	require.True(t, rep.LossRatio.Overall.Defined)
	assert.InDelta(t, 0.3333, rep.LossRatio.Overall.Value, 1e-4)
	require.Len(t, rep.LossRatio.Tables, 1)
	assert.Equal(t, "Province", rep.LossRatio.Tables[0].Category)

	// 없는 카테고리는 에러로 기록되고 나머지는 계속 진행
	assert.Contains(t, rep.Errors, "loss_ratio:VehicleType")
	assert.Len(t, rep.Errors, 1)

	require.Contains(t, rep.MarginANOVA, "Province")
	assert.True(t, rep.MarginANOVA["Province"].Ran())
	require.Contains(t, rep.ANOVA, "TotalPremium_by_Province")
	assert.Equal(t, 2, rep.ANOVA["TotalPremium_by_Province"].GroupCount)

	require.Contains(t, rep.ChiSquared, "Gender")
	assert.Equal(t, 1, rep.ChiSquared["Gender"].DOF)

	assert.Equal(t, SignificanceAlpha, rep.Alpha)

	assert.Len(t, rep.Monthly, 2)

	require.NotEmpty(t, rep.Missing)
	assert.Equal(t, "Gender", rep.Missing[0].Column)
	assert.InDelta(t, 20.0, rep.Missing[0].Percent, 1e-9)

	require.Len(t, rep.Describe, 1)
	assert.Equal(t, 5, rep.Describe[0].Count)

	require.NotNil(t, rep.Severity)
	assert.Equal(t, "TOYOTA Corolla", rep.Severity.Top[0].Label())
	assert.Equal(t, 75.0, rep.Severity.Top[0].AvgClaimAmount)

	// 파생 컬럼
	assert.True(t, ds.HasColumn("HasClaim"))
	assert.True(t, ds.HasColumn("ExcessAmount"))
}

func TestBuild_DisabledSections(t *testing.T) {
	p := &profile.Profile{Columns: contracts.DefaultColumns()}

	rep, err := NewBuilder(zerolog.Nop()).Build(context.Background(), newClaims(t), p)
	require.NoError(t, err)

	assert.False(t, rep.HasErrors())
	assert.Empty(t, rep.LossRatio.Tables)
	assert.Nil(t, rep.Monthly)
	assert.Nil(t, rep.Severity)
	assert.Nil(t, rep.Missing)
	assert.Nil(t, rep.Interval)
}

func TestBuild_Interval(t *testing.T) {
	p := &profile.Profile{Columns: contracts.DefaultColumns()}
	p.Bootstrap.Enabled = true
	p.Bootstrap.Config = bootstrap.Config{Samples: 100, Seed: 1, MinRows: 2}

	rep, err := NewBuilder(zerolog.Nop()).Build(context.Background(), newClaims(t), p)
	require.NoError(t, err)

	require.NotNil(t, rep.Interval)
	assert.InDelta(t, 0.3333, rep.Interval.Estimate.Value, 1e-4)
	assert.True(t, rep.Interval.Bounded())
	assert.Equal(t, 100, rep.Interval.Used)
}

func TestBuild_IntervalConfigErrorIsRecorded(t *testing.T) {
	p := &profile.Profile{Columns: contracts.DefaultColumns()}
	p.Bootstrap.Enabled = true
	p.Bootstrap.Config = bootstrap.Config{Samples: 5}

	rep, err := NewBuilder(zerolog.Nop()).Build(context.Background(), newClaims(t), p)
	require.NoError(t, err)

	assert.Nil(t, rep.Interval)
	assert.Contains(t, rep.Errors, AnalysisInterval)
}

func TestBuild_MissingPremiumIsRecorded(t *testing.T) {
	ds, err := dataset.FromRecords([][]string{{"Province", "TotalClaims"}, {"Gauteng", "1"}}, dataset.Options{})
	require.NoError(t, err)

	p := &profile.Profile{Columns: contracts.DefaultColumns()}
	rep, err := NewBuilder(zerolog.Nop()).Build(context.Background(), ds, p)
	require.NoError(t, err)

	assert.False(t, rep.LossRatio.Overall.Defined)
	assert.Contains(t, rep.Errors, AnalysisOverall)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(zerolog.Nop()).Build(ctx, newClaims(t), testProfile())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSignificant(t *testing.T) {
	low, high := 0.01, 0.3
	f := 2.0
	rep := &contracts.Report{
		MarginANOVA: map[string]*contracts.ANOVAResult{
			"Province": {FStatistic: &f, PValue: &low},
			"Gender":   {FStatistic: &f, PValue: &high},
			"Empty":    {Note: "insufficient"},
		},
		ANOVA: map[string]*contracts.ANOVAResult{
			"TotalPremium_by_Province": {FStatistic: &f, PValue: &low},
		},
		ChiSquared: map[string]*contracts.ChiSquaredResult{
			"Gender":   {DOF: 1, PValue: 0.001},
			"Province": {DOF: 0, PValue: 1},
		},
	}

	assert.Equal(t, []string{
		"anova:TotalPremium_by_Province",
		"chi_squared:Gender",
		"margin_anova:Province",
	}, significant(rep, SignificanceAlpha))
	assert.Empty(t, significant(&contracts.Report{}, SignificanceAlpha))
}

func TestTestName(t *testing.T) {
	assert.Equal(t, "custom", testName(profile.ANOVATest{Name: "custom", Group: "g", Value: "v"}))
	assert.Equal(t, "v_by_g", testName(profile.ANOVATest{Group: "g", Value: "v"}))
	assert.Equal(t, "v_by_g_where_c=x", testName(profile.ANOVATest{
		Group: "g", Value: "v", Condition: &profile.Condition{Column: "c", Value: "x"},
	}))
}

// fakeSource loads a fixed dataset and counts loads
type fakeSource struct {
	name  string
	loads int
	err   error
}

func (f *fakeSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return dataset.FromRecords(claimsRecords(), dataset.Options{})
}

func (f *fakeSource) Describe() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func newService(t *testing.T, src dataset.Source) *Service {
	return newServiceTTL(t, src, time.Minute)
}

func newServiceTTL(t *testing.T, src dataset.Source, ttl time.Duration) *Service {
	t.Helper()
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)

	svc, err := NewService(src, NewBuilder(zerolog.Nop()), redis.NewCache(client, "test"), testProfile(), ttl, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestService_GetOrBuild(t *testing.T) {
	src := &fakeSource{}
	svc := newService(t, src)
	ctx := context.Background()

	first, cached, err := svc.GetOrBuild(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, svc.ProfileHash(), first.ProfileHash)

	second, cached, err := svc.GetOrBuild(ctx)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Same(t, first, second)
	assert.Equal(t, 1, src.loads)
}

func TestService_ExpiredReportIsRebuilt(t *testing.T) {
	src := &fakeSource{}
	svc := newServiceTTL(t, src, time.Millisecond)
	ctx := context.Background()

	clock := time.Now()
	svc.now = func() time.Time { return clock }

	first, _, err := svc.GetOrBuild(ctx)
	require.NoError(t, err)

	clock = clock.Add(20 * time.Millisecond)
	second, cached, err := svc.GetOrBuild(ctx)
	require.NoError(t, err)
	assert.False(t, cached, "expired report must not be served from memory")
	assert.NotSame(t, first, second)

	third, cached, err := svc.GetOrBuild(ctx)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Same(t, second, third)
}

func TestService_CacheKeyIncludesSource(t *testing.T) {
	a := newService(t, &fakeSource{name: "/data/claims-2015.txt"})
	b := newService(t, &fakeSource{name: "/data/claims-2016.txt"})

	assert.Equal(t, a.ProfileHash(), b.ProfileHash())
	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	assert.True(t, strings.HasPrefix(a.CacheKey(), a.ProfileHash()+":"))
	assert.Equal(t, CacheKey(a.ProfileHash(), "/data/claims-2015.txt"), a.CacheKey())
}

func TestService_Cached(t *testing.T) {
	svc := newService(t, &fakeSource{})

	calls := 0
	var got contracts.CategoryTable
	hit, err := svc.Cached(context.Background(), &got, func() (interface{}, error) {
		calls++
		return contracts.CategoryTable{Category: "Province", Rows: []contracts.CategoryRatio{
			{Category: "A", LossRatio: contracts.UndefinedRatio},
		}}, nil
	}, "loss-ratio", "Province")
	require.NoError(t, err)

	assert.False(t, hit, "redis disabled")
	assert.Equal(t, 1, calls)
	require.Len(t, got.Rows, 1)
	assert.False(t, got.Rows[0].LossRatio.Defined)
}

func TestService_Refresh(t *testing.T) {
	src := &fakeSource{}
	svc := newService(t, src)
	ctx := context.Background()

	first, _, err := svc.GetOrBuild(ctx)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, refreshed)
	assert.Equal(t, 2, src.loads)

	latest, cached, err := svc.GetOrBuild(ctx)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Same(t, refreshed, latest)
}

func TestService_SourceError(t *testing.T) {
	boom := errors.New("file not found")
	svc := newService(t, &fakeSource{err: boom})

	_, _, err := svc.GetOrBuild(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = svc.Dataset(context.Background())
	assert.ErrorIs(t, err, boom)
}
