package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/claimlens/internal/bootstrap"
	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
	"github.com/wonny/claimlens/internal/lossratio"
	"github.com/wonny/claimlens/internal/quality"
	"github.com/wonny/claimlens/internal/report"
	"github.com/wonny/claimlens/internal/severity"
	"github.com/wonny/claimlens/internal/significance"
	"github.com/wonny/claimlens/internal/trends"
	"github.com/wonny/claimlens/pkg/logger"
)

// AnalysisHandler serves single analyses over the loaded dataset
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	svc    *report.Service
	logger *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(svc *report.Service, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		svc:    svc,
		logger: log.WithComponent("api.analysis"),
	}
}

func (h *AnalysisHandler) columns() contracts.Columns {
	return h.svc.Profile().Columns.WithDefaults()
}

// dataset loads the shared dataset or writes an error response
func (h *AnalysisHandler) dataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	ds, err := h.svc.Dataset(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dataset")
		respondError(w, http.StatusServiceUnavailable, "Dataset unavailable")
		return nil, false
	}
	return ds, true
}

// GetLossRatio returns the overall loss ratio and the profile's category tables
// GET /api/loss-ratio?categories=Province,Gender
func (h *AnalysisHandler) GetLossRatio(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	categories := h.svc.Profile().LossRatio.Categories
	if q := splitList(r.URL.Query().Get("categories")); len(q) > 0 {
		categories = q
	}

	summary, err := lossratio.NewAggregator(h.logger.Zerolog()).Summarize(ds, categories, h.columns())
	if err != nil {
		respondAnalysisError(w, h.logger, "loss ratio", err)
		return
	}
	respondData(w, summary)
}

// GetLossRatioByCategory returns the loss ratio per value of one category
// GET /api/loss-ratio/{category}
func (h *AnalysisHandler) GetLossRatioByCategory(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	cols := h.columns()
	var rows []contracts.CategoryRatio
	_, err := h.svc.Cached(r.Context(), &rows, func() (interface{}, error) {
		return lossratio.NewAggregator(h.logger.Zerolog()).ByCategory(ds, category, cols.Claims, cols.Premium)
	}, "loss-ratio", category)
	if err != nil {
		respondAnalysisError(w, h.logger, "loss ratio by category", err)
		return
	}
	respondData(w, contracts.CategoryTable{Category: category, Rows: rows})
}

// GetLossRatioInterval resamples the overall loss ratio
// GET /api/loss-ratio/interval?samples=2000&confidence=0.95&method=percentile&seed=42
func (h *AnalysisHandler) GetLossRatioInterval(w http.ResponseWriter, r *http.Request) {
	cfg := h.svc.Profile().Bootstrap.Config
	q := r.URL.Query()
	if v := q.Get("samples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "samples must be an integer")
			return
		}
		cfg.Samples = n
	}
	if v := q.Get("confidence"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "confidence must be a number")
			return
		}
		cfg.Confidence = c
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "seed must be an integer")
			return
		}
		cfg.Seed = seed
	}
	if v := q.Get("method"); v != "" {
		cfg.Method = bootstrap.Method(v)
	}

	resampler, err := bootstrap.NewResampler(cfg, h.logger.Zerolog())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	res, err := resampler.LossRatio(r.Context(), ds, h.columns())
	if err != nil {
		respondAnalysisError(w, h.logger, "loss ratio interval", err)
		return
	}
	respondData(w, res)
}

// GetMarginANOVA runs the margin ANOVA for one category
// GET /api/anova/margin/{category}
func (h *AnalysisHandler) GetMarginANOVA(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	var res contracts.ANOVAResult
	_, err := h.svc.Cached(r.Context(), &res, func() (interface{}, error) {
		return significance.NewTester(h.columns(), h.logger.Zerolog()).MarginANOVA(ds, category)
	}, "margin-anova", category)
	if err != nil {
		respondAnalysisError(w, h.logger, "margin anova", err)
		return
	}
	respondData(w, res)
}

// GetANOVA runs a one-way ANOVA of value across category
// GET /api/anova/{category}/{value}?where=HasClaim&equals=true
func (h *AnalysisHandler) GetANOVA(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	var cond *significance.Condition
	if where := r.URL.Query().Get("where"); where != "" {
		cond = &significance.Condition{Column: where, Value: r.URL.Query().Get("equals")}
	}

	res, err := significance.NewTester(h.columns(), h.logger.Zerolog()).ANOVA(ds, vars["category"], vars["value"], cond)
	if err != nil {
		respondAnalysisError(w, h.logger, "anova", err)
		return
	}
	respondData(w, res)
}

// GetChiSquared tests category against the claim outcome
// GET /api/chi2/{category}?outcome=HasClaim
func (h *AnalysisHandler) GetChiSquared(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	outcome := h.svc.Profile().OutcomeColumn()
	if q := r.URL.Query().Get("outcome"); q != "" {
		outcome = q
	}

	var res contracts.ChiSquaredResult
	_, err := h.svc.Cached(r.Context(), &res, func() (interface{}, error) {
		return significance.NewTester(h.columns(), h.logger.Zerolog()).ChiSquared(ds, category, outcome)
	}, "chi2", category, outcome)
	if err != nil {
		respondAnalysisError(w, h.logger, "chi-squared", err)
		return
	}
	respondData(w, res)
}

// GetMonthly returns the monthly claim statistics
// GET /api/trends/monthly
func (h *AnalysisHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	var stats []contracts.MonthlyClaimStats
	_, err := h.svc.Cached(r.Context(), &stats, func() (interface{}, error) {
		return trends.NewAnalyzer(h.logger.Zerolog()).Monthly(ds, h.columns())
	}, "monthly")
	if err != nil {
		respondAnalysisError(w, h.logger, "monthly trends", err)
		return
	}
	respondData(w, stats)
}

// GetMissing returns the missing value percentages of the profile's columns
// GET /api/quality/missing
func (h *AnalysisHandler) GetMissing(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	q := h.svc.Profile().Quality
	summary, err := quality.NewInspector(h.logger.Zerolog()).MissingSummary(ds, q.Categorical, q.Numerical, h.columns().Date)
	if err != nil {
		respondAnalysisError(w, h.logger, "missing value summary", err)
		return
	}
	respondData(w, summary)
}

// GetSeverity returns the top and bottom make/model pairs by average claim
// GET /api/severity?top=10
func (h *AnalysisHandler) GetSeverity(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	topN := h.svc.Profile().Severity.TopN
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		n, err := strconv.Atoi(topStr)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		topN = n
	}

	ranking, err := severity.NewRanker(h.logger.Zerolog()).ByMakeModel(ds, h.columns(), topN)
	if err != nil {
		respondAnalysisError(w, h.logger, "severity ranking", err)
		return
	}
	respondData(w, ranking)
}

// splitList parses a comma separated query value
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
