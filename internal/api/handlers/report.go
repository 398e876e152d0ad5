package handlers

import (
	"net/http"

	"github.com/wonny/claimlens/internal/report"
	"github.com/wonny/claimlens/pkg/logger"
)

// ReportHandler serves the full report
type ReportHandler struct {
	svc    *report.Service
	logger *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *report.Service, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		svc:    svc,
		logger: log.WithComponent("api.report"),
	}
}

// GetReport returns the cached report, building it on first request
// GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, cached, err := h.svc.GetOrBuild(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build report")
		respondError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cached":  cached,
		"data":    rep,
	})
}

// Refresh reloads the dataset and rebuilds the report
// POST /api/report/refresh
func (h *ReportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Refresh(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to refresh report")
		respondError(w, http.StatusInternalServerError, "Failed to refresh report")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"rows":         rep.Rows,
		"errors":       len(rep.Errors),
		"profile_hash": h.svc.ProfileHash(),
		"cache_key":    h.svc.CacheKey(),
	}).Info("Report refreshed")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    rep,
	})
}
