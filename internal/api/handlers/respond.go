package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func respondData(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// respondAnalysisError maps analysis errors to HTTP status codes
// 잘못된 컬럼 지정은 400, 나머지는 500
func respondAnalysisError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	if errors.Is(err, contracts.ErrColumnNotFound) || errors.Is(err, contracts.ErrColumnNotNumeric) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.WithError(err).WithField("op", op).Error("Analysis failed")
	respondError(w, http.StatusInternalServerError, "Failed to run "+op)
}
