package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/claimlens/internal/api/handlers"
	"github.com/wonny/claimlens/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(analysis *handlers.AnalysisHandler, reports *handlers.ReportHandler, limiter Limiter, proxies TrustedProxies, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Loss ratio
	api.HandleFunc("/loss-ratio", analysis.GetLossRatio).Methods("GET")
	api.HandleFunc("/loss-ratio/interval", analysis.GetLossRatioInterval).Methods("GET")
	api.HandleFunc("/loss-ratio/{category}", analysis.GetLossRatioByCategory).Methods("GET")

	// Significance (margin 경로를 먼저 등록해야 {category}/{value}에 가려지지 않음)
	api.HandleFunc("/anova/margin/{category}", analysis.GetMarginANOVA).Methods("GET")
	api.HandleFunc("/anova/{category}/{value}", analysis.GetANOVA).Methods("GET")
	api.HandleFunc("/chi2/{category}", analysis.GetChiSquared).Methods("GET")

	// Trends, quality, severity
	api.HandleFunc("/trends/monthly", analysis.GetMonthly).Methods("GET")
	api.HandleFunc("/quality/missing", analysis.GetMissing).Methods("GET")
	api.HandleFunc("/severity", analysis.GetSeverity).Methods("GET")

	// Report
	api.HandleFunc("/report", reports.GetReport).Methods("GET")
	api.HandleFunc("/report/refresh", reports.Refresh).Methods("POST")

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if limiter != nil {
		api.Use(rateLimitMiddleware(limiter, proxies, log))
	}

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "claimlens-api",
	})
}

type ctxKey int

const requestIDKey ctxKey = iota

// requestIDMiddleware propagates X-Request-ID, generating a UUID when absent
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the request id stored by the router middleware
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"request_id": RequestID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error":      err,
						"path":       r.URL.Path,
						"request_id": RequestID(r.Context()),
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware rejects requests over the per-client limit with 429
func rateLimitMiddleware(limiter Limiter, proxies TrustedProxies, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), proxies.ClientKey(r))
			if err != nil {
				// 리미터 장애 시 요청은 통과
				log.WithError(err).Warn("Rate limiter failed")
			} else if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
