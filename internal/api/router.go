package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/finlens/backend/internal/api/handlers"
	"github.com/wonny/finlens/backend/pkg/database"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// HealthChecker reports storage liveness for the health check
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// Handlers groups the endpoint handlers
type Handlers struct {
	Ratios    *handlers.RatioHandler
	Valuation *handlers.ValuationHandler
	Backtest  *handlers.BacktestHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, db HealthChecker, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Entity endpoints
	entities := api.PathPrefix("/entities/{id}").Subrouter()
	entities.HandleFunc("/ratios", h.Ratios.Derive).Methods("POST")
	entities.HandleFunc("/ratios", h.Ratios.Get).Methods("GET")
	entities.HandleFunc("/valuation", h.Valuation.Get).Methods("GET")
	entities.HandleFunc("/backtest", h.Backtest.Get).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{
			"status":  "ok",
			"service": "finlens-api",
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			dbStatus, err := db.HealthCheck(ctx)
			if err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
			body["database"] = dbStatus
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

// statusRecorder captures the status code written by a handler
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

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
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
						"error": err,
						"path":  r.URL.Path,
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
