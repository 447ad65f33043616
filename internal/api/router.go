package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/aegis-advisor/backend/internal/api/handlers"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
	"github.com/wonny/aegis-advisor/backend/pkg/redis"
)

// RouterDeps groups what the router wires into handlers
type RouterDeps struct {
	Recommendations *handlers.RecommendationHandler
	Signals         *handlers.SignalHandler
	Stream          *handlers.StreamHandler // optional
	Limiter         *redis.RateLimiter
	Health          HealthFunc
	Logger          *logger.Logger
}

// HeaderRequestID carries the request id in and out
const HeaderRequestID = "X-Request-ID"

// HealthFunc reports dependency status for /health
type HealthFunc func(r *http.Request) map[string]interface{}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()
	log := deps.Logger

	// Health check
	r.HandleFunc("/health", healthCheckHandler(deps.Health)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Scoring endpoints
	api.HandleFunc("/recommendations", deps.Recommendations.Evaluate).Methods("POST")
	api.HandleFunc("/recommendations/batch", deps.Recommendations.EvaluateBatch).Methods("POST")

	// Signal log endpoints (scope required)
	signals := api.PathPrefix("/signals").Subrouter()
	signals.Use(scopeMiddleware())
	signals.Handle("", rateLimitMiddleware(deps.Limiter, log)(http.HandlerFunc(deps.Signals.LogSignal))).Methods("POST")
	signals.HandleFunc("", deps.Signals.ListSignals).Methods("GET")
	signals.HandleFunc("", deps.Signals.ClearSignals).Methods("DELETE")
	signals.HandleFunc("/performance", deps.Signals.GetPerformance).Methods("GET")
	if deps.Stream != nil {
		signals.HandleFunc("/stream", deps.Stream.Stream).Methods("GET")
	}
	signals.HandleFunc("/{id}", deps.Signals.DeleteSignal).Methods("DELETE")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(health HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "aegis-advisor-api",
		}
		if health != nil {
			for k, v := range health(r) {
				body[k] = v
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}
}

// scopeMiddleware rejects signal requests without a portfolio or user header
func scopeMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := handlers.ScopeFromRequest(r)
			if scope.IsZero() {
				writeError(w, http.StatusUnauthorized, "portfolio or user scope required")
				return
			}
			next.ServeHTTP(w, r.WithContext(handlers.WithScope(r.Context(), scope)))
		})
	}
}

// rateLimitMiddleware caps signal writes per scope. Limiter failures let the request through.
func rateLimitMiddleware(limiter *redis.RateLimiter, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg := redis.SignalWriteLimit(handlers.ScopeFrom(r.Context()).Key())
			allowed, remaining, err := limiter.Allow(r.Context(), cfg)
			if err != nil {
				log.WithError(err).Warn("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window/time.Second)))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware tags each request with an id, stores a request-scoped
// logger in the context and logs the outcome
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, requestID)

			reqLog := log.WithField("request_id", requestID)
			next.ServeHTTP(w, r.WithContext(logger.IntoContext(r.Context(), reqLog)))

			reqLog.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
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

					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
