package handlers

import (
	"net/http"
	"strconv"
	"time"

	"fare-estimator/internal/logger"
	"fare-estimator/internal/services"
)

// RateLimitHandler отдаёт текущее состояние лимитов клиента.
type RateLimitHandler struct {
	limiter       RateLimitStatusProvider
	log           *logger.Logger
	windowSeconds int
}

// NewRateLimitHandler создает новый RateLimitHandler.
func NewRateLimitHandler(limiter RateLimitStatusProvider, log *logger.Logger, windowSeconds int) *RateLimitHandler {
	return &RateLimitHandler{
		limiter:       limiter,
		log:           log,
		windowSeconds: windowSeconds,
	}
}

type scopeStatus struct {
	Limit     int64  `json:"limit"`
	Used      int64  `json:"used"`
	Remaining int64  `json:"remaining"`
	ResetAt   string `json:"reset_at,omitempty"`
}

// Status возвращает текущие значения лимитов для клиента по каждому scope.
func (h *RateLimitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.limiter == nil || !h.limiter.Enabled() {
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"enabled": false,
		})
		return
	}

	key := services.ExtractClientIP(r)
	scopes := make(map[string]scopeStatus)
	for _, scope := range []services.Scope{services.ScopeCatalog, services.ScopeEstimate} {
		usage, err := h.limiter.Usage(r.Context(), scope, key)
		if err != nil {
			h.log.WithError(err).WithField("scope", scope).Error("Failed to fetch rate limit usage")
			writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch rate limit usage")
			return
		}

		status := scopeStatus{Limit: usage.Limit, Used: usage.Used, Remaining: usage.Remaining}
		if usage.ResetAt != nil {
			status.ResetAt = usage.ResetAt.Format(time.RFC3339)
		}
		scopes[string(scope)] = status
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"enabled":        true,
		"window_seconds": h.windowSeconds,
		"key":            key,
		"scopes":         scopes,
	})
}

// RateLimitMiddleware применяет rate limiting к хендлеру в рамках scope.
func RateLimitMiddleware(limiter MiddlewareLimiter, scope services.Scope, log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil || !limiter.Enabled() {
			next(w, r)
			return
		}

		key := services.ExtractClientIP(r)
		decision, err := limiter.Allow(r.Context(), scope, key)
		if err != nil {
			log.WithError(err).WithField("scope", scope).Error("Rate limiter failed")
			writeErrorResponse(w, http.StatusInternalServerError, "Rate limiter error")
			return
		}

		// Заголовки совместимые с common rate limit policy
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		if !decision.ResetAt.IsZero() {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		}

		if !decision.Allowed {
			if retry := time.Until(decision.ResetAt); retry > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			}
			writeErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next(w, r)
	}
}
