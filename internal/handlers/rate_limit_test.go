package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fare-estimator/internal/services"
)

type stubLimiter struct {
	allowSeq []bool
	idx      int
	limit    int64
	enabled  bool
	err      error

	scopes []services.Scope
}

func (s *stubLimiter) Allow(_ context.Context, scope services.Scope, _ string) (services.Decision, error) {
	s.scopes = append(s.scopes, scope)
	if s.err != nil {
		return services.Decision{}, s.err
	}
	if s.idx >= len(s.allowSeq) {
		return services.Decision{Limit: s.limit, ResetAt: time.Now()}, nil
	}
	val := s.allowSeq[s.idx]
	s.idx++
	return services.Decision{
		Allowed:   val,
		Limit:     s.limit,
		Remaining: max(s.limit-int64(s.idx), 0),
		ResetAt:   time.Now().Add(time.Minute),
	}, nil
}

func (s *stubLimiter) Enabled() bool {
	return s.enabled || len(s.allowSeq) > 0
}

func (s *stubLimiter) Usage(_ context.Context, scope services.Scope, _ string) (services.Usage, error) {
	reset := time.Now().Add(time.Minute)
	return services.Usage{Scope: scope, Limit: s.limit, Used: 1, Remaining: s.limit - 1, ResetAt: &reset}, nil
}

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	limiter := &stubLimiter{allowSeq: []bool{true, false}, limit: 1}

	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	wrapped := RateLimitMiddleware(limiter, services.ScopeEstimate, newTestLogger(), handler)
	req := httptest.NewRequest(http.MethodPost, "/api/fares/estimate", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	rr1 := httptest.NewRecorder()
	wrapped(rr1, req)
	if rr1.Code != http.StatusOK || calls != 1 {
		t.Fatalf("first request expected 200, calls=1; got %d, calls=%d", rr1.Code, calls)
	}
	if rr1.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("expected limit header, got %q", rr1.Header().Get("X-RateLimit-Limit"))
	}

	rr2 := httptest.NewRecorder()
	wrapped(rr2, req)
	if rr2.Code != http.StatusTooManyRequests || calls != 1 {
		t.Fatalf("second request expected 429, calls still 1; got %d, calls=%d", rr2.Code, calls)
	}
	if rr2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on 429")
	}
	for _, s := range limiter.scopes {
		if s != services.ScopeEstimate {
			t.Fatalf("expected estimate scope, got %s", s)
		}
	}
}

func TestRateLimitMiddleware_DisabledSkips(t *testing.T) {
	limiter := &stubLimiter{enabled: false}
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	wrapped := RateLimitMiddleware(limiter, services.ScopeCatalog, newTestLogger(), handler)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	wrapped(rr, req)

	if calls != 1 || rr.Code != http.StatusOK {
		t.Fatalf("expected middleware to skip limiter, code=%d calls=%d", rr.Code, calls)
	}
	if len(limiter.scopes) != 0 {
		t.Fatalf("disabled limiter must not be consulted")
	}
}

func TestRateLimitMiddleware_NilLimiter(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ })

	RateLimitMiddleware(nil, services.ScopeCatalog, newTestLogger(), handler)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	if calls != 1 {
		t.Fatalf("expected handler call with nil limiter")
	}
}

func TestRateLimitMiddleware_Error(t *testing.T) {
	limiter := &stubLimiter{allowSeq: []bool{true}, limit: 1, enabled: true, err: errors.New("fail")}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	RateLimitMiddleware(limiter, services.ScopeCatalog, newTestLogger(), handler)(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on limiter error, got %d", rr.Code)
	}
}

func TestRateLimitStatus_Disabled(t *testing.T) {
	handler := NewRateLimitHandler(nil, newTestLogger(), 60)
	req := httptest.NewRequest(http.MethodGet, "/api/rate-limit/status", nil)
	rr := httptest.NewRecorder()

	handler.Status(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() == "" {
		t.Fatalf("expected body, got empty")
	}
}

func TestRateLimitStatus_Scopes(t *testing.T) {
	handler := NewRateLimitHandler(&stubLimiter{limit: 5, enabled: true}, newTestLogger(), 60)
	req := httptest.NewRequest(http.MethodGet, "/api/rate-limit/status", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rr := httptest.NewRecorder()

	handler.Status(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Enabled bool                   `json:"enabled"`
		Key     string                 `json:"key"`
		Scopes  map[string]scopeStatus `json:"scopes"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Enabled || resp.Key != "10.0.0.1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	for _, scope := range []string{"catalog", "estimate"} {
		s, ok := resp.Scopes[scope]
		if !ok || s.Limit != 5 || s.Remaining != 4 || s.ResetAt == "" {
			t.Fatalf("unexpected %s scope: %+v", scope, s)
		}
	}
}

type errorStatusLimiter struct {
	MiddlewareLimiter
}

func (e *errorStatusLimiter) Usage(ctx context.Context, scope services.Scope, key string) (services.Usage, error) {
	return services.Usage{}, errors.New("usage error")
}

func TestRateLimitStatus_Error(t *testing.T) {
	limiter := &stubLimiter{allowSeq: []bool{true}, limit: 5, enabled: true}
	statusLimiter := &errorStatusLimiter{MiddlewareLimiter: limiter}
	handler := NewRateLimitHandler(statusLimiter, newTestLogger(), 60)

	req := httptest.NewRequest(http.MethodGet, "/api/rate-limit/status", nil)
	rr := httptest.NewRecorder()

	handler.Status(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestRateLimitStatus_MethodNotAllowed(t *testing.T) {
	handler := NewRateLimitHandler(&stubLimiter{enabled: true}, newTestLogger(), 60)
	req := httptest.NewRequest(http.MethodPost, "/api/rate-limit/status", nil)
	rr := httptest.NewRecorder()
	handler.Status(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
