package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"fare-estimator/internal/config"
	"fare-estimator/internal/logger"
	"fare-estimator/internal/redis"
)

// Scope задаёт группу эндпоинтов с общим лимитом.
type Scope string

const (
	ScopeCatalog  Scope = "catalog"
	ScopeEstimate Scope = "estimate"
)

// Decision содержит результат проверки одного запроса.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// Usage описывает текущее состояние окна клиента.
type Usage struct {
	Scope     Scope
	Limit     int64
	Used      int64
	Remaining int64
	ResetAt   *time.Time
}

type counterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// RejectionRecorder учитывает отклонённые запросы.
type RejectionRecorder interface {
	RateLimited(scope string)
}

// RateLimiter ограничивает число запросов клиента в фиксированном окне
// отдельно для каждого Scope. Счётчики живут в Redis.
type RateLimiter struct {
	store   counterStore
	log     *logger.Logger
	metrics RejectionRecorder
	enabled bool
	limits  map[Scope]int64
	window  time.Duration
	prefix  string
}

// NewRateLimiter создаёт rate limiter. Без Redis или при выключенной
// настройке возвращает выключенный limiter, который пропускает всё.
func NewRateLimiter(redisClient *redis.Client, m RejectionRecorder, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimiter {
	if redisClient == nil || cfg == nil || !cfg.Enabled || cfg.Requests <= 0 || cfg.WindowSeconds <= 0 {
		return &RateLimiter{enabled: false}
	}

	estimateLimit := cfg.EstimateRequests
	if estimateLimit <= 0 {
		estimateLimit = cfg.Requests
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = redis.KeyPrefixRateLimit
	}

	return &RateLimiter{
		store:   redisClient,
		log:     log,
		metrics: m,
		enabled: true,
		limits: map[Scope]int64{
			ScopeCatalog:  int64(cfg.Requests),
			ScopeEstimate: int64(estimateLimit),
		},
		window: time.Duration(cfg.WindowSeconds) * time.Second,
		prefix: prefix,
	}
}

// Allow учитывает запрос клиента и решает, пропускать ли его.
func (r *RateLimiter) Allow(ctx context.Context, scope Scope, client string) (Decision, error) {
	limit := r.Limit(scope)
	if !r.enabled {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}

	key := r.key(scope, client)
	count, err := r.store.Incr(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limiter incr failed: %w", err)
	}

	// Окно открывается первым запросом
	if count == 1 {
		if err := r.store.Expire(ctx, key, r.window); err != nil {
			r.log.WithError(err).WithField("key", key).Warn("Failed to set rate limit ttl")
		}
	}

	ttl, err := r.store.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		if err != nil {
			r.log.WithError(err).WithField("key", key).Warn("Failed to get rate limit ttl")
		}
		ttl = r.window
	}

	d := Decision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   time.Now().Add(ttl),
	}
	if !d.Allowed && r.metrics != nil {
		r.metrics.RateLimited(string(scope))
	}
	return d, nil
}

// Usage возвращает состояние окна без учёта нового запроса.
func (r *RateLimiter) Usage(ctx context.Context, scope Scope, client string) (Usage, error) {
	u := Usage{Scope: scope, Limit: r.Limit(scope)}
	u.Remaining = u.Limit
	if !r.enabled {
		return u, nil
	}

	key := r.key(scope, client)
	count, err := r.store.GetInt(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return u, nil
		}
		return Usage{}, fmt.Errorf("rate limiter usage failed: %w", err)
	}

	if ttl, err := r.store.TTL(ctx, key); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("Failed to get rate limit ttl")
	} else if ttl > 0 {
		reset := time.Now().Add(ttl)
		u.ResetAt = &reset
	}

	u.Used = count
	u.Remaining = max(u.Limit-count, 0)
	return u, nil
}

// Limit возвращает лимит окна для scope.
func (r *RateLimiter) Limit(scope Scope) int64 {
	return r.limits[scope]
}

// Window возвращает длину окна.
func (r *RateLimiter) Window() time.Duration {
	return r.window
}

// Enabled сообщает, включён ли rate limiting.
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}

func (r *RateLimiter) key(scope Scope, client string) string {
	return redis.GenerateKey(r.prefix, string(scope), client)
}

// ExtractClientIP получает IP клиента из заголовков прокси или RemoteAddr.
func ExtractClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
