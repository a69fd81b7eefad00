package handlers

import (
	"context"

	"fare-estimator/internal/models"
	"fare-estimator/internal/services"
)

// ----- Fares -----

type FareService interface {
	ListCategories(ctx context.Context, mode string) (*models.CategoryList, error)
	GetCategory(ctx context.Context, name string) (*models.CategoryDetail, error)
	Estimate(ctx context.Context, req *models.EstimateRequest) (*models.EstimateResponse, error)
}

// ----- Rate limiting -----

// MiddlewareLimiter описывает контракт для rate limiter.
type MiddlewareLimiter interface {
	Allow(ctx context.Context, scope services.Scope, client string) (services.Decision, error)
	Enabled() bool
}

// RateLimitStatusProvider расширяет интерфейс для эндпоинта статуса.
type RateLimitStatusProvider interface {
	MiddlewareLimiter
	Usage(ctx context.Context, scope services.Scope, client string) (services.Usage, error)
}

// ----- Health -----

type CatalogStatus interface {
	Version() string
	Len() int
}

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
