package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fare-estimator/internal/apperror"
	"fare-estimator/internal/catalog"
	"fare-estimator/internal/config"
	"fare-estimator/internal/database"
	"fare-estimator/internal/fare"
	"fare-estimator/internal/handlers"
	"fare-estimator/internal/kafka"
	"fare-estimator/internal/logger"
	"fare-estimator/internal/metrics"
	"fare-estimator/internal/models"
	"fare-estimator/internal/redis"
	"fare-estimator/internal/services"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

const catalogLoadTimeout = 10 * time.Second

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	catalog  *catalog.Catalog
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	metrics  *metrics.Metrics
	mux      *http.ServeMux
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.WithFields(map[string]interface{}{
		"catalog_version": app.catalog.Version(),
		"categories":      app.catalog.Len(),
	}).Info("Starting fare estimator server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	app.close()
	app.log.Info("Server exited")
}

// close освобождает внешние подключения. Все Close безопасны для nil.
func (a *application) close() {
	_ = a.producer.Close()
	_ = a.redis.Close()
	_ = a.db.Close()
}

// buildApplication создает все зависимости (подменяемые в тестах).
// Каталог загружается до старта сервера: ошибка в данных останавливает запуск.
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)
	app := &application{cfg: cfg, log: log}

	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		db, err := dbConnect(&cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.db = db
	}

	ctx, cancel := context.WithTimeout(context.Background(), catalogLoadTimeout)
	defer cancel()
	var querier catalog.Querier
	if app.db != nil {
		querier = app.db
	}
	cat, err := loadCatalog(ctx, &cfg.Catalog, querier)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("catalog load: %w", err)
	}
	app.catalog = cat

	resolver, err := fare.NewResolver(farePolicy(&cfg.Catalog))
	if err != nil {
		app.close()
		return nil, fmt.Errorf("fare policy: %w", err)
	}

	if cfg.Redis.Enabled {
		redisClient, err := redisConnect(&cfg.Redis, log)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		app.redis = redisClient
	}

	if cfg.Kafka.Enabled {
		producer, err := newKafkaProducer(&cfg.Kafka, log)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.producer = producer
	}

	if cfg.Metrics.Enabled {
		app.metrics = metrics.New()
	}

	// Выключенные компоненты передаются как nil-интерфейсы, а не nil-указатели
	var publisher services.QuotePublisher
	var dbHealth handlers.DBHealth
	var redisHealth handlers.RedisHealth
	var kafkaBrokers []string
	if app.producer != nil {
		publisher = app.producer
		kafkaBrokers = cfg.Kafka.Brokers
	}
	if app.db != nil {
		dbHealth = app.db
	}
	if app.redis != nil {
		redisHealth = app.redis
	}

	fareService := services.NewFareService(cat, resolver, publisher, app.metrics, log)
	rateLimiter := services.NewRateLimiter(app.redis, app.metrics, log, &cfg.RateLimit)

	fareHandler := handlers.NewFareHandler(fareService, log)
	healthHandler := handlers.NewHealthHandler(cat, dbHealth, redisHealth, kafkaBrokers, kafkaHealthCheck)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, cfg.RateLimit.WindowSeconds)

	announceCatalog(app)

	app.mux = setupRoutes(fareHandler, healthHandler, rateLimitHandler, rateLimiter, app.metrics, &cfg.Metrics, log)
	app.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return app, nil
}

// loadCatalog загружает каталог тарифов из источника, указанного в конфигурации
func loadCatalog(ctx context.Context, cfg *config.CatalogConfig, db catalog.Querier) (*catalog.Catalog, error) {
	labels := catalogLabels(cfg)

	switch cfg.Source {
	case "", config.CatalogSourceEmbedded:
		return catalog.Embedded(labels)
	case config.CatalogSourceFile:
		if cfg.Path == "" {
			return nil, apperror.Configuration("CATALOG_PATH is required for file catalog source", nil)
		}
		return catalog.LoadFile(cfg.Path, labels)
	case config.CatalogSourcePostgres:
		if db == nil {
			return nil, apperror.Configuration("database is required for postgres catalog source", nil)
		}
		return catalog.LoadPostgres(ctx, db, labels)
	default:
		return nil, apperror.Configuration(fmt.Sprintf("unknown catalog source %q", cfg.Source), nil)
	}
}

func catalogLabels(cfg *config.CatalogConfig) catalog.Labels {
	labels := catalog.DefaultLabels()
	if cfg.CruiseShipPrefix != "" {
		labels.CruiseShipPrefix = cfg.CruiseShipPrefix
	}
	if cfg.KingstownTourName != "" {
		labels.KingstownTourName = cfg.KingstownTourName
	}
	if cfg.PerPassengerSuffix != "" {
		labels.PerPassengerSuffix = cfg.PerPassengerSuffix
	}
	if cfg.SmallGroupSuffix != "" {
		labels.SmallGroupSuffix = cfg.SmallGroupSuffix
	}
	return labels
}

func farePolicy(cfg *config.CatalogConfig) fare.Policy {
	policy := fare.DefaultPolicy()
	if cfg.ECToUSRate != 0 {
		policy.ECToUSRate = cfg.ECToUSRate
	}
	if cfg.FlatTier != "" {
		policy.FlatTier = cfg.FlatTier
	}
	if cfg.SmallGroupMax != 0 {
		policy.SmallGroupMax = cfg.SmallGroupMax
	}
	return policy
}

// announceCatalog публикует размер каталога в метрики и событие catalog.loaded
func announceCatalog(app *application) {
	bus := len(app.catalog.ListCategories(catalog.ModeBus))
	taxi := len(app.catalog.ListCategories(catalog.ModeTaxi))
	app.metrics.SetCatalogSize(bus, taxi)

	if app.producer == nil {
		return
	}
	err := app.producer.PublishCatalogLoaded(models.CatalogLoadedData{
		Source:     app.cfg.Catalog.Source,
		Version:    app.catalog.Version(),
		Categories: app.catalog.Len(),
		BusCount:   bus,
		TaxiCount:  taxi,
	})
	if err != nil {
		app.log.WithError(err).Warn("Failed to publish catalog loaded event")
		app.metrics.PublishFailed()
	}
}

// setupRoutes настраивает маршруты HTTP сервера
func setupRoutes(fareHandler *handlers.FareHandler, healthHandler *handlers.HealthHandler, rateLimitHandler *handlers.RateLimitHandler, rateLimiter handlers.MiddlewareLimiter, m *metrics.Metrics, metricsCfg *config.MetricsConfig, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	applyAPI := func(route string, scope services.Scope, h http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(m.Instrument(route, handlers.RateLimitMiddleware(rateLimiter, scope, log, h)))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(healthHandler.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(healthHandler.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(healthHandler.Liveness))

	// Catalog endpoints
	mux.HandleFunc("/api/categories", applyAPI("/api/categories", services.ScopeCatalog, fareHandler.ListCategories))
	mux.HandleFunc("/api/categories/", applyAPI("/api/categories/{name}", services.ScopeCatalog, fareHandler.GetCategory))

	// Fare endpoints
	mux.HandleFunc("/api/fares/estimate", applyAPI("/api/fares/estimate", services.ScopeEstimate, fareHandler.Estimate))

	// Rate limit status не расходует лимит
	mux.HandleFunc("/api/rate-limit/status", corsMiddleware(m.Instrument("/api/rate-limit/status", rateLimitHandler.Status)))

	if m != nil && metricsCfg != nil && metricsCfg.Enabled {
		path := metricsCfg.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, m.Handler())
	}

	mux.HandleFunc("/", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "Route not found")
	}))

	return mux
}

// corsMiddleware и другие helper функции
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	type errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
