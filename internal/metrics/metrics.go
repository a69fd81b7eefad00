package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fare_estimator"

// Metrics собирает метрики сервиса в собственный registry.
// Все методы безопасны для nil-получателя: без метрик сервис работает так же.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	estimates     *prometheus.CounterVec
	amounts       *prometheus.HistogramVec
	rateLimited   *prometheus.CounterVec
	catalogSize   *prometheus.GaugeVec
	publishErrors prometheus.Counter
}

// New создаёт набор метрик с Go и process коллекторами.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		estimates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "estimates_total",
				Help:      "Fare estimates by category shape and outcome",
			},
			[]string{"shape", "outcome"},
		),
		amounts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "estimate_amount",
				Help:      "Distribution of resolved fare amounts",
				Buckets:   []float64{5, 10, 25, 50, 100, 150, 250, 500, 1000},
			},
			[]string{"currency"},
		),
		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),
		catalogSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_categories",
				Help:      "Number of fare categories loaded, by mode",
			},
			[]string{"mode"},
		),
		publishErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_publish_errors_total",
				Help:      "Quote events that could not be published",
			},
		),
	}
}

// Registry возвращает registry для тестов и дополнительных коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEstimate учитывает один расчёт. Сумма попадает в гистограмму только
// для OutcomeFare.
func (m *Metrics) ObserveEstimate(shape, outcome, currency string, amount float64) {
	if m == nil {
		return
	}
	m.estimates.WithLabelValues(shape, outcome).Inc()
	if outcome == "fare" {
		m.amounts.WithLabelValues(currency).Observe(amount)
	}
}

// RateLimited учитывает отклонённый запрос.
func (m *Metrics) RateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(scope).Inc()
}

// SetCatalogSize фиксирует размер загруженного каталога.
func (m *Metrics) SetCatalogSize(bus, taxi int) {
	if m == nil {
		return
	}
	m.catalogSize.WithLabelValues("bus").Set(float64(bus))
	m.catalogSize.WithLabelValues("taxi").Set(float64(taxi))
}

// PublishFailed учитывает событие, которое не удалось отправить.
func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.publishErrors.Inc()
}

// Instrument оборачивает хендлер счётчиком запросов и гистограммой длительности.
// route передаётся шаблоном пути, а не самим путём.
func (m *Metrics) Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
