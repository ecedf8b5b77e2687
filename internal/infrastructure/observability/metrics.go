package observability

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Счётчик вызовов методов репозитория
	RepositoryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_calls_total",
			Help: "Total number of repository method calls",
		},
		[]string{"method", "status"},
	)

	// Гистограмма времени выполнения запросов
	RepositoryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_duration_seconds",
			Help:    "Duration of repository method calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	PurchaseEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_events_total",
			Help: "Purchase lifecycle events consumed from Kafka",
		},
		[]string{"type"},
	)

	EventDeliveryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_event_delivery_failures_total",
			Help: "Purchase events the Kafka writer failed to deliver",
		},
		[]string{"topic"},
	)

	PurchaseAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_amount_total",
			Help: "Sum of confirmed purchase amounts",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(RepositoryCalls, RepositoryDuration, PurchaseEvents, EventDeliveryFailures, PurchaseAmount)
}

// ServeMetrics exposes /metrics on its own listener.
func ServeMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return srv
}
