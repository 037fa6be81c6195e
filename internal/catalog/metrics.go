package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for catalog requests.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	BooksReturned   prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfinder_catalog_requests_total",
			Help: "Total catalog search requests by outcome.",
		},
		[]string{"outcome"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookfinder_catalog_request_duration_seconds",
			Help:    "Latency of catalog search requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	books := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookfinder_catalog_books_returned_total",
			Help: "Total number of books returned by catalog searches.",
		},
	)

	registry.MustRegister(requests, duration, books)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: duration,
		BooksReturned:   books,
	}
}

// observe records one finished request.
func (m *Metrics) observe(d time.Duration, books int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = ErrorKind(err)
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.RequestDuration.Observe(d.Seconds())
	m.BooksReturned.Add(float64(books))
}
