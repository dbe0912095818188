package observability

import (
	"time"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	entriesCreated  *prometheus.CounterVec
	receiptsSaved   *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fcbff_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcbff_external_errors_total",
				Help: "Total errors from finance-backend calls.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcbff_cache_hits_total",
				Help: "Total reference-data cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcbff_cache_misses_total",
				Help: "Total reference-data cache misses.",
			},
			[]string{"cache"},
		),
		entriesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcbff_entries_total",
				Help: "Total ledger entries created, by entry type.",
			},
			[]string{"type"},
		),
		receiptsSaved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcbff_receipts_total",
				Help: "Total receipts submitted, by outcome.",
			},
			[]string{"status"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcbff_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrEntry increments the created-entries counter for an entry type.
func (m *Metrics) IncrEntry(entryType string) {
	m.entriesCreated.WithLabelValues(entryType).Inc()
}

// IncrReceipt increments the receipts counter ("saved" or "failed").
func (m *Metrics) IncrReceipt(status string) {
	m.receiptsSaved.WithLabelValues(status).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetUsageSnapshot returns a snapshot of the usage counters suitable for the
// GET /v1/metrics/summary endpoint.
func (m *Metrics) GetUsageSnapshot() *domain.UsageMetrics {
	// Prometheus counters expose cumulative values.
	income := getCounterValue(m.entriesCreated, string(domain.EntryIncome))
	expense := getCounterValue(m.entriesCreated, string(domain.EntryExpense))
	transfer := getCounterValue(m.entriesCreated, string(domain.EntryTransfer))
	receipts := getCounterValue(m.receiptsSaved, "saved")

	externalErrors := getCounterValue(m.externalErrors, "fincore")
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "reference")
	cacheMisses := getCounterValue(m.cacheMisses, "reference")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.UsageMetrics{
		EntriesIncome:    int64(income),
		EntriesExpense:   int64(expense),
		EntriesTransfer:  int64(transfer),
		ReceiptsSaved:    int64(receipts),
		ExternalErrors:   int64(externalErrors),
		CacheHitRate:     cacheHitRate,
		RequestErrorRate: errorRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
