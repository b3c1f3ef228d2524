package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry      *prometheus.Registry
	syncRuns      *prometheus.CounterVec // total reconciliation cycles
	syncDuration  prometheus.Histogram   // time per cycle
	ipLookups     *prometheus.CounterVec // public ip lookups
	apiRequests   *prometheus.CounterVec // porkbun api requests
	recordUpdates *prometheus.CounterVec // a record edits applied
	targets       prometheus.Gauge       // configured target count
}

// Public interface for metrics operations
func (m *Metrics) IncSyncRun(success bool) {
	m.syncRuns.WithLabelValues(boolToResult(success)).Inc()
}

func (m *Metrics) SetSyncDuration(duration time.Duration) {
	m.syncDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncIPLookup(success bool) {
	m.ipLookups.WithLabelValues(boolToResult(success)).Inc()
}

func (m *Metrics) IncAPIRequest(operation string, success bool) {
	if !isValidOperation(operation) {
		return
	}
	m.apiRequests.WithLabelValues(operation, boolToResult(success)).Inc()
}

func (m *Metrics) IncRecordUpdate(host string, success bool) {
	if host == "" {
		return
	}
	m.recordUpdates.WithLabelValues(host, boolToResult(success)).Inc()
}

func (m *Metrics) SetTargets(count int) {
	m.targets.Set(float64(count))
}

func boolToResult(b bool) string {
	if b {
		return "success"
	}
	return "failure"
}

func isValidOperation(op string) bool {
	switch op {
	case "retrieve", "edit":
		return true
	}
	return false
}

func New(register bool) *Metrics {
	registry := prometheus.NewRegistry()
	namespace := "porkbun_ddns"

	m := &Metrics{
		registry: registry,

		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Total number of reconciliation cycles",
		}, []string{"status"}),

		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of reconciliation cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		ipLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ip_lookups_total",
			Help:      "Total public IP lookups",
		}, []string{"status"}),

		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total Porkbun API requests",
		}, []string{"operation", "status"}),

		recordUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_updates_total",
			Help:      "Total A record edits issued",
		}, []string{"host", "status"}),

		targets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "targets_configured",
			Help:      "Number of configured sync targets",
		}),
	}

	if register {
		registry.MustRegister(
			m.syncRuns,
			m.syncDuration,
			m.ipLookups,
			m.apiRequests,
			m.recordUpdates,
			m.targets,
		)
	}
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
