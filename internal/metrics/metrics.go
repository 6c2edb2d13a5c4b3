// Package metrics provides Prometheus metrics for the back office API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests can create isolated instances.
// All Record methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	MatchImports    *prometheus.CounterVec
	MarketsCreated  *prometheus.CounterVec
	Settlements     *prometheus.CounterVec
	OddUpdates      prometheus.Counter
	OddsFeedFetches *prometheus.CounterVec
	GuardRejections *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		MatchImports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betx_match_imports_total",
				Help: "Match import attempts by result",
			},
			[]string{"source", "result"},
		),
		MarketsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betx_markets_created_total",
				Help: "Markets added to matches",
			},
			[]string{"type"},
		),
		Settlements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betx_market_settlements_total",
				Help: "Market settlements by outcome",
			},
			[]string{"outcome"},
		),
		OddUpdates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "betx_odd_updates_total",
				Help: "Selection odd updates",
			},
		),
		OddsFeedFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betx_odds_feed_fetches_total",
				Help: "External odds feed lookups by outcome",
			},
			[]string{"outcome"},
		),
		GuardRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betx_guard_rejections_total",
				Help: "Requests rejected by the role guard",
			},
			[]string{"reason"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "betx_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method", "route", "status"},
		),
	}

	m.registry.MustRegister(
		m.MatchImports,
		m.MarketsCreated,
		m.Settlements,
		m.OddUpdates,
		m.OddsFeedFetches,
		m.GuardRejections,
		m.RequestDuration,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordImport(source, result string) {
	if m == nil {
		return
	}
	m.MatchImports.WithLabelValues(source, result).Inc()
}

func (m *Metrics) RecordMarketCreated(marketType string) {
	if m == nil {
		return
	}
	m.MarketsCreated.WithLabelValues(marketType).Inc()
}

func (m *Metrics) RecordSettlement(outcome string) {
	if m == nil {
		return
	}
	m.Settlements.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordOddUpdate() {
	if m == nil {
		return
	}
	m.OddUpdates.Inc()
}

func (m *Metrics) RecordOddsFeed(outcome string) {
	if m == nil {
		return
	}
	m.OddsFeedFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordGuardRejection(reason string) {
	if m == nil {
		return
	}
	m.GuardRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
