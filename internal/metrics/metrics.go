// Package metrics provides the centralized Prometheus metrics registry for the pick service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smart_picks"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Total number of analysis cycles by market and outcome",
	}, []string{"market", "outcome"})
	FixturesScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixtures_scored_total",
		Help:      "Total number of fixtures scored",
	}, []string{"market"})
	PicksSelectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "picks_selected_total",
		Help:      "Total number of fixtures that passed the confidence threshold",
	}, []string{"market"})
	ProviderErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_errors_total",
		Help:      "Total number of data provider errors by source and code",
	}, []string{"source", "code"})
	FallbackActivationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallback_activations_total",
		Help:      "Total number of cycles that used simulated fixtures",
	}, []string{"market"})
)

// Gauge metrics
var (
	LatestPicks = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "latest_picks",
		Help:      "Number of picks produced by the most recent cycle",
	}, []string{"market"})
	TeamsWithoutData = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "teams_without_data",
		Help:      "Teams with an empty match history in the most recent cycle",
	}, []string{"market"})
	RateCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rate_cache_hit_ratio",
		Help:      "Hit ratio of the team rate cache",
	})
	WebSocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Number of connected pick stream clients",
	})
)

// Histogram metrics
var (
	CycleDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of analysis cycles in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"market"})
	PickConfidence = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pick_confidence",
		Help:      "Probability of selected picks",
		Buckets:   []float64{0.5, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1.0},
	}, []string{"market"})
	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Latency of data provider requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		registry.MustRegister(CyclesTotal)
		registry.MustRegister(FixturesScoredTotal)
		registry.MustRegister(PicksSelectedTotal)
		registry.MustRegister(ProviderErrorsTotal)
		registry.MustRegister(FallbackActivationsTotal)

		registry.MustRegister(LatestPicks)
		registry.MustRegister(TeamsWithoutData)
		registry.MustRegister(RateCacheHitRatio)
		registry.MustRegister(WebSocketClients)

		registry.MustRegister(CycleDuration)
		registry.MustRegister(PickConfidence)
		registry.MustRegister(ProviderRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordCycle records a finished analysis cycle.
func RecordCycle(market, outcome string, durationSeconds float64) {
	CyclesTotal.WithLabelValues(market, outcome).Inc()
	CycleDuration.WithLabelValues(market).Observe(durationSeconds)
}

// RecordFixturesScored adds n scored fixtures for market.
func RecordFixturesScored(market string, n int) {
	FixturesScoredTotal.WithLabelValues(market).Add(float64(n))
}

// RecordPick records one selected pick and its probability.
func RecordPick(market string, probability float64) {
	PicksSelectedTotal.WithLabelValues(market).Inc()
	PickConfidence.WithLabelValues(market).Observe(probability)
}

// UpdateLatestPicks sets the pick count of the latest cycle.
func UpdateLatestPicks(market string, count int) {
	LatestPicks.WithLabelValues(market).Set(float64(count))
}

// UpdateTeamsWithoutData sets the number of teams lacking history.
func UpdateTeamsWithoutData(market string, count int) {
	TeamsWithoutData.WithLabelValues(market).Set(float64(count))
}

// RecordProviderError records a failed provider call.
func RecordProviderError(source, code string) {
	ProviderErrorsTotal.WithLabelValues(source, code).Inc()
}

// RecordProviderRequest records provider latency.
func RecordProviderRequest(source string, durationSeconds float64) {
	ProviderRequestDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordFallback records a cycle that switched to simulated data.
func RecordFallback(market string) {
	FallbackActivationsTotal.WithLabelValues(market).Inc()
}

// UpdateRateCacheHitRatio sets the cache hit ratio gauge.
func UpdateRateCacheHitRatio(ratio float64) {
	RateCacheHitRatio.Set(ratio)
}

// UpdateWebSocketClients sets the connected client gauge.
func UpdateWebSocketClients(count int) {
	WebSocketClients.Set(float64(count))
}
