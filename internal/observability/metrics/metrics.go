package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "tradefinance_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	locTransitions *prometheus.CounterVec

	priceTicks     *prometheus.CounterVec
	priceBroadcast *prometheus.CounterVec

	streamSessions prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	exportTotal *prometheus.CounterVec
)

// Init registers observability metrics.
func Init() {
	registerOnce.Do(func() {
		locTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "loc_transitions_total",
				Help: "Total letter-of-credit transition attempts by transition and result",
			},
			[]string{"transition", "result"},
		)

		priceTicks = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_ticks_total",
				Help: "Total price observations generated by result",
			},
			[]string{"result"},
		)
		priceBroadcast = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_broadcast_total",
				Help: "Total price broadcast deliveries by outcome",
			},
			[]string{"outcome"},
		)

		streamSessions = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "price_stream_sessions",
				Help: "Currently open price stream sessions",
			},
		)

		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status",
			},
			[]string{"method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total register export operations by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			locTransitions,
			priceTicks,
			priceBroadcast,
			streamSessions,
			httpRequests,
			httpLatency,
			exportTotal,
		)
	})
}

// ObserveTransition records a LoC transition attempt.
func ObserveTransition(transition, result string) {
	if locTransitions == nil {
		return
	}
	locTransitions.WithLabelValues(transition, result).Inc()
}

// ObservePriceTick records one generated observation.
func ObservePriceTick(result string) {
	if priceTicks == nil {
		return
	}
	priceTicks.WithLabelValues(result).Inc()
}

// ObserveBroadcast records a broadcast delivery outcome.
func ObserveBroadcast(outcome string) {
	if priceBroadcast == nil {
		return
	}
	priceBroadcast.WithLabelValues(outcome).Inc()
}

// StreamSessionStarted increments the open session gauge.
func StreamSessionStarted() {
	if streamSessions == nil {
		return
	}
	streamSessions.Inc()
}

// StreamSessionEnded decrements the open session gauge.
func StreamSessionEnded() {
	if streamSessions == nil {
		return
	}
	streamSessions.Dec()
}

// ObserveHTTP records a served request.
func ObserveHTTP(method, status string, elapsed time.Duration) {
	if httpRequests == nil || httpLatency == nil {
		return
	}
	httpRequests.WithLabelValues(method, status).Inc()
	httpLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveExport records a register export.
func ObserveExport(format, result string) {
	if exportTotal == nil {
		return
	}
	exportTotal.WithLabelValues(format, result).Inc()
}
