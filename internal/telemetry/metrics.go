package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	// RiskEventsTotal counts risk events handed to the event logger.
	RiskEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "risk_sdk",
			Name:      "events_total",
			Help:      "Risk events logged by event type.",
		},
		[]string{"event"},
	)

	// StepDuration observes orchestration step latency.
	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "risk_sdk",
			Name:      "step_duration_milliseconds",
			Help:      "Latency of risk SDK steps in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"step"},
	)

	// HTTPRequestDuration observes device data API calls.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "risk_sdk",
			Name:      "http_request_duration_seconds",
			Help:      "Device data API call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	// EventSinkFailuresTotal counts events the remote processor could not deliver.
	EventSinkFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "risk_sdk",
			Name:      "event_sink_failures_total",
			Help:      "Remote event processor delivery failures by processor.",
		},
		[]string{"processor"},
	)
)

func init() {
	prometheus.MustRegister(RiskEventsTotal, StepDuration, HTTPRequestDuration, EventSinkFailuresTotal)
}
