package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialoguebot_updates_processed_total",
			Help: "Total number of processed updates by event kind",
		},
		[]string{"kind"}, // command:start, text, callback, unrecognized
	)

	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialoguebot_transitions_total",
			Help: "Total number of applied state transitions",
		},
		[]string{"from", "to"},
	)

	providerCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialoguebot_provider_calls_total",
			Help: "Total number of provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	providerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialoguebot_provider_call_duration_seconds",
			Help:    "Duration of provider calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"provider"},
	)

	staleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dialoguebot_stale_results_discarded_total",
			Help: "Provider results dropped because the dialogue was reset meanwhile",
		},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialoguebot_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // send, answer_callback, journal, panic
	)

	updatesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dialoguebot_updates_in_flight",
			Help: "Number of updates currently being processed",
		},
	)
)
