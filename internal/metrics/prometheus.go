// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the training platform.
var (
	// Counters.
	DialogueTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_total",
			Help: "Total number of dialogue turns processed",
		},
		[]string{"mode", "status"},
	)

	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points extracted from persona replies",
		},
		[]string{"mode", "category"},
	)

	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"badge", "context"},
	)

	SessionsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_completed_total",
			Help: "Total number of dialogue sessions that reached completion",
		},
		[]string{"mode"},
	)

	QuestionnairesScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questionnaires_scored_total",
			Help: "Total number of questionnaire scoring attempts",
		},
		[]string{"status"},
	)

	AnnotationTableFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annotation_table_failures_total",
			Help: "Total number of embedded tables dropped due to malformed JSON",
		},
	)

	CompletionRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "completion_retries_total",
			Help: "Total number of retried generative-text requests",
		},
	)

	// Histograms.
	CompletionDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_duration_seconds",
			Help:    "Latency of generative-text backend requests",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2min
		},
		[]string{"model", "status"},
	)

	TurnPointsAwarded = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turn_points_awarded",
			Help:    "Points awarded per dialogue turn",
			Buckets: prometheus.LinearBuckets(0, 2, 8), // 0 to 14 points
		},
		[]string{"mode"},
	)
)
