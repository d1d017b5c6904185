package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soracast_provider_api_calls_total",
			Help: "Total weather provider API calls",
		},
		[]string{"provider", "status"},
	)

	ProviderAPILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soracast_provider_api_latency_seconds",
			Help:    "Weather provider API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soracast_generations_total",
			Help: "Total comment generations by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "soracast_generation_duration_seconds",
			Help:    "End-to-end duration of one location's generation pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)

	ValidationViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soracast_validation_violations_total",
			Help: "Total consistency-validator violations by rule and severity",
		},
		[]string{"rule", "severity"},
	)

	FallbackSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soracast_fallback_selections_total",
			Help: "Selections that fell back to a default comment",
		},
		[]string{"category"},
	)

	LLMAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soracast_llm_attempts_total",
			Help: "LLM refinement attempts by provider and status",
		},
		[]string{"provider", "status"},
	)
)
