package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "text_adventure_ai_requests_total",
			Help: "Total number of requests to the narrative endpoint.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "text_adventure_ai_request_duration_seconds",
			Help:    "Histogram of narrative endpoint request durations.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "text_adventure_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(50, 50, 20),
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "text_adventure_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 20),
		},
		[]string{"model"},
	)
	narratorAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "text_adventure_narrator_attempts_total",
			Help: "Generation attempts made by the narrator, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "text_adventure_turns_total",
			Help: "Turns played, partitioned by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	factsExtractedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "text_adventure_facts_extracted_total",
			Help: "Facts extracted from narrative replies, partitioned by fact kind.",
		},
		[]string{"fact"},
	)
	levelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "text_adventure_level_ups_total",
			Help: "Total number of levels gained by players.",
		},
	)
)

// Turn outcome labels.
const (
	outcomeSuccess    = "success"
	outcomeNoResponse = "no_response"
	outcomeSaveError  = "save_error"
	outcomeBadInput   = "bad_input"
)

func recordTurn(operation, outcome string) {
	turnsTotal.WithLabelValues(operation, outcome).Inc()
}

func recordFacts(names []string) {
	for _, n := range names {
		factsExtractedTotal.WithLabelValues(n).Inc()
	}
}
