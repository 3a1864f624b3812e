package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slides_generations_started_total",
			Help: "Generation sessions started, by mode",
		},
		[]string{"mode"},
	)

	GenerationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slides_generations_failed_total",
			Help: "Generation sessions aborted, by mode and error code",
		},
		[]string{"mode", "error_code"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slides_generation_duration_seconds",
			Help:    "Wall time of a generation session",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"mode"},
	)

	ChunksDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slides_stream_chunks_total",
			Help: "Chunks decoded from the streaming endpoint, by chunk type",
		},
		[]string{"type"},
	)

	QuestionsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slides_questions_dropped_total",
			Help: "Questions whose target slide index was out of range",
		},
	)

	SlidesRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slides_rendered_total",
			Help: "Slides rendered, by output format",
		},
		[]string{"format"},
	)
)
