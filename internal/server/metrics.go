package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whiskertrack_narrative_pipeline_runs_total",
		Help: "Narrative pipeline executions by detected language.",
	}, []string{"language"})

	pipelineFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whiskertrack_narrative_pipeline_fallbacks_total",
		Help: "Pipeline runs that produced the raw-text fallback block.",
	})

	archiveGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whiskertrack_archive_generations_total",
		Help: "Archive content generations by outcome.",
	}, []string{"outcome"})
)
