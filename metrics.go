package flashnest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flashnest_client",
			Name:      "generations_total",
			Help:      "Generation pipeline runs by outcome (ok, request_error, parse_error).",
		},
		[]string{"outcome"},
	)

	parseFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flashnest_client",
			Name:      "generation_parse_failures_total",
			Help:      "Model replies that could not be recovered into a flashcard array.",
		},
	)
)
