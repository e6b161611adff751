package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	readsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flashnest_client",
		Subsystem: "cache",
		Name:      "reads_total",
		Help:      "Cache reads by key kind and outcome (hit, stale, miss).",
	}, []string{"kind", "outcome"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flashnest_client",
		Subsystem: "cache",
		Name:      "mutations_total",
		Help:      "Optimistic mutations by operation and outcome (committed, rolled_back).",
	}, []string{"op", "outcome"})

	mutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flashnest_client",
		Subsystem: "cache",
		Name:      "mutation_duration_seconds",
		Help:      "Wall time from optimistic apply to commit or rollback.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
)
