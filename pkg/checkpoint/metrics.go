package checkpoint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckpointHits tracks lookups that found a stored cursor
	CheckpointHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_checkpoint_hits_total",
			Help: "Total number of checkpoint lookups that found a cursor",
		},
	)

	// CheckpointMisses tracks lookups with no stored cursor
	CheckpointMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_checkpoint_misses_total",
			Help: "Total number of checkpoint lookups with no stored cursor",
		},
	)

	// CheckpointErrors tracks checkpoint operation errors
	CheckpointErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_checkpoint_errors_total",
			Help: "Total number of checkpoint operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
