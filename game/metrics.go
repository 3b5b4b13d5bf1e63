package game

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scratchcard_operations_total",
		Help: "Game operations by outcome",
	}, []string{"operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scratchcard_operation_duration_seconds",
		Help:    "Duration of game operations, confirmation included",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"operation"})

	scratchWins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scratchcard_wins_total",
		Help: "Resolved scratchcards that won",
	})
)

// RecordOperation records one finished operation.
func RecordOperation(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
