package repository

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neoknight_repository_operations_total",
		Help: "Repository operations by entity, operation and outcome",
	}, []string{"entity", "operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neoknight_repository_operation_duration_seconds",
		Help:    "Repository operation latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "operation"})

	clientSideEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neoknight_client_side_evaluations_total",
		Help: "Queries answered by evaluating the specification in memory",
	}, []string{"entity"})
)

func observe(entity, operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(entity, operation, outcome).Inc()
	operationDuration.WithLabelValues(entity, operation).Observe(time.Since(start).Seconds())
}
