// internal/server/metrics.go
package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "quilbridge"
	metricsSubsystem = "qvmd"
)

var (
	jobsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "jobs_submitted_total",
		Help:      "Total number of jobs accepted for execution",
	})

	// Labels: status (done, failed, cancelled)
	jobsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "jobs_completed_total",
		Help:      "Total number of jobs finished, by terminal status",
	}, []string{"status"})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "job_duration_seconds",
		Help:      "Wall time spent simulating a job",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	shotsExecutedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "shots_executed_total",
		Help:      "Total number of shots sampled across all jobs",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "queue_depth",
		Help:      "Number of jobs waiting for a worker",
	})

	// Labels: type (multishot, wavefunction, expectation, version)
	syncRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "sync_requests_total",
		Help:      "Total number of synchronous API requests, by type",
	}, []string{"type"})
)
