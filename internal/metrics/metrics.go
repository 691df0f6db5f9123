package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	collaboratorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ausgrid_collaborator_requests_total",
			Help: "Total number of calls to external coordinate and declination services.",
		},
		[]string{"collaborator", "outcome"},
	)

	collaboratorDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ausgrid_collaborator_duration_seconds",
			Help:    "External service call duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collaborator"},
	)

	transformsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ausgrid_transforms_total",
			Help: "Total number of point transforms by target.",
		},
		[]string{"target", "outcome"},
	)
)

// The collectors live in the default registry, so a program's own
// promhttp.Handler exposes them.
func init() {
	prometheus.MustRegister(collaboratorRequestsTotal)
	prometheus.MustRegister(collaboratorDurationSeconds)
	prometheus.MustRegister(transformsTotal)
}

// ObserveCollaborator records one call to an external collaborator that
// started at start.
func ObserveCollaborator(collaborator string, start time.Time, err error) {
	collaboratorRequestsTotal.WithLabelValues(collaborator, outcome(err)).Inc()
	collaboratorDurationSeconds.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
}

// ObserveTransform counts one point transform to target.
func ObserveTransform(target string, err error) {
	transformsTotal.WithLabelValues(target, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
