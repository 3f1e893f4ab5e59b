// Package metrics wires the library's counters, histograms and gauges
// into Prometheus's client_golang.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the narrow surface the pipeline depends on, so components
// never reach into a *prometheus.Registry directly.
type Recorder struct {
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	clusterResults  *prometheus.CounterVec
	weight          *prometheus.GaugeVec
	health          *prometheus.GaugeVec
}

// NewRecorder builds and registers a Recorder's collectors against reg.
// Pass prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer to expose metrics on a shared /metrics
// endpoint.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clusterhttp",
			Name:      "attempts_total",
			Help:      "Replica attempts, labeled by verdict.",
		}, []string{"verdict"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clusterhttp",
			Name:      "attempt_duration_seconds",
			Help:      "Latency of a single replica attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"verdict"}),
		clusterResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clusterhttp",
			Name:      "cluster_results_total",
			Help:      "Logical requests, labeled by final status.",
		}, []string{"status"}),
		weight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "clusterhttp",
			Name:      "replica_weight",
			Help:      "Most recently computed ordering weight per replica.",
		}, []string{"replica"}),
		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "clusterhttp",
			Name:      "replica_health",
			Help:      "Most recently computed adaptive-health value per replica, in [0, 1].",
		}, []string{"replica"}),
	}
	reg.MustRegister(r.attempts, r.attemptDuration, r.clusterResults, r.weight, r.health)
	return r
}

// ObserveAttempt records one replica attempt's verdict and duration.
func (r *Recorder) ObserveAttempt(verdict string, d time.Duration) {
	r.attempts.WithLabelValues(verdict).Inc()
	r.attemptDuration.WithLabelValues(verdict).Observe(d.Seconds())
}

// ObserveClusterResult records one logical request's final status.
func (r *Recorder) ObserveClusterResult(status string) {
	r.clusterResults.WithLabelValues(status).Inc()
}

// ObserveWeight records the most recent ordering weight computed for a
// replica.
func (r *Recorder) ObserveWeight(replica string, weight float64) {
	r.weight.WithLabelValues(replica).Set(weight)
}

// ObserveHealth records the most recent adaptive-health value computed
// for a replica, independent of whatever other modifiers did to its
// final ordering weight.
func (r *Recorder) ObserveHealth(replica string, value float64) {
	r.health.WithLabelValues(replica).Set(value)
}
