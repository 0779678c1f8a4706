package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "piaware_exporter"

// PollMetrics tracks the outcome and latency of status.json fetches.
type PollMetrics struct {
	polls    *prometheus.CounterVec
	duration prometheus.Histogram
	lastPoll prometheus.Gauge
}

// NewPollMetrics creates poll metrics. The given outcomes are
// pre-initialised to zero so they are exported before the first poll.
func NewPollMetrics(outcomes ...string) *PollMetrics {
	pm := &PollMetrics{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total number of status.json fetches by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Time taken to fetch status.json",
			Buckets:   prometheus.DefBuckets,
		}),
		lastPoll: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_poll_timestamp_seconds",
			Help:      "Unix time of the last completed fetch attempt",
		}),
	}
	for _, o := range outcomes {
		pm.polls.WithLabelValues(o)
	}
	return pm
}

// Observe records one completed fetch attempt.
func (pm *PollMetrics) Observe(outcome string, latency time.Duration, at time.Time) {
	pm.polls.WithLabelValues(outcome).Inc()
	pm.duration.Observe(latency.Seconds())
	pm.lastPoll.Set(float64(at.UnixNano()) / 1e9)
}

// Collectors returns the underlying collectors for registration.
func (pm *PollMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{pm.polls, pm.duration, pm.lastPoll}
}
