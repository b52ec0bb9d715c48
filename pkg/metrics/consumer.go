// Package metrics exposes Prometheus instrumentation for the background
// workers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Seed outcomes. Every handled message lands in exactly one.
const (
	SeedOutcomeSeeded    = "seeded"
	SeedOutcomeDuplicate = "duplicate"
	SeedOutcomeMalformed = "malformed"
	SeedOutcomeFailed    = "failed"
)

// SeedConsumerMetrics records outcomes for the seed event consumer.
type SeedConsumerMetrics struct {
	duration *prometheus.HistogramVec
	handled  *prometheus.CounterVec
}

// NewSeedConsumerMetrics registers the seed consumer metrics on the provided
// registerer. A nil registerer yields a no-op collector.
func NewSeedConsumerMetrics(reg prometheus.Registerer) *SeedConsumerMetrics {
	if reg == nil {
		return &SeedConsumerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seed_duration_seconds",
		Help:    "Duration of sample-data seeding in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	handled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seed_events_handled",
		Help: "Seed events handled, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, handled)
	return &SeedConsumerMetrics{
		duration: duration,
		handled:  handled,
	}
}

// ObserveDuration records how long one seeding attempt took.
func (m *SeedConsumerMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeOutcome(outcome)).Observe(duration.Seconds())
}

// IncHandled counts a handled message under its outcome.
func (m *SeedConsumerMetrics) IncHandled(outcome string) {
	if m == nil || m.handled == nil {
		return
	}
	m.handled.WithLabelValues(normalizeOutcome(outcome)).Inc()
}

func normalizeOutcome(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}
