// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Metrics holds the collectors for one server instance. Each instance owns
// its registry so tests can build routers side by side.
type Metrics struct {
	registry *prometheus.Registry

	submissions      *prometheus.CounterVec
	votesRecorded    prometheus.Counter
	itemsCreated     prometheus.Counter
	aggregationTime  prometheus.Histogram
	leaderboardItems prometheus.Gauge
}

// New creates a Metrics instance with a fresh registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "votedeck_submissions_total",
				Help: "Vote submissions received, by outcome.",
			},
			[]string{"outcome"},
		),
		votesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "votedeck_votes_recorded_total",
			Help: "Individual votes inserted or overwritten.",
		}),
		itemsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "votedeck_items_created_total",
			Help: "Catalog items uploaded.",
		}),
		aggregationTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "votedeck_aggregation_duration_seconds",
			Help:    "Time spent loading votes and computing the leaderboard.",
			Buckets: prometheus.DefBuckets,
		}),
		leaderboardItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "votedeck_leaderboard_items",
			Help: "Rows in the most recently computed leaderboard.",
		}),
	}
}

// ObserveSubmission counts one POST /votes attempt. votes is only added to
// the recorded total for accepted submissions.
func (m *Metrics) ObserveSubmission(outcome string, votes int) {
	m.submissions.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAccepted {
		m.votesRecorded.Add(float64(votes))
	}
}

func (m *Metrics) ObserveItemCreated() {
	m.itemsCreated.Inc()
}

// ObserveAggregation records one leaderboard computation.
func (m *Metrics) ObserveAggregation(d time.Duration, rows int) {
	m.aggregationTime.Observe(d.Seconds())
	m.leaderboardItems.Set(float64(rows))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
