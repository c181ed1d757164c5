// internal/metrics/metrics.go

// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the slice of Collector the rental service and the
// recommendation engine depend on.
type Recorder interface {
	RecordRent()
	RecordReturn()
	RecordRejection(kind string)
	RecordConflict()
	RecordRecommendation(strategy string)
}

// Collector registers and records the cinerent metrics.
type Collector struct {
	rents           prometheus.Counter
	returns         prometheus.Counter
	rejections      *prometheus.CounterVec
	conflicts       prometheus.Counter
	recommendations *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		rents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinerent_rentals_total",
			Help: "Total number of successful rentals.",
		}),
		returns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinerent_returns_total",
			Help: "Total number of successful returns.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinerent_rental_rejections_total",
			Help: "Rental operations rejected by a guard, by error kind.",
		}, []string{"kind"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinerent_commit_conflicts_total",
			Help: "Atomic commits that lost a race and were retried or surfaced.",
		}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinerent_recommendations_total",
			Help: "Recommendation requests served, by strategy.",
		}, []string{"strategy"}),
	}

	reg.MustRegister(c.rents, c.returns, c.rejections, c.conflicts, c.recommendations)
	return c
}

func (c *Collector) RecordRent()   { c.rents.Inc() }
func (c *Collector) RecordReturn() { c.returns.Inc() }

func (c *Collector) RecordRejection(kind string) {
	c.rejections.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordConflict() { c.conflicts.Inc() }

func (c *Collector) RecordRecommendation(strategy string) {
	c.recommendations.WithLabelValues(strategy).Inc()
}

// Handler returns the /metrics endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Nop is a Recorder that discards everything; tests use it.
type Nop struct{}

func (Nop) RecordRent()                    {}
func (Nop) RecordReturn()                  {}
func (Nop) RecordRejection(string)         {}
func (Nop) RecordConflict()                {}
func (Nop) RecordRecommendation(string)    {}
