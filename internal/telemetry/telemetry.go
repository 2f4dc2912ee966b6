// Package telemetry exposes process-local Prometheus metrics for the bot.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts query activity. The server exposes them on /metrics; the
// CLI paths run fine without a scraper.
type Metrics struct {
	QueriesTotal    prometheus.Counter
	FallbacksTotal  prometheus.Counter
	IterationsTotal prometheus.Counter
	VerdictsTotal   *prometheus.CounterVec
}

// New registers the bot metrics with the given registerer. A nil registerer
// uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		QueriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "supportbot_queries_total",
			Help: "Number of queries processed.",
		}),
		FallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "supportbot_fallback_answers_total",
			Help: "Number of queries answered with the fallback text.",
		}),
		IterationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "supportbot_refinement_iterations_total",
			Help: "Number of refinement iterations executed.",
		}),
		VerdictsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "supportbot_feedback_verdicts_total",
			Help: "Simulated feedback verdicts by kind.",
		}, []string{"verdict"}),
	}
}
