// Package metrics exposes the service's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EvaluationsTotal counts readiness evaluations served.
	EvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wotrack_readiness_evaluations_total",
		Help: "Number of work order readiness evaluations performed.",
	})

	// CompletionsTotal counts work orders successfully marked complete.
	CompletionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wotrack_completions_total",
		Help: "Number of work orders marked complete.",
	})

	// WriteRejectedTotal counts declined mark-complete transitions.
	WriteRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wotrack_write_rejected_total",
		Help: "Number of mark-complete transitions rejected.",
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
