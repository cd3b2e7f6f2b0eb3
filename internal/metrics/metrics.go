// Package metrics instruments the solver and optimizer with a private
// Prometheus registry. Grounded in
// noah-isme-sma-adp-api/internal/service/metrics_service.go, trimmed
// down from HTTP/DB/cache instrumentation to the handful of series the
// search and GA loops actually produce. Nothing here serves an HTTP
// endpoint; the registry exists for tests and optional export by a
// caller that embeds this module in a larger service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles the solver/optimizer collectors.
type Registry struct {
	registry *prometheus.Registry

	SolverBacktracks prometheus.Counter
	GAGenerations    prometheus.Counter
	GABestFitness    prometheus.Gauge
	GAPopulationFit  prometheus.Histogram
}

// New registers and returns a fresh Registry.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		SolverBacktracks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solver_backtracks_total",
			Help: "Total number of backtracking steps taken by the CSP solver",
		}),
		GAGenerations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ga_generations_total",
			Help: "Total number of population optimizer generations evaluated",
		}),
		GABestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ga_best_fitness",
			Help: "Fitness of the best individual seen so far",
		}),
		GAPopulationFit: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ga_population_fitness",
			Help:    "Distribution of fitness across the population at each generation",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}

	reg.MustRegister(r.SolverBacktracks, r.GAGenerations, r.GABestFitness, r.GAPopulationFit)
	return r
}

// Registerer exposes the underlying registry for a caller that wants to
// serve /metrics itself.
func (r *Registry) Registerer() *prometheus.Registry {
	return r.registry
}
