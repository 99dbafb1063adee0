// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Registry = prometheus.NewRegistry()

	simulations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "frontier_simulations_total", Help: "Monte Carlo runs by outcome",
	}, []string{"result"})

	samples = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frontier_samples_total", Help: "Portfolios sampled",
	})

	simulationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "frontier_simulation_seconds",
		Help:    "Wall time of one Monte Carlo run",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	fetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "frontier_price_fetches_total", Help: "Price history fetches by outcome",
	}, []string{"result"})

	commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "frontier_bot_commands_total", Help: "Bot commands handled",
	}, []string{"command"})
)

func init() {
	Registry.MustRegister(
		simulations, samples, simulationSeconds, fetches, commands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveSimulation records one sampler run.
func ObserveSimulation(count int, took time.Duration, err error) {
	simulations.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		samples.Add(float64(count))
	}
	simulationSeconds.Observe(took.Seconds())
}

// ObserveFetch records one price history fetch.
func ObserveFetch(err error) {
	fetches.WithLabelValues(outcome(err)).Inc()
}

// ObserveCommand records a handled bot command.
func ObserveCommand(command string) {
	commands.WithLabelValues(command).Inc()
}
