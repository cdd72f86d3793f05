package pool

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "parawalk"
	metricsSubsystem = "pool"
)

// metrics exposes a pool's counters. The values are read from the pool on
// every scrape, so nothing here sits on the task hot path.
type metrics struct {
	registry *prometheus.Registry
}

func newMetrics(p *Pool) *metrics {
	reg := prometheus.NewRegistry()

	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        name,
			Help:        help,
			ConstLabels: prometheus.Labels{"workers": strconv.Itoa(p.size)},
		}
	}

	reg.MustRegister(
		prometheus.NewCounterFunc(
			prometheus.CounterOpts(opts("tasks_enqueued_total", "Tasks accepted into the queue.")),
			func() float64 { return float64(p.queue.Stats().Enqueued) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts(opts("tasks_dequeued_total", "Tasks handed to a worker.")),
			func() float64 { return float64(p.queue.Stats().Dequeued) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts(opts("tasks_executed_total", "Tasks executed and destroyed by a worker.")),
			func() float64 { return float64(p.executed.Load()) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts(opts("tasks_rejected_total", "External submissions rejected after shutdown was requested.")),
			func() float64 { return float64(p.rejected.Load()) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts(opts("queue_depth", "Tasks currently queued.")),
			func() float64 { return float64(p.queue.Len()) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts(opts("workers_running", "Workers that have not yet exited.")),
			func() float64 { return float64(p.running.Load()) },
		),
	)

	return &metrics{registry: reg}
}
