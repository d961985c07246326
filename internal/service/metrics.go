package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry *prometheus.Registry

	cycles         prometheus.Counter
	cycleErrors    prometheus.Counter
	cycleDuration  prometheus.Histogram
	matches        *prometheus.CounterVec
	settlements    *prometheus.CounterVec
	skippedIntents prometheus.Counter
	bookSize       prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matching_cycles_total",
			Help: "Number of reconciliation and matching cycles",
		}),
		cycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matching_cycle_errors_total",
			Help: "Number of cycles aborted by an error",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matching_cycle_duration_seconds",
			Help:    "Duration of a full cycle, settlement included",
			Buckets: prometheus.DefBuckets,
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matching_matches_total",
			Help: "Number of crossings found",
		}, []string{"asset"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matching_settlements_total",
			Help: "Number of settled matches by final status",
		}, []string{"status"}),
		skippedIntents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matching_skipped_intents_total",
			Help: "Number of intents rejected by the loader",
		}),
		bookSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matching_book_entries",
			Help: "Entries loaded into the book by the last cycle",
		}),
	}

	m.registry.MustRegister(
		m.cycles,
		m.cycleErrors,
		m.cycleDuration,
		m.matches,
		m.settlements,
		m.skippedIntents,
		m.bookSize,
	)
	return m
}
