package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "gridview"

type metrics struct {
	batches       prometheus.Counter
	operations    *prometheus.CounterVec
	reloads       *prometheus.CounterVec
	reloadSeconds prometheus.Histogram
	clients       prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		batches: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "batches_total",
			Help:      "Total edit batches applied to the grid",
		}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Total edit operations applied to the grid by kind",
		}, []string{"kind"}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reloads_total",
			Help:      "Total workspace reloads by result",
		}, []string{"result"}),
		reloadSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "reload_duration_seconds",
			Help:      "Time to reload the workspace in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "preview_clients",
			Help:      "Number of connected live previews",
		}),
	}
}
