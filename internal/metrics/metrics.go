// Package metrics exports toast lifecycle counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/store"
)

const namespace = "toastui"

// Collector tracks toast lifecycle metrics.
type Collector struct {
	created   *prometheus.CounterVec
	dismissed prometheus.Counter
	evicted   prometheus.Counter
	active    prometheus.Gauge
}

// New creates a collector registered with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "toasts",
			Name:      "created_total",
			Help:      "Total toasts raised, by type.",
		}, []string{"type"}),

		dismissed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "toasts",
			Name:      "dismissed_total",
			Help:      "Total toasts that started their exit transition.",
		}),

		evicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "toasts",
			Name:      "evicted_total",
			Help:      "Total toasts removed from the collection.",
		}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "toasts",
			Name:      "active",
			Help:      "Toasts currently in the collection, exiting ones included.",
		}),
	}

	// Expose every type label from the start.
	for _, t := range model.Types() {
		c.created.WithLabelValues(string(t))
	}
	return c
}

// Observe updates the metrics for one store change.
// It is meant to be installed with store.WithObserver.
func (c *Collector) Observe(ev store.ChangeEvent) {
	switch ev.Type {
	case store.ChangeTypeAdd:
		c.created.WithLabelValues(string(ev.Record.Type)).Inc()
		c.active.Inc()
	case store.ChangeTypeExiting:
		c.dismissed.Inc()
	case store.ChangeTypeEvict:
		c.evicted.Inc()
		c.active.Dec()
	}
}
