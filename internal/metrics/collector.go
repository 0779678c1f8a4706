package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/piaware-exporter/internal/store"
	"github.com/jpalmerr/piaware-exporter/state"
)

// Source provides a consistent snapshot of subsystem states.
type Source interface {
	GetAll() []store.Entry
}

// StateCollector implements prometheus.Collector over a [Source].
//
// Collect takes one snapshot per scrape, so all series of a metric are
// derived from the same state value.
type StateCollector struct {
	source Source
	descs  map[state.Subsystem]*prometheus.Desc
}

// NewStateCollector creates a collector for every subsystem in state.Subsystems.
func NewStateCollector(source Source) *StateCollector {
	descs := make(map[state.Subsystem]*prometheus.Desc, len(state.Subsystems))
	for _, sub := range state.Subsystems {
		name := sub.MetricName()
		descs[sub] = prometheus.NewDesc(name, sub.Help(), []string{name}, nil)
	}
	return &StateCollector{source: source, descs: descs}
}

// Describe implements prometheus.Collector.
func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, sub := range state.Subsystems {
		ch <- c.descs[sub]
	}
}

// Collect implements prometheus.Collector.
func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	for _, entry := range c.source.GetAll() {
		desc, ok := c.descs[entry.Subsystem]
		if !ok {
			continue
		}
		for _, s := range state.States {
			value := 0.0
			if s == entry.State {
				value = 1
			}
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value, s.String())
		}
	}
}
