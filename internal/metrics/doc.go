// Package metrics exposes exporter state to Prometheus.
//
// [StateCollector] turns a store snapshot into one enum-style metric per
// subsystem: a gauge family whose single label (named after the metric)
// takes every possible state value, with exactly one series set to 1.
// [PollMetrics] records how the poll loop itself is doing.
package metrics
