// Package prometheus exposes engine counters as Prometheus metrics.
//
// [NewCollector] wraps an [studyguard.Engine] in a prometheus.Collector
// that reads a fresh snapshot on every scrape. [Handler] is a
// convenience that registers the collector in a private registry and
// serves it over promhttp, so nothing touches the global registry.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mednet-labs/studyguard"
)

// MetricsSource is the part of the engine the collector reads.
type MetricsSource interface {
	MetricsSnapshot() studyguard.MetricsSnapshot
	AuditDropped() uint64
}

// Collector renders engine counters on every scrape. It holds no
// state of its own and never mutates the engine.
type Collector struct {
	source  MetricsSource
	descs   map[studyguard.MetricID]*prometheus.Desc
	dropped *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector that reads from the given engine.
func NewCollector(engine *studyguard.Engine) *Collector {
	return NewCollectorFromSource(engine)
}

// NewCollectorFromSource creates a collector from a custom [MetricsSource].
func NewCollectorFromSource(source MetricsSource) *Collector {
	descs := make(map[studyguard.MetricID]*prometheus.Desc, len(studyguard.MetricDefs))
	for _, def := range studyguard.MetricDefs {
		descs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}

	return &Collector{
		source: source,
		descs:  descs,
		dropped: prometheus.NewDesc(
			"studyguard_audit_dropped_total",
			"Audit events dropped by dispatcher backpressure.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, def := range studyguard.MetricDefs {
		ch <- c.descs[def.ID]
	}
	ch <- c.dropped
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()
	for _, def := range studyguard.MetricDefs {
		ch <- prometheus.MustNewConstMetric(
			c.descs[def.ID],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.ID]),
		)
	}

	ch <- prometheus.MustNewConstMetric(
		c.dropped,
		prometheus.CounterValue,
		float64(c.source.AuditDropped()),
	)
}

// Handler registers a fresh collector in a private registry and
// returns an http.Handler serving it. Callers mount it wherever their
// router exposes metrics.
func Handler(engine *studyguard.Engine) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollector(engine))
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
