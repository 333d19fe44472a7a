package studyguard

import internalmetrics "github.com/mednet-labs/studyguard/internal/metrics"

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricDef pairs a [MetricID] with its exposition name and help text.
// Exporters iterate [MetricDefs] for a stable output order.
type MetricDef = internalmetrics.Def

// MetricDefs is the stable exposition order for exporters.
var MetricDefs = internalmetrics.Defs

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false,
// all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
