// Package metrics exposes batch counters for prediction runs and writes them
// in the Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/domfun/domfun/internal/predictor"
)

// Metrics holds the collectors of one run on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	// Queries by outcome: predicted, no_domains, no_evidence, degenerate, failed
	Queries *prometheus.CounterVec

	Predictions         prometheus.Counter
	DegenerateFunctions prometheus.Counter
	Associations        *prometheus.GaugeVec
	BatchDuration       prometheus.Gauge
}

// New creates a Metrics instance with every collector registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domfun_queries_total",
			Help: "Queries processed by outcome",
		}, []string{"outcome"}),
		Predictions: f.NewCounter(prometheus.CounterOpts{
			Name: "domfun_predictions_total",
			Help: "Prediction rows emitted",
		}),
		DegenerateFunctions: f.NewCounter(prometheus.CounterOpts{
			Name: "domfun_degenerate_functions_total",
			Help: "Functions dropped because their combined score was not finite",
		}),
		Associations: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "domfun_associations",
			Help: "Association records by state after loading",
		}, []string{"state"}),
		BatchDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "domfun_batch_duration_seconds",
			Help: "Wall time of the last prediction batch",
		}),
	}
}

// RecordBatch adds the batch counts and duration.
func (m *Metrics) RecordBatch(s predictor.Stats, d time.Duration) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues("predicted").Add(float64(s.Predicted))
	m.Queries.WithLabelValues(string(predictor.SkipNoDomains)).Add(float64(s.NoDomains))
	m.Queries.WithLabelValues(string(predictor.SkipNoEvidence)).Add(float64(s.NoEvidence))
	m.Queries.WithLabelValues(string(predictor.SkipDegenerate)).Add(float64(s.Degenerate))
	m.Queries.WithLabelValues(string(predictor.SkipFailed)).Add(float64(s.Failed))
	m.Predictions.Add(float64(s.Predictions))
	m.DegenerateFunctions.Add(float64(s.DegenerateFunctions))
	m.BatchDuration.Set(d.Seconds())
}

// RecordIndex sets the association gauges from a built index.
func (m *Metrics) RecordIndex(idx *predictor.Index, skippedRows int) {
	if m == nil || idx == nil {
		return
	}
	m.Associations.WithLabelValues("indexed").Set(float64(idx.Records()))
	m.Associations.WithLabelValues("duplicate").Set(float64(idx.Duplicates()))
	m.Associations.WithLabelValues("skipped").Set(float64(skippedRows))
}

// WriteTextfile writes the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
