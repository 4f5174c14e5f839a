// Package telemetry exports the scores of a run as Prometheus metrics,
// written in the text exposition format for the node_exporter textfile
// collector.
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maxgio92/fnbound"
)

// Score levels used as the "level" label.
const (
	LevelStart          = "start"
	LevelBoundaryShorts = "boundary_shorts"
	LevelBoundary       = "boundary"
)

// ScoreMetrics holds the gauges describing one run.
type ScoreMetrics struct {
	Precision *prometheus.GaugeVec
	Recall    *prometheus.GaugeVec
	F1        *prometheus.GaugeVec
	BinaryF1  *prometheus.GaugeVec
	Outcomes  *prometheus.GaugeVec
	Binaries  *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewScoreMetrics creates the gauges and registers them with registry.
func NewScoreMetrics(registry *prometheus.Registry) (*ScoreMetrics, error) {
	m := &ScoreMetrics{
		Precision: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fnbound_corpus_precision",
			Help: "Corpus precision of the last run, by level.",
		}, []string{"level"}),
		Recall: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fnbound_corpus_recall",
			Help: "Corpus recall of the last run, by level.",
		}, []string{"level"}),
		F1: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fnbound_corpus_f1",
			Help: "Corpus F1 of the last run, by level.",
		}, []string{"level"}),
		BinaryF1: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fnbound_binary_f1",
			Help: "Per-binary F1 of the last run, by level.",
		}, []string{"binary", "level"}),
		Outcomes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fnbound_outcomes",
			Help: "Number of classified addresses in the last run, by outcome.",
		}, []string{"outcome"}),
		Binaries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fnbound_binaries",
			Help: "Number of binaries in the last run, by status.",
		}, []string{"status"}),
		registry: registry,
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register score metrics: %w", err)
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *ScoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Precision.Describe(ch)
	m.Recall.Describe(ch)
	m.F1.Describe(ch)
	m.BinaryF1.Describe(ch)
	m.Outcomes.Describe(ch)
	m.Binaries.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *ScoreMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Precision.Collect(ch)
	m.Recall.Collect(ch)
	m.F1.Collect(ch)
	m.BinaryF1.Collect(ch)
	m.Outcomes.Collect(ch)
	m.Binaries.Collect(ch)
}

// Observe sets every gauge from c, replacing earlier values.
func (m *ScoreMetrics) Observe(c *fnbound.Corpus) {
	m.BinaryF1.Reset()

	tr := c.Triples()
	for level, s := range map[string]fnbound.Score{
		LevelStart:          tr.Start,
		LevelBoundaryShorts: tr.BoundaryWithShorts,
		LevelBoundary:       tr.Boundary,
	} {
		m.Precision.WithLabelValues(level).Set(s.Precision)
		m.Recall.WithLabelValues(level).Set(s.Recall)
		m.F1.WithLabelValues(level).Set(s.F1)
	}

	for _, f := range c.Files() {
		m.BinaryF1.WithLabelValues(f.Binary, LevelStart).Set(f.Scores.F1St)
		m.BinaryF1.WithLabelValues(f.Binary, LevelBoundary).Set(f.Scores.F1Bd)
	}

	t := c.Totals()
	m.Outcomes.WithLabelValues(string(fnbound.OutcomeMatch)).Set(float64(t.Matches))
	m.Outcomes.WithLabelValues(string(fnbound.OutcomeShort)).Set(float64(t.Shorts))
	m.Outcomes.WithLabelValues(string(fnbound.OutcomeLong)).Set(float64(t.Longs))
	m.Outcomes.WithLabelValues(string(fnbound.OutcomeOther)).Set(float64(t.Others))
	m.Outcomes.WithLabelValues(string(fnbound.OutcomeMissing)).Set(float64(t.Missings))

	m.Binaries.WithLabelValues("scored").Set(float64(t.Binaries))
	m.Binaries.WithLabelValues("failed").Set(float64(len(c.Failures())))
}

// WriteTextfile writes every metric of the registry to path.
func (m *ScoreMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Export observes c in a fresh registry and writes the result to path.
func Export(path string, c *fnbound.Corpus) error {
	m, err := NewScoreMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	m.Observe(c)
	return m.WriteTextfile(path)
}
