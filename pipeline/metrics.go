package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the pipeline's Prometheus collectors. The registry is
// run-local: counters describe one batch run and can be dumped in
// Prometheus text format for CI artifact collection.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsLoaded prometheus.Counter
	RulesExtracted  prometheus.Counter
	FilesSkipped    *prometheus.CounterVec
	CoverageRecords prometheus.Counter
	EvidenceFound   prometheus.Counter
	MatchConfidence prometheus.Histogram
}

// NewMetrics creates a registry with all pipeline collectors registered.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rulecheck_documents_loaded_total",
			Help: "Corpus documents successfully loaded.",
		}),
		RulesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rulecheck_rules_extracted_total",
			Help: "Rules surviving normalization and deduplication.",
		}),
		FilesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rulecheck_files_skipped_total",
			Help: "Files skipped during loading or matching, by reason.",
		}, []string{"reason"}),
		CoverageRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rulecheck_coverage_records_total",
			Help: "Coverage records produced.",
		}),
		EvidenceFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rulecheck_evidence_found_total",
			Help: "Coverage records with implementation evidence.",
		}),
		MatchConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rulecheck_match_confidence",
			Help:    "Confidence distribution of found coverage records.",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 11),
		}),
	}

	m.registry.MustRegister(
		m.DocumentsLoaded,
		m.RulesExtracted,
		m.FilesSkipped,
		m.CoverageRecords,
		m.EvidenceFound,
		m.MatchConfidence,
	)
	return m
}

// WriteTo dumps all collectors in Prometheus text exposition format.
func (m *Metrics) WriteTo(path string) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer f.Close()

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(f, family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
