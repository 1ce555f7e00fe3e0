// Package pipeline orchestrates the rulecheck stages: corpus loading,
// extraction, normalization, coverage matching, and report aggregation.
// Control flow is strictly pipeline-shaped; no stage re-enters an
// earlier one.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/c360studio/rulecheck/audit"
	"github.com/c360studio/rulecheck/corpus"
	"github.com/c360studio/rulecheck/coverage"
	"github.com/c360studio/rulecheck/extract"
	"github.com/c360studio/rulecheck/rules"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
	"golang.org/x/sync/errgroup"
)

// ErrNoRules is returned when extraction finds zero rules. Unlike
// skipped files, an empty rule set is run-fatal: a gate verifying
// nothing proves nothing.
var ErrNoRules = errors.New("no rules extracted from corpus")

// DefaultThreshold is the release-gate coverage percentage.
const DefaultThreshold = 100.0

// ExtractOptions configures an extraction run (stages 1-3).
type ExtractOptions struct {
	CorpusRoot string
	Walker     corpus.WalkerConfig
	Extract    extract.Config

	// Workers bounds extraction parallelism. Zero uses GOMAXPROCS.
	Workers int
}

// CheckOptions configures a coverage run (stages 4-5).
type CheckOptions struct {
	RepoRoot string
	Matcher  coverage.Config

	// Threshold is the PASS percentage. Nil uses the default 100;
	// an explicit zero is a valid always-pass gate.
	Threshold *float64

	// ChainDir, when set, appends the report to the hash chain there.
	ChainDir string

	// Workers bounds matching parallelism. Zero uses GOMAXPROCS.
	Workers int
}

// Pipeline runs the batch stages with shared logging and metrics.
type Pipeline struct {
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a Pipeline. A nil logger uses slog.Default; a nil
// metrics registry creates a fresh one.
func New(logger *slog.Logger, metrics *Metrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Pipeline{logger: logger, metrics: metrics}
}

// Metrics returns the pipeline's metrics registry.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Extract runs stages 1-3: load the corpus, extract draft rules in
// parallel across documents, then merge them in a deterministic
// single-threaded reduction.
func (p *Pipeline) Extract(ctx context.Context, opts ExtractOptions) (*rules.RuleSet, *RunSummary, error) {
	summary := &RunSummary{}

	walker, err := corpus.NewWalker(opts.CorpusRoot, opts.Walker, p.logger)
	if err != nil {
		return nil, summary, fmt.Errorf("open corpus: %w", err)
	}

	docs, skips, err := walker.Load(ctx)
	if err != nil {
		return nil, summary, fmt.Errorf("load corpus: %w", err)
	}
	summary.AddSkips(skips)
	summary.DocumentsLoaded = len(docs)
	p.metrics.DocumentsLoaded.Add(float64(len(docs)))
	for _, skip := range skips {
		p.metrics.FilesSkipped.WithLabelValues(string(skip.Reason)).Inc()
	}

	p.logger.Info("Corpus loaded",
		"documents", len(docs),
		"skipped", len(skips))

	// Stage 2: extraction is embarrassingly parallel across documents.
	// Results land in a per-document slot so the later reduction sees
	// them in walk order regardless of worker completion order.
	registry := extract.NewRegistry(opts.Extract)
	results := make([]*extract.Result, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(opts.Workers))
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := registry.Extract(doc)
			if err != nil {
				// Extraction failures are recovered: log, count, move on.
				p.logger.Warn("Extraction failed, skipping document",
					"path", doc.RelPath,
					"kind", doc.Kind,
					"error", err)
				results[i] = &extract.Result{}
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, summary, err
	}

	// Stage 3: single-threaded merge.
	var drafts []rules.Draft
	for _, result := range results {
		drafts = append(drafts, result.Drafts...)
		summary.Ambiguities += result.Ambiguities
	}

	set := rules.NewSet(p.logger)
	set.AddAll(drafts)
	merged := set.Finalize()
	summary.IDCollisions = set.Collisions
	summary.RulesExtracted = len(merged)
	p.metrics.RulesExtracted.Add(float64(len(merged)))

	p.logger.Info("Extraction complete",
		"drafts", len(drafts),
		"rules", len(merged),
		"ambiguities", summary.Ambiguities,
		"collisions", summary.IDCollisions)

	if len(merged) == 0 {
		return nil, summary, ErrNoRules
	}
	return &rules.RuleSet{Rules: merged}, summary, nil
}

// Check runs stages 4-5: match every rule against every artifact
// category in parallel, then aggregate sequentially and append to the
// hash chain when configured.
func (p *Pipeline) Check(ctx context.Context, ruleSet *rules.RuleSet, opts CheckOptions) (*audit.Report, *RunSummary, error) {
	summary := &RunSummary{RulesExtracted: len(ruleSet.Rules)}

	matcher, err := coverage.NewMatcher(opts.RepoRoot, opts.Matcher, p.logger)
	if err != nil {
		return nil, summary, fmt.Errorf("open repository: %w", err)
	}

	skips, err := matcher.Scan(ctx)
	if err != nil {
		return nil, summary, fmt.Errorf("scan repository: %w", err)
	}
	summary.AddSkips(skips)
	for _, skip := range skips {
		p.metrics.FilesSkipped.WithLabelValues(string(skip.Reason)).Inc()
	}

	// Stage 4: one record per (rule, category) pair, matched in
	// parallel. Each pair writes its own slot, so no locking is needed.
	categories := vocab.AllCategories()
	records := make([]coverage.Record, len(ruleSet.Rules)*len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(opts.Workers))
	for i, rule := range ruleSet.Rules {
		for j, category := range categories {
			rule, category := rule, category
			slot := i*len(categories) + j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				records[slot] = matcher.Match(rule, category)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, summary, err
	}

	summary.RecordsProduced = len(records)
	p.metrics.CoverageRecords.Add(float64(len(records)))
	for _, rec := range records {
		if rec.Found {
			summary.EvidenceMatches++
			p.metrics.EvidenceFound.Inc()
			p.metrics.MatchConfidence.Observe(rec.Confidence)
		}
	}

	// Stage 5: strictly sequential aggregation and chain append.
	threshold := DefaultThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	report, err := audit.Aggregate(ruleSet.Rules, records, threshold)
	if err != nil {
		return nil, summary, fmt.Errorf("aggregate coverage: %w", err)
	}

	if opts.ChainDir != "" {
		store, err := audit.NewChainStore(opts.ChainDir)
		if err != nil {
			return nil, summary, err
		}
		if err := store.Append(report); err != nil {
			return nil, summary, fmt.Errorf("append to chain: %w", err)
		}
	}

	p.logger.Info("Coverage check complete",
		"rules", report.TotalRules,
		"fully_covered", report.RulesFullyCovered,
		"overall_pct", report.OverallPercentage,
		"verdict", report.Verdict)

	return report, summary, nil
}

func workerCount(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
