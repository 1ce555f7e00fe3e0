package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/c360studio/rulecheck/config"
	"github.com/c360studio/rulecheck/corpus"
	"github.com/c360studio/rulecheck/pipeline"
	"github.com/spf13/cobra"
)

func newExtractCmd(configPath *string) *cobra.Command {
	var (
		corpusDir string
		outPath   string
		includes  []string
		excludes  []string
		workers   int
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract rules from a document corpus",
		Long: `Extract runs the loading, extraction, and normalization stages and
writes the canonical rule set as JSON.

Exit codes: 0 on success, 1 when zero rules were extracted, 2 when the
corpus root is unreadable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(nil).Load(*configPath)
			if err != nil {
				return exitWith(2, err)
			}
			if corpusDir != "" {
				cfg.Corpus.Path = corpusDir
			}
			if cfg.Corpus.Path == "" {
				return exitWith(2, errors.New("no corpus directory (use --corpus or corpus.path in config)"))
			}
			if len(includes) > 0 {
				cfg.Corpus.Walker.Include = includes
			}
			if len(excludes) > 0 {
				cfg.Corpus.Walker.Exclude = excludes
			}

			opts := pipeline.ExtractOptions{
				CorpusRoot: cfg.Corpus.Path,
				Walker:     cfg.Corpus.Walker,
				Extract:    cfg.Extract,
				Workers:    workers,
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			p := pipeline.New(slog.Default(), nil)
			if watch {
				return runExtractWatch(ctx, p, opts, outPath)
			}
			return runExtractOnce(ctx, p, opts, outPath)
		},
	}

	cmd.Flags().StringVar(&corpusDir, "corpus", "", "Corpus root directory")
	cmd.Flags().StringVar(&outPath, "out", "rules.json", "Output path for the rule set")
	cmd.Flags().StringArrayVar(&includes, "include", nil, "Include glob (repeatable)")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "Exclude glob (repeatable)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Extraction worker count (0 = all CPUs)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run extraction when the corpus changes")

	return cmd
}

func runExtractOnce(ctx context.Context, p *pipeline.Pipeline, opts pipeline.ExtractOptions, outPath string) error {
	ruleSet, summary, err := p.Extract(ctx, opts)
	if summary != nil {
		summary.Print(os.Stderr)
	}
	if err != nil {
		if errors.Is(err, pipeline.ErrNoRules) {
			return exitWith(1, err)
		}
		return exitWith(2, err)
	}

	if err := ruleSet.Save(outPath); err != nil {
		return exitWith(2, err)
	}
	fmt.Printf("Extracted %d rules to %s\n", len(ruleSet.Rules), outPath)
	return nil
}

// runExtractWatch runs extraction once, then again whenever the corpus
// changes, until interrupted. Failures inside the loop are logged, not
// fatal; the watcher keeps running so a broken edit can be fixed.
func runExtractWatch(ctx context.Context, p *pipeline.Pipeline, opts pipeline.ExtractOptions, outPath string) error {
	if err := runExtractWatchPass(ctx, p, opts, outPath); err != nil {
		slog.Error("Initial extraction failed", "error", err)
	}

	watcher, err := corpus.NewWatcher(opts.CorpusRoot, corpus.WatchConfig{}, slog.Default())
	if err != nil {
		return exitWith(2, err)
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		return exitWith(2, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed, ok := <-watcher.Changes():
			if !ok {
				return nil
			}
			slog.Info("Corpus changed, re-extracting", "files", len(changed))
			if err := runExtractWatchPass(ctx, p, opts, outPath); err != nil {
				slog.Error("Extraction failed", "error", err)
			}
		}
	}
}

func runExtractWatchPass(ctx context.Context, p *pipeline.Pipeline, opts pipeline.ExtractOptions, outPath string) error {
	ruleSet, summary, err := p.Extract(ctx, opts)
	if summary != nil {
		summary.Print(os.Stderr)
	}
	if err != nil {
		return err
	}
	if err := ruleSet.Save(outPath); err != nil {
		return err
	}
	slog.Info("Rule set written", "rules", len(ruleSet.Rules), "path", outPath)
	return nil
}
