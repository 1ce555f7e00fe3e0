package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/c360studio/rulecheck/audit"
	"github.com/c360studio/rulecheck/config"
	"github.com/c360studio/rulecheck/pipeline"
	"github.com/c360studio/rulecheck/rules"
	"github.com/spf13/cobra"
)

func newCheckCmd(configPath *string) *cobra.Command {
	var (
		rulesPath  string
		repoDir    string
		outPath    string
		threshold  float64
		chainDir   string
		metricsOut string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify rule coverage against a target repository",
		Long: `Check matches every rule against the five artifact categories of a
target repository, aggregates coverage, and appends the report to the
hash chain.

Exit codes: 0 when the verdict is PASS, 1 when FAIL, 2 on invalid input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(nil).Load(*configPath)
			if err != nil {
				return exitWith(2, err)
			}

			ruleSet, err := rules.LoadRuleSet(rulesPath)
			if err != nil {
				return exitWith(2, err)
			}
			if repoDir == "" {
				return exitWith(2, errors.New("no target repository (use --repo)"))
			}

			if !cmd.Flags().Changed("threshold") && cfg.Report.Threshold != nil {
				threshold = *cfg.Report.Threshold
			}
			if threshold < 0 || threshold > 100 {
				return exitWith(2, fmt.Errorf("threshold must be between 0 and 100, got %v", threshold))
			}
			if chainDir == "" {
				chainDir = cfg.Report.ChainDir
			}

			opts := pipeline.CheckOptions{
				RepoRoot:  repoDir,
				Matcher:   cfg.Coverage,
				Threshold: &threshold,
				ChainDir:  chainDir,
				Workers:   workers,
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			p := pipeline.New(slog.Default(), nil)
			report, summary, err := p.Check(ctx, ruleSet, opts)
			if summary != nil {
				summary.Print(os.Stderr)
			}
			if err != nil {
				return exitWith(2, err)
			}

			if outPath != "" {
				if err := audit.SaveReport(report, outPath); err != nil {
					return exitWith(2, err)
				}
			}
			if metricsOut != "" {
				if err := p.Metrics().WriteTo(metricsOut); err != nil {
					return exitWith(2, err)
				}
			}

			fmt.Printf("Coverage: %.1f%% (%d/%d rules fully covered): %s\n",
				report.OverallPercentage, report.RulesFullyCovered,
				report.TotalRules, report.Verdict)

			if report.Verdict != audit.VerdictPass {
				return exitWith(1, nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "rules.json", "Rule set JSON path")
	cmd.Flags().StringVar(&repoDir, "repo", "", "Target repository root")
	cmd.Flags().StringVar(&outPath, "out", "report.json", "Output path for the coverage report")
	cmd.Flags().Float64Var(&threshold, "threshold", pipeline.DefaultThreshold, "PASS threshold percentage")
	cmd.Flags().StringVar(&chainDir, "chain", "", "Hash chain directory (default from config)")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus text-format metrics to this file")
	cmd.Flags().IntVar(&workers, "workers", 0, "Matching worker count (0 = all CPUs)")

	return cmd
}
