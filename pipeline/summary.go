package pipeline

import (
	"fmt"
	"io"

	"github.com/c360studio/rulecheck/corpus"
)

// RunSummary accumulates recovered errors by taxonomy for one run.
// Stage-local failures never abort a run; they land here so operators
// see "N files skipped" even on a 100% PASS.
type RunSummary struct {
	LoadErrors      int `json:"load_errors"`
	BinarySkips     int `json:"binary_skips"`
	SizeCapSkips    int `json:"size_cap_skips"`
	ExcludedFiles   int `json:"excluded_files"`
	Ambiguities     int `json:"extraction_ambiguities"`
	IDCollisions    int `json:"identity_collisions"`
	DocumentsLoaded int `json:"documents_loaded"`
	RulesExtracted  int `json:"rules_extracted"`
	RecordsProduced int `json:"coverage_records"`
	EvidenceMatches int `json:"evidence_matches"`
}

// AddSkips folds walker and matcher skips into the taxonomy counters.
func (s *RunSummary) AddSkips(skips []corpus.Skip) {
	for _, skip := range skips {
		switch skip.Reason {
		case corpus.SkipUnreadable:
			s.LoadErrors++
		case corpus.SkipBinary:
			s.BinarySkips++
		case corpus.SkipSizeCap, corpus.SkipCorpusCap:
			s.SizeCapSkips++
		case corpus.SkipExcluded:
			s.ExcludedFiles++
		}
	}
}

// Print writes a human-readable summary.
func (s *RunSummary) Print(w io.Writer) {
	fmt.Fprintln(w, "Run summary:")
	fmt.Fprintf(w, "  documents loaded:       %d\n", s.DocumentsLoaded)
	fmt.Fprintf(w, "  rules extracted:        %d\n", s.RulesExtracted)
	if s.RecordsProduced > 0 {
		fmt.Fprintf(w, "  coverage records:       %d\n", s.RecordsProduced)
		fmt.Fprintf(w, "  evidence matches:       %d\n", s.EvidenceMatches)
	}
	fmt.Fprintf(w, "  load errors (skipped):  %d\n", s.LoadErrors)
	fmt.Fprintf(w, "  binary files skipped:   %d\n", s.BinarySkips)
	fmt.Fprintf(w, "  size-cap skips:         %d\n", s.SizeCapSkips)
	fmt.Fprintf(w, "  excluded files:         %d\n", s.ExcludedFiles)
	fmt.Fprintf(w, "  extraction ambiguities: %d\n", s.Ambiguities)
	fmt.Fprintf(w, "  identity collisions:    %d\n", s.IDCollisions)
}
