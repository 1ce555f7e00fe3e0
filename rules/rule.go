// Package rules provides the canonical rule model and the
// normalization, deduplication, and scoring stage of the pipeline.
//
// Draft rules produced by extraction are accumulated into a Set, the
// single-owner merge arena. Once Finalize runs, the resulting rules
// are immutable; later stages reference them by ID only.
package rules

import (
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

// Location is one place a rule was observed. Locations are evidence
// for debugging, never identity.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Rule is a single normative statement after normalization and merging.
type Rule struct {
	// ID is the stable identifier, unique within a run. A normalized
	// declared identifier when one exists, else a content fingerprint.
	ID string `json:"rule_id"`

	// Text is the normalized statement text.
	Text string `json:"text"`

	// Kind is the obligation strength.
	Kind vocab.KindType `json:"kind"`

	// Category is a free-form classification label.
	Category string `json:"category"`

	// Severity is the violation severity.
	Severity vocab.SeverityType `json:"severity"`

	// Sources lists the source kinds the rule was observed in,
	// in canonical source-kind order. Cardinality is always >= 1.
	Sources []vocab.SourceKindType `json:"sources"`

	// Origins lists where the rule was found, ordered by source kind
	// then discovery order, without location de-duplication.
	Origins []Location `json:"origin_locations"`

	// CompletenessScore is the descriptive-metadata richness, 0-100.
	// Advisory only; it never gates coverage checking.
	CompletenessScore int `json:"completeness_score"`
}

// Draft is an unmerged rule candidate produced by an extractor.
type Draft struct {
	// DeclaredID is the identifier declared by the source, if any.
	DeclaredID string

	// Text is the raw statement text.
	Text string

	// Kind is the obligation classified during extraction.
	Kind vocab.KindType

	// Category is the classification label, possibly empty.
	Category string

	// Severity is the declared severity, possibly empty.
	Severity vocab.SeverityType

	// Source is the kind of document this draft came from.
	Source vocab.SourceKindType

	// Origin is where the draft was found.
	Origin Location
}
