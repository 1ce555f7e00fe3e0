// Package coverage matches rules against implementation evidence in a
// target repository. Matching is a pure, stateless scan: the same rule
// set and repository always produce identical coverage records.
package coverage

import (
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

// Evidence is one location where matching text was found.
type Evidence struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Record is the result of matching one rule against one artifact
// category. Exactly one record exists per (rule, category) pair and it
// is never mutated after creation.
type Record struct {
	RuleID     string                 `json:"rule_id"`
	Category   vocab.ArtifactCategory `json:"category"`
	Found      bool                   `json:"found"`
	Evidence   []Evidence             `json:"evidence_locations"`
	Confidence float64                `json:"match_confidence"`
}
