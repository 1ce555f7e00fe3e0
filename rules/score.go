package rules

import (
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

// pointsPerField is the score contribution of each descriptive field.
const pointsPerField = 20

// score computes the completeness score for a merged rule: 20 points
// for each of text, classified kind, declared severity, category, and
// at least one origin location. The resulting banding is
// 0/20/40/60/80/100.
//
// Severity counts only when some source declared it explicitly; the
// medium default applied to undeclared severities does not score.
func score(r Rule, severityDeclared bool) int {
	total := 0
	if r.Text != "" {
		total += pointsPerField
	}
	if r.Kind != vocab.KindUnknown {
		total += pointsPerField
	}
	if severityDeclared {
		total += pointsPerField
	}
	if r.Category != "" {
		total += pointsPerField
	}
	if len(r.Origins) > 0 {
		total += pointsPerField
	}
	return total
}
