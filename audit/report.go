// Package audit aggregates coverage records into tamper-evident
// reports and maintains the append-only hash chain consumed by
// external compliance tooling.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/c360studio/rulecheck/coverage"
	"github.com/c360studio/rulecheck/rules"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
	"github.com/google/uuid"
)

// Verdict is the pass/fail outcome of a coverage run.
type Verdict string

const (
	// VerdictPass means overall coverage met the threshold.
	VerdictPass Verdict = "PASS"

	// VerdictFail means overall coverage fell short.
	VerdictFail Verdict = "FAIL"
)

// RuleCoverage is the per-rule section of a report.
type RuleCoverage struct {
	RuleID          string            `json:"rule_id"`
	CategoriesFound int               `json:"categories_found"`
	FullyCovered    bool              `json:"fully_covered"`
	Records         []coverage.Record `json:"records"`
}

// Report is the aggregate output of a coverage run.
//
// ContentHash covers the canonical report body only: run identity
// fields (run_id, run_timestamp) and the chain link (previous_hash)
// are excluded, so re-running an unchanged (rules, repo) pair always
// produces the same hash. The chain is append-only; a report is never
// edited after its hash is recorded.
type Report struct {
	RunID             string                         `json:"run_id"`
	RunTimestamp      time.Time                      `json:"run_timestamp"`
	TotalRules        int                            `json:"total_rules"`
	RulesFullyCovered int                            `json:"rules_fully_covered"`
	PerCategoryTotals map[vocab.ArtifactCategory]int `json:"per_category_totals"`
	OverallPercentage float64                        `json:"overall_percentage"`
	PerRuleBreakdown  []RuleCoverage                 `json:"per_rule_breakdown"`
	Threshold         float64                        `json:"threshold"`
	Verdict           Verdict                        `json:"verdict"`
	ContentHash       string                         `json:"content_hash"`
	PreviousHash      string                         `json:"previous_hash"`
}

// canonicalBody mirrors Report minus the fields excluded from hashing.
// Field order is fixed; encoding/json emits struct fields in
// declaration order and map keys sorted, so the byte form is stable.
type canonicalBody struct {
	TotalRules        int                            `json:"total_rules"`
	RulesFullyCovered int                            `json:"rules_fully_covered"`
	PerCategoryTotals map[vocab.ArtifactCategory]int `json:"per_category_totals"`
	OverallPercentage float64                        `json:"overall_percentage"`
	PerRuleBreakdown  []RuleCoverage                 `json:"per_rule_breakdown"`
	Threshold         float64                        `json:"threshold"`
	Verdict           Verdict                        `json:"verdict"`
}

// Aggregate folds coverage records into a report. Records must cover
// exactly the (rule, category) cross product produced by the matcher.
// The threshold is a percentage; the default release gate is 100.
func Aggregate(ruleList []rules.Rule, records []coverage.Record, threshold float64) (*Report, error) {
	byRule := make(map[string][]coverage.Record)
	for _, rec := range records {
		byRule[rec.RuleID] = append(byRule[rec.RuleID], rec)
	}

	categories := vocab.AllCategories()
	perCategory := make(map[vocab.ArtifactCategory]int, len(categories))
	for _, cat := range categories {
		perCategory[cat] = 0
	}

	var breakdown []RuleCoverage
	totalFound := 0
	fullyCovered := 0

	for _, r := range ruleList {
		recs := byRule[r.ID]
		if len(recs) != len(categories) {
			return nil, fmt.Errorf("rule %q has %d coverage records, want %d",
				r.ID, len(recs), len(categories))
		}
		sort.Slice(recs, func(i, j int) bool {
			return categoryIndex(recs[i].Category) < categoryIndex(recs[j].Category)
		})

		found := 0
		for _, rec := range recs {
			if rec.Found {
				found++
				perCategory[rec.Category]++
			}
		}
		totalFound += found
		if found == len(categories) {
			fullyCovered++
		}

		breakdown = append(breakdown, RuleCoverage{
			RuleID:          r.ID,
			CategoriesFound: found,
			FullyCovered:    found == len(categories),
			Records:         recs,
		})
	}

	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].RuleID < breakdown[j].RuleID
	})

	overall := 0.0
	if len(ruleList) > 0 {
		overall = float64(totalFound) / float64(len(ruleList)*len(categories)) * 100
	}

	verdict := VerdictFail
	if overall >= threshold {
		verdict = VerdictPass
	}

	report := &Report{
		RunID:             uuid.New().String(),
		RunTimestamp:      time.Now().UTC(),
		TotalRules:        len(ruleList),
		RulesFullyCovered: fullyCovered,
		PerCategoryTotals: perCategory,
		OverallPercentage: overall,
		PerRuleBreakdown:  breakdown,
		Threshold:         threshold,
		Verdict:           verdict,
	}
	report.ContentHash = report.ComputeHash()
	return report, nil
}

// ComputeHash serializes the canonical report body and returns its
// SHA-256 hex digest.
func (r *Report) ComputeHash() string {
	body := canonicalBody{
		TotalRules:        r.TotalRules,
		RulesFullyCovered: r.RulesFullyCovered,
		PerCategoryTotals: r.PerCategoryTotals,
		OverallPercentage: r.OverallPercentage,
		PerRuleBreakdown:  r.PerRuleBreakdown,
		Threshold:         r.Threshold,
		Verdict:           r.Verdict,
	}
	// Marshal of a fixed struct cannot fail.
	data, _ := json.Marshal(body)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func categoryIndex(cat vocab.ArtifactCategory) int {
	for i, c := range vocab.AllCategories() {
		if c == cat {
			return i
		}
	}
	return len(vocab.AllCategories())
}
