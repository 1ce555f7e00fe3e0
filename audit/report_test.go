package audit

import (
	"fmt"
	"testing"

	"github.com/c360studio/rulecheck/coverage"
	"github.com/c360studio/rulecheck/rules"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordsFor builds the full category cross product for a rule, marking
// the listed categories as found.
func recordsFor(ruleID string, found ...vocab.ArtifactCategory) []coverage.Record {
	foundSet := make(map[vocab.ArtifactCategory]bool, len(found))
	for _, c := range found {
		foundSet[c] = true
	}
	var recs []coverage.Record
	for _, cat := range vocab.AllCategories() {
		rec := coverage.Record{RuleID: ruleID, Category: cat}
		if foundSet[cat] {
			rec.Found = true
			rec.Confidence = 1.0
			rec.Evidence = []coverage.Evidence{{File: "internal/x.go", Line: 1}}
		}
		recs = append(recs, rec)
	}
	return recs
}

func testRules(n int) []rules.Rule {
	out := make([]rules.Rule, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rules.Rule{
			ID:      fmt.Sprintf("rule-%03d", i),
			Text:    fmt.Sprintf("statement %d must hold.", i),
			Kind:    vocab.KindMust,
			Sources: []vocab.SourceKindType{vocab.SourceNarrativeSpec},
		})
	}
	return out
}

func TestAggregate_PartialCoverageFails(t *testing.T) {
	// Five rules each covered in four of five categories: 80% overall,
	// zero fully covered, FAIL against the default 100 gate.
	ruleList := testRules(5)
	var records []coverage.Record
	for _, r := range ruleList {
		records = append(records, recordsFor(r.ID,
			vocab.CategoryContractDefinition,
			vocab.CategoryCoreLogic,
			vocab.CategoryPolicyEnforcement,
			vocab.CategoryCLIValidation,
		)...)
	}

	report, err := Aggregate(ruleList, records, 100)
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalRules)
	assert.Equal(t, 0, report.RulesFullyCovered)
	assert.InDelta(t, 80.0, report.OverallPercentage, 0.001)
	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Equal(t, 0, report.PerCategoryTotals[vocab.CategoryTestSuite])
	assert.Equal(t, 5, report.PerCategoryTotals[vocab.CategoryCoreLogic])
}

func TestAggregate_FullCoveragePasses(t *testing.T) {
	ruleList := testRules(2)
	var records []coverage.Record
	for _, r := range ruleList {
		records = append(records, recordsFor(r.ID, vocab.AllCategories()...)...)
	}

	report, err := Aggregate(ruleList, records, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RulesFullyCovered)
	assert.InDelta(t, 100.0, report.OverallPercentage, 0.001)
	assert.Equal(t, VerdictPass, report.Verdict)
}

func TestAggregate_ThresholdGate(t *testing.T) {
	ruleList := testRules(1)
	records := recordsFor(ruleList[0].ID,
		vocab.CategoryCoreLogic,
		vocab.CategoryTestSuite,
		vocab.CategoryContractDefinition,
		vocab.CategoryCLIValidation,
	)

	report, err := Aggregate(ruleList, records, 80)
	require.NoError(t, err)
	assert.Equal(t, VerdictPass, report.Verdict)

	report, err = Aggregate(ruleList, records, 90)
	require.NoError(t, err)
	assert.Equal(t, VerdictFail, report.Verdict)
}

func TestAggregate_MissingRecordsRejected(t *testing.T) {
	ruleList := testRules(1)
	records := recordsFor(ruleList[0].ID, vocab.CategoryCoreLogic)[:3]

	_, err := Aggregate(ruleList, records, 100)
	assert.ErrorContains(t, err, "coverage records")
}

func TestAggregate_BreakdownSortedByRuleID(t *testing.T) {
	ruleList := []rules.Rule{
		{ID: "zeta", Text: "z", Kind: vocab.KindMust, Sources: []vocab.SourceKindType{vocab.SourceNarrativeSpec}},
		{ID: "alpha", Text: "a", Kind: vocab.KindMust, Sources: []vocab.SourceKindType{vocab.SourceNarrativeSpec}},
	}
	var records []coverage.Record
	for _, r := range ruleList {
		records = append(records, recordsFor(r.ID)...)
	}

	report, err := Aggregate(ruleList, records, 100)
	require.NoError(t, err)
	require.Len(t, report.PerRuleBreakdown, 2)
	assert.Equal(t, "alpha", report.PerRuleBreakdown[0].RuleID)
	assert.Equal(t, "zeta", report.PerRuleBreakdown[1].RuleID)
}

func TestAggregate_HashDeterministic(t *testing.T) {
	// Two runs over the same inputs produce different run identities but
	// identical content hashes.
	ruleList := testRules(3)
	var records []coverage.Record
	for _, r := range ruleList {
		records = append(records, recordsFor(r.ID, vocab.CategoryCoreLogic)...)
	}

	r1, err := Aggregate(ruleList, records, 100)
	require.NoError(t, err)
	r2, err := Aggregate(ruleList, records, 100)
	require.NoError(t, err)

	assert.NotEqual(t, r1.RunID, r2.RunID)
	assert.Equal(t, r1.ContentHash, r2.ContentHash)
}

func TestComputeHash_IgnoresRunIdentity(t *testing.T) {
	ruleList := testRules(1)
	records := recordsFor(ruleList[0].ID)

	report, err := Aggregate(ruleList, records, 100)
	require.NoError(t, err)

	before := report.ComputeHash()
	report.RunID = "other"
	report.PreviousHash = "abc123"
	assert.Equal(t, before, report.ComputeHash())

	report.Threshold = 50
	assert.NotEqual(t, before, report.ComputeHash())
}

func TestAggregate_EmptyRuleList(t *testing.T) {
	report, err := Aggregate(nil, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalRules)
	assert.Equal(t, 0.0, report.OverallPercentage)
	assert.Equal(t, VerdictFail, report.Verdict)
}
