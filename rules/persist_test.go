package rules

import (
	"os"
	"path/filepath"
	"testing"

	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_SaveLoad(t *testing.T) {
	rs := &RuleSet{Rules: []Rule{{
		ID:       "rule-042",
		Text:     "exports must be signed.",
		Kind:     vocab.KindMust,
		Category: "core_logic",
		Severity: vocab.SeverityHigh,
		Sources:  []vocab.SourceKindType{vocab.SourceNarrativeSpec},
		Origins:  []Location{{File: "spec.md", Line: 3}},

		CompletenessScore: 100,
	}}}

	path := filepath.Join(t.TempDir(), "out", "rules.json")
	require.NoError(t, rs.Save(path))

	loaded, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, rs.Rules, loaded.Rules)
}

func TestRuleSet_SaveDeterministic(t *testing.T) {
	rs := &RuleSet{Rules: []Rule{{
		ID:      "a",
		Text:    "a must hold.",
		Kind:    vocab.KindMust,
		Sources: []vocab.SourceKindType{vocab.SourceNarrativeSpec},
	}}}

	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.json")
	p2 := filepath.Join(dir, "two.json")
	require.NoError(t, rs.Save(p1))
	require.NoError(t, rs.Save(p2))

	b1, err := os.ReadFile(p1)
	require.NoError(t, err)
	b2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestLoadRuleSet_RejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	content := `{"rules":[
		{"rule_id":"dup","text":"a","kind":"must","sources":["narrative-spec"]},
		{"rule_id":"dup","text":"b","kind":"must","sources":["narrative-spec"]}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadRuleSet(path)
	assert.ErrorContains(t, err, "duplicate rule_id")
}

func TestLoadRuleSet_RejectsEmptySources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	content := `{"rules":[{"rule_id":"r","text":"a","kind":"must","sources":[]}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadRuleSet(path)
	assert.ErrorContains(t, err, "no sources")
}
