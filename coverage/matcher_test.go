package coverage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/rulecheck/rules"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRepoFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func scannedMatcher(t *testing.T, root string, cfg Config) *Matcher {
	t.Helper()
	m, err := NewMatcher(root, cfg, nil)
	require.NoError(t, err)
	_, err = m.Scan(context.Background())
	require.NoError(t, err)
	return m
}

func TestMatch_LiteralIdentifierCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "test/export_test.go", "func TestSigning(t *testing.T) {\n\t// verifies RULE-042\n}\n")

	m := scannedMatcher(t, root, Config{})
	rec := m.Match(rules.Rule{ID: "rule-042", Text: "exports must be signed."}, vocab.CategoryTestSuite)

	assert.True(t, rec.Found)
	assert.Equal(t, 1.0, rec.Confidence)
	require.Len(t, rec.Evidence, 1)
	assert.Equal(t, "test/export_test.go", rec.Evidence[0].File)
	assert.Equal(t, 2, rec.Evidence[0].Line)
}

func TestMatch_LiteralNeedsTokenBoundaries(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "internal/export.go", "func signRule042Extra() {}\n")

	m := scannedMatcher(t, root, Config{})
	rec := m.Match(rules.Rule{ID: "rule-042", Text: "unrelated words entirely"}, vocab.CategoryCoreLogic)

	assert.False(t, rec.Found)
	assert.Empty(t, rec.Evidence)
}

func TestMatch_SimilaritySpan(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "internal/validate.go",
		"package validate\n\n// All inputs must be\n// validated before use.\nfunc Validate() {}\n")

	m := scannedMatcher(t, root, Config{})
	rec := m.Match(rules.Rule{ID: "fp-deadbeef00000000", Text: "all inputs must be validated."}, vocab.CategoryCoreLogic)

	assert.True(t, rec.Found)
	assert.GreaterOrEqual(t, rec.Confidence, 0.6)
	require.NotEmpty(t, rec.Evidence)
	assert.Equal(t, "internal/validate.go", rec.Evidence[0].File)
}

func TestMatch_BelowThresholdNotFound(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "internal/other.go", "package other\n// nothing related lives here\n")

	m := scannedMatcher(t, root, Config{})
	rec := m.Match(rules.Rule{ID: "fp-0000000000000000", Text: "payment ledger reconciliation must balance daily."}, vocab.CategoryCoreLogic)

	assert.False(t, rec.Found)
	assert.Empty(t, rec.Evidence)
	assert.Zero(t, rec.Confidence)
}

func TestMatch_AbsentCategoryIsNotFound(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "internal/core.go", "package core\n")

	m := scannedMatcher(t, root, Config{})
	rec := m.Match(rules.Rule{ID: "rule-1", Text: "anything must hold."}, vocab.CategoryPolicyEnforcement)

	assert.False(t, rec.Found)
	assert.Equal(t, vocab.CategoryPolicyEnforcement, rec.Category)
}

func TestScan_SkipsBinaryAndOversized(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "internal/bin.dat", "\x00\x01\x02binary")
	writeRepoFile(t, root, "internal/big.go", "package big\n// padding padding padding\n")
	writeRepoFile(t, root, "internal/ok.go", "package ok\n")

	m, err := NewMatcher(root, Config{MaxFileBytes: 20}, nil)
	require.NoError(t, err)
	skips, err := m.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, skips, 2)
	reasons := map[string]bool{}
	for _, s := range skips {
		reasons[string(s.Reason)] = true
	}
	assert.True(t, reasons["binary"])
	assert.True(t, reasons["size_cap"])
}

func TestMatch_RepeatedCallsIdentical(t *testing.T) {
	// Match is read-only over the scanned state; repeated calls over
	// the same pair return identical records.
	root := t.TempDir()
	writeRepoFile(t, root, "internal/validate.go",
		"package validate\n// all inputs must be validated before use\n")

	m := scannedMatcher(t, root, Config{})
	rule := rules.Rule{ID: "fp-1111111111111111", Text: "all inputs must be validated."}

	first := m.Match(rule, vocab.CategoryCoreLogic)
	second := m.Match(rule, vocab.CategoryCoreLogic)
	assert.True(t, first.Found)
	assert.Equal(t, first, second)
}

func TestMatch_CustomRoots(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "guards/check.go", "// rule-7 enforced here\n")

	cfg := Config{Roots: map[vocab.ArtifactCategory][]string{
		vocab.CategoryPolicyEnforcement: {"guards/**"},
	}}
	m := scannedMatcher(t, root, cfg)
	rec := m.Match(rules.Rule{ID: "rule-7", Text: "guarded."}, vocab.CategoryPolicyEnforcement)

	assert.True(t, rec.Found)
	assert.Equal(t, 1.0, rec.Confidence)
}
