package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/rulecheck/coverage"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainReport(t *testing.T, n int) *Report {
	t.Helper()
	ruleList := testRules(n)
	var records []coverage.Record
	for _, r := range ruleList {
		records = append(records, recordsFor(r.ID, vocab.CategoryCoreLogic)...)
	}
	report, err := Aggregate(ruleList, records, 100)
	require.NoError(t, err)
	return report
}

func TestChain_AppendLinksPreviousHash(t *testing.T) {
	dir := t.TempDir()
	store, err := NewChainStore(dir)
	require.NoError(t, err)

	first := chainReport(t, 1)
	require.NoError(t, store.Append(first))
	assert.Empty(t, first.PreviousHash)

	second := chainReport(t, 2)
	require.NoError(t, store.Append(second))
	assert.Equal(t, first.ContentHash, second.PreviousHash)

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tip, err := store.Tip()
	require.NoError(t, err)
	assert.Equal(t, second.ContentHash, tip.ContentHash)
}

func TestChain_VerifyIntact(t *testing.T) {
	dir := t.TempDir()
	store, err := NewChainStore(dir)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Append(chainReport(t, i)))
	}

	intact, err := store.Verify()
	require.NoError(t, err)
	assert.Equal(t, 3, intact)
}

func TestChain_VerifyEmptyChain(t *testing.T) {
	store, err := NewChainStore(t.TempDir())
	require.NoError(t, err)

	intact, err := store.Verify()
	require.NoError(t, err)
	assert.Zero(t, intact)
}

func TestChain_DetectsTamperedBody(t *testing.T) {
	dir := t.TempDir()
	store, err := NewChainStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append(chainReport(t, 1)))
	require.NoError(t, store.Append(chainReport(t, 2)))

	// Flip the verdict in the first entry without updating its hash.
	path := filepath.Join(dir, "report-000001.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := strings.Replace(string(data), `"verdict": "FAIL"`, `"verdict": "PASS"`, 1)
	require.NotEqual(t, string(data), tampered)
	require.NoError(t, os.WriteFile(path, []byte(tampered), 0644))

	intact, err := store.Verify()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainIntegrity)
	assert.Zero(t, intact)

	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 1, ie.Seq)
}

func TestChain_DetectsBrokenLink(t *testing.T) {
	dir := t.TempDir()
	store, err := NewChainStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append(chainReport(t, 1)))
	require.NoError(t, store.Append(chainReport(t, 2)))

	// Remove the first entry: the second now points at a missing tip.
	require.NoError(t, os.Remove(filepath.Join(dir, "report-000001.json")))

	intact, err := store.Verify()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainIntegrity)
	assert.Zero(t, intact)
}

func TestSaveReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	require.NoError(t, SaveReport(chainReport(t, 1), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content_hash"`)
}
