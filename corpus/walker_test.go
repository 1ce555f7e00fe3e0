package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWalker_LexicalOrder(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "zeta.md", "Z must hold.\n")
	writeCorpusFile(t, root, "alpha.md", "A must hold.\n")
	writeCorpusFile(t, root, "docs/beta.md", "B must hold.\n")

	w, err := NewWalker(root, WalkerConfig{}, nil)
	require.NoError(t, err)

	docs, skips, err := w.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, skips)
	require.Len(t, docs, 3)

	var order []string
	for _, d := range docs {
		order = append(order, d.RelPath)
	}
	assert.Equal(t, []string{"alpha.md", "docs/beta.md", "zeta.md"}, order)
}

func TestWalker_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "a.md", "A must hold.\n")
	writeCorpusFile(t, root, "b.yaml", "require_x: true\n")

	w, err := NewWalker(root, WalkerConfig{}, nil)
	require.NoError(t, err)

	first, _, err := w.Load(context.Background())
	require.NoError(t, err)
	second, _, err := w.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWalker_IncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "spec.md", "must\n")
	writeCorpusFile(t, root, "notes.txt", "must\n")
	writeCorpusFile(t, root, "drafts/old.md", "must\n")

	w, err := NewWalker(root, WalkerConfig{
		Include: []string{"**/*.md"},
		Exclude: []string{"drafts/**"},
	}, nil)
	require.NoError(t, err)

	docs, skips, err := w.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "spec.md", docs[0].RelPath)

	require.Len(t, skips, 1)
	assert.Equal(t, SkipExcluded, skips[0].Reason)
}

func TestWalker_SkipsBinaryAndOversized(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "logo.png", "\x89PNG\x00\x00")
	writeCorpusFile(t, root, "big.md", "This document must be skipped for size.\n")
	writeCorpusFile(t, root, "ok.md", "Tiny must.\n")

	w, err := NewWalker(root, WalkerConfig{MaxFileBytes: 20}, nil)
	require.NoError(t, err)

	docs, skips, err := w.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ok.md", docs[0].RelPath)

	reasons := map[SkipReason]int{}
	for _, s := range skips {
		reasons[s.Reason]++
	}
	assert.Equal(t, 1, reasons[SkipBinary])
	assert.Equal(t, 1, reasons[SkipSizeCap])
}

func TestWalker_CorpusCap(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "a.md", "first document content\n")
	writeCorpusFile(t, root, "b.md", "second document content\n")

	w, err := NewWalker(root, WalkerConfig{MaxCorpusBytes: 30}, nil)
	require.NoError(t, err)

	docs, skips, err := w.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Len(t, skips, 1)
	assert.Equal(t, SkipCorpusCap, skips[0].Reason)
}

func TestWalker_HiddenFilesSkipped(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, ".hidden.md", "must\n")
	writeCorpusFile(t, root, ".git/config.md", "must\n")
	writeCorpusFile(t, root, "visible.md", "must\n")

	w, err := NewWalker(root, WalkerConfig{}, nil)
	require.NoError(t, err)

	docs, _, err := w.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "visible.md", docs[0].RelPath)
}

func TestWalker_ClassifiesDocuments(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "spec.md", "The service must log.\n")
	writeCorpusFile(t, root, "cfg.yaml", "require_x: true\n")
	writeCorpusFile(t, root, "extraction-report.md", "| ID | Text |\n")

	w, err := NewWalker(root, WalkerConfig{}, nil)
	require.NoError(t, err)

	docs, _, err := w.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	kinds := map[string]vocab.SourceKindType{}
	for _, d := range docs {
		kinds[d.RelPath] = d.Kind
	}
	assert.Equal(t, vocab.SourceNarrativeSpec, kinds["spec.md"])
	assert.Equal(t, vocab.SourceDeclarativeConfig, kinds["cfg.yaml"])
	assert.Equal(t, vocab.SourceGeneratedReport, kinds["extraction-report.md"])
}

func TestWalker_ConvertsHTML(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "guide.html",
		"<html><head><script>alert(1)</script></head><body><h1>Rules</h1><p>Inputs must be validated.</p></body></html>")

	w, err := NewWalker(root, WalkerConfig{}, nil)
	require.NoError(t, err)

	docs, _, err := w.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "# Rules")
	assert.Contains(t, docs[0].Content, "Inputs must be validated.")
	assert.NotContains(t, docs[0].Content, "alert")
}

func TestWalker_MissingRoot(t *testing.T) {
	_, err := NewWalker(filepath.Join(t.TempDir(), "absent"), WalkerConfig{}, nil)
	assert.Error(t, err)
}

func TestWalker_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "a.md", "must\n")

	w, err := NewWalker(root, WalkerConfig{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = w.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
