// Package corpus provides document loading and classification for the
// rulecheck pipeline. A corpus is a closed, finite directory tree;
// walking it is idempotent and restartable.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"

	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

// Document is one loaded corpus file ready for extraction.
type Document struct {
	// Path is the absolute file path.
	Path string `json:"path"`

	// RelPath is the path relative to the corpus root.
	RelPath string `json:"rel_path"`

	// Kind is the inferred source kind.
	Kind vocab.SourceKindType `json:"kind"`

	// Content is the file content. HTML files are converted to
	// markdown before being stored here.
	Content string `json:"content"`
}

// SkipReason classifies why a corpus file was not loaded.
type SkipReason string

const (
	// SkipUnreadable indicates the file could not be read.
	SkipUnreadable SkipReason = "unreadable"

	// SkipBinary indicates the file looks like binary data.
	SkipBinary SkipReason = "binary"

	// SkipSizeCap indicates the file exceeds the per-file size cap.
	SkipSizeCap SkipReason = "size_cap"

	// SkipCorpusCap indicates the total corpus cap was reached.
	SkipCorpusCap SkipReason = "corpus_cap"

	// SkipExcluded indicates an exclude glob matched.
	SkipExcluded SkipReason = "excluded"
)

// Skip records a file that was passed over during a walk.
// Skips are never fatal to a run; they surface in the run summary.
type Skip struct {
	Path   string     `json:"path"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// ContentHash computes a SHA-256 hex digest of content.
// Used for change suppression in watch mode.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
