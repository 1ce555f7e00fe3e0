package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultMaxFileBytes is the per-file size cap.
	DefaultMaxFileBytes = 4 << 20 // 4 MiB

	// DefaultMaxCorpusBytes is the total corpus size cap.
	DefaultMaxCorpusBytes = 256 << 20 // 256 MiB
)

// WalkerConfig configures a corpus walk.
type WalkerConfig struct {
	// Include lists doublestar glob patterns relative to the root.
	// Empty means include everything.
	Include []string `yaml:"include"`

	// Exclude lists doublestar glob patterns relative to the root.
	// Exclusion wins over inclusion.
	Exclude []string `yaml:"exclude"`

	// MaxFileBytes caps individual file size. Zero uses the default.
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// MaxCorpusBytes caps the total bytes loaded. Zero uses the default.
	MaxCorpusBytes int64 `yaml:"max_corpus_bytes"`
}

// Walker loads documents from a corpus directory tree.
// Walks are read-only and idempotent; re-walking an unchanged tree
// yields the same documents in the same order.
type Walker struct {
	root      string
	config    WalkerConfig
	converter *HTMLConverter
	logger    *slog.Logger
}

// NewWalker creates a Walker rooted at root.
// Returns an error if root does not exist or is not a directory.
func NewWalker(root string, config WalkerConfig, logger *slog.Logger) (*Walker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve corpus root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root is not a directory: %s", abs)
	}

	if config.MaxFileBytes <= 0 {
		config.MaxFileBytes = DefaultMaxFileBytes
	}
	if config.MaxCorpusBytes <= 0 {
		config.MaxCorpusBytes = DefaultMaxCorpusBytes
	}

	return &Walker{
		root:      abs,
		config:    config,
		converter: NewHTMLConverter(),
		logger:    logger,
	}, nil
}

// Root returns the absolute corpus root.
func (w *Walker) Root() string {
	return w.root
}

// Walk visits every loadable corpus document in deterministic
// (lexical path) order. Unreadable, binary, and oversized files are
// recorded as skips, never as errors. Cancellation is honored between
// files, never mid-file.
func (w *Walker) Walk(ctx context.Context, visit func(Document) error) ([]Skip, error) {
	paths, skips, err := w.listFiles()
	if err != nil {
		return skips, err
	}

	var total int64
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return skips, err
		}

		rel, _ := filepath.Rel(w.root, path)

		info, err := os.Stat(path)
		if err != nil {
			skips = append(skips, Skip{Path: rel, Reason: SkipUnreadable, Detail: err.Error()})
			w.logger.Warn("Skipping unreadable file", "path", rel, "error", err)
			continue
		}
		if info.Size() > w.config.MaxFileBytes {
			skips = append(skips, Skip{Path: rel, Reason: SkipSizeCap,
				Detail: fmt.Sprintf("%d bytes", info.Size())})
			w.logger.Warn("Skipping oversized file", "path", rel, "size", info.Size())
			continue
		}
		if total+info.Size() > w.config.MaxCorpusBytes {
			skips = append(skips, Skip{Path: rel, Reason: SkipCorpusCap})
			w.logger.Warn("Corpus size cap reached", "path", rel, "loaded_bytes", total)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			skips = append(skips, Skip{Path: rel, Reason: SkipUnreadable, Detail: err.Error()})
			w.logger.Warn("Skipping unreadable file", "path", rel, "error", err)
			continue
		}
		if IsBinary(data) {
			skips = append(skips, Skip{Path: rel, Reason: SkipBinary})
			w.logger.Debug("Skipping binary file", "path", rel)
			continue
		}
		total += info.Size()

		content := string(data)
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".html" || ext == ".htm" {
			converted, err := w.converter.Convert(data)
			if err != nil {
				skips = append(skips, Skip{Path: rel, Reason: SkipUnreadable,
					Detail: "html conversion: " + err.Error()})
				w.logger.Warn("Skipping unconvertible HTML file", "path", rel, "error", err)
				continue
			}
			content = converted
		}

		doc := Document{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Kind:    Classify(path, content),
			Content: content,
		}
		if err := visit(doc); err != nil {
			return skips, err
		}
	}

	return skips, nil
}

// Load walks the corpus and collects all documents.
func (w *Walker) Load(ctx context.Context) ([]Document, []Skip, error) {
	var docs []Document
	skips, err := w.Walk(ctx, func(doc Document) error {
		docs = append(docs, doc)
		return nil
	})
	return docs, skips, err
}

// listFiles enumerates candidate files in lexical order, applying
// include/exclude globs against root-relative slash paths.
func (w *Walker) listFiles() ([]string, []Skip, error) {
	var paths []string
	var skips []Skip

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			rel, _ := filepath.Rel(w.root, path)
			skips = append(skips, Skip{Path: rel, Reason: SkipUnreadable, Detail: err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path != w.root && strings.HasPrefix(base, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(base, ".") {
			return nil
		}

		rel, _ := filepath.Rel(w.root, path)
		relSlash := filepath.ToSlash(rel)

		if w.matchesAny(w.config.Exclude, relSlash) {
			skips = append(skips, Skip{Path: relSlash, Reason: SkipExcluded})
			return nil
		}
		if len(w.config.Include) > 0 && !w.matchesAny(w.config.Include, relSlash) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, skips, fmt.Errorf("walk corpus root: %w", err)
	}

	sort.Strings(paths)
	return paths, skips, nil
}

// matchesAny reports whether any glob pattern matches the path.
// Invalid patterns never match.
func (w *Walker) matchesAny(patterns []string, relSlash string) bool {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, relSlash)
		if err != nil {
			w.logger.Warn("Invalid glob pattern", "pattern", pattern, "error", err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
