package coverage

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
	"github.com/c360studio/rulecheck/corpus"
	"github.com/c360studio/rulecheck/rules"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

const (
	// DefaultThreshold is the token-overlap ratio a similarity match
	// must reach to count as evidence.
	DefaultThreshold = 0.6

	// DefaultMaxFileBytes caps files scanned for evidence.
	DefaultMaxFileBytes = 4 << 20

	// spanLines is the window size for contiguous text spans.
	spanLines = 3
)

// Config configures the matcher.
type Config struct {
	// Threshold is the minimum token-overlap ratio for a similarity
	// match. Zero uses the default 0.6.
	Threshold float64 `yaml:"threshold"`

	// MaxFileBytes caps individual scanned file size. Zero uses the
	// default.
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// Roots maps each artifact category to the glob patterns (relative
	// to the repository root) defining where its evidence lives.
	// Categories absent from the map use built-in conventions.
	Roots map[vocab.ArtifactCategory][]string `yaml:"roots"`
}

// DefaultRoots returns the built-in path conventions per category.
func DefaultRoots() map[vocab.ArtifactCategory][]string {
	return map[vocab.ArtifactCategory][]string{
		vocab.CategoryContractDefinition: {"api/**", "contracts/**", "schema/**", "**/*.proto"},
		vocab.CategoryCoreLogic:          {"internal/**", "pkg/**", "src/**", "lib/**"},
		vocab.CategoryPolicyEnforcement:  {"policy/**", "policies/**", "**/middleware/**", "**/enforce/**"},
		vocab.CategoryCLIValidation:      {"cmd/**", "cli/**"},
		vocab.CategoryTestSuite:          {"test/**", "tests/**", "**/*_test.go", "**/*.test.*", "**/*_spec.*"},
	}
}

// scannedFile is one candidate file loaded into memory. Line token
// sets are computed once at scan time; Match never re-tokenizes.
type scannedFile struct {
	relPath    string
	lines      []string
	lower      string
	lineTokens []map[string]struct{}
}

// Matcher scans a target repository for rule implementation evidence.
// Construct with NewMatcher, call Scan once, then Match freely; after
// Scan the matcher is read-only and safe for concurrent Match calls.
type Matcher struct {
	repoRoot string
	config   Config
	logger   *slog.Logger

	// files per category, sorted by relative path.
	files map[vocab.ArtifactCategory][]*scannedFile
}

// NewMatcher creates a matcher over the repository root.
func NewMatcher(repoRoot string, config Config, logger *slog.Logger) (*Matcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve repo root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat repo root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repo root is not a directory: %s", abs)
	}

	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	if config.MaxFileBytes <= 0 {
		config.MaxFileBytes = DefaultMaxFileBytes
	}
	defaults := DefaultRoots()
	if config.Roots == nil {
		config.Roots = defaults
	} else {
		for _, cat := range vocab.AllCategories() {
			if len(config.Roots[cat]) == 0 {
				config.Roots[cat] = defaults[cat]
			}
		}
	}

	return &Matcher{
		repoRoot: abs,
		config:   config,
		logger:   logger,
		files:    make(map[vocab.ArtifactCategory][]*scannedFile),
	}, nil
}

// Scan loads candidate files for every category. Oversized, binary,
// and unreadable files are skipped with a recorded warning.
// Cancellation is honored between files.
func (m *Matcher) Scan(ctx context.Context) ([]corpus.Skip, error) {
	var skips []corpus.Skip
	loaded := make(map[string]*scannedFile)

	err := filepath.WalkDir(m.repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == m.repoRoot {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			base := filepath.Base(path)
			if path != m.repoRoot && strings.HasPrefix(base, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, _ := filepath.Rel(m.repoRoot, path)
		relSlash := filepath.ToSlash(rel)

		categories := m.categoriesFor(relSlash)
		if len(categories) == 0 {
			return nil
		}

		sf, skip := m.loadFile(path, relSlash)
		if skip != nil {
			skips = append(skips, *skip)
			return nil
		}
		loaded[relSlash] = sf
		for _, cat := range categories {
			m.files[cat] = append(m.files[cat], sf)
		}
		return nil
	})
	if err != nil {
		return skips, fmt.Errorf("scan repository: %w", err)
	}

	for cat := range m.files {
		sort.Slice(m.files[cat], func(i, j int) bool {
			return m.files[cat][i].relPath < m.files[cat][j].relPath
		})
	}

	m.logger.Debug("Repository scan complete",
		"files", len(loaded),
		"skipped", len(skips))
	return skips, nil
}

// categoriesFor returns every category whose root globs match the path.
func (m *Matcher) categoriesFor(relSlash string) []vocab.ArtifactCategory {
	var out []vocab.ArtifactCategory
	for _, cat := range vocab.AllCategories() {
		for _, pattern := range m.config.Roots[cat] {
			ok, err := doublestar.Match(pattern, relSlash)
			if err != nil {
				continue
			}
			if ok {
				out = append(out, cat)
				break
			}
		}
	}
	return out
}

func (m *Matcher) loadFile(path, relSlash string) (*scannedFile, *corpus.Skip) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &corpus.Skip{Path: relSlash, Reason: corpus.SkipUnreadable, Detail: err.Error()}
	}
	if info.Size() > m.config.MaxFileBytes {
		m.logger.Warn("Skipping oversized file", "path", relSlash, "size", info.Size())
		return nil, &corpus.Skip{Path: relSlash, Reason: corpus.SkipSizeCap,
			Detail: fmt.Sprintf("%d bytes", info.Size())}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &corpus.Skip{Path: relSlash, Reason: corpus.SkipUnreadable, Detail: err.Error()}
	}
	if corpus.IsBinary(data) {
		return nil, &corpus.Skip{Path: relSlash, Reason: corpus.SkipBinary}
	}

	content := string(data)
	lines := strings.Split(content, "\n")
	lineTokens := make([]map[string]struct{}, len(lines))
	for i, line := range lines {
		lineTokens[i] = tokenSet(Tokenize(line))
	}
	return &scannedFile{
		relPath:    relSlash,
		lines:      lines,
		lower:      strings.ToLower(content),
		lineTokens: lineTokens,
	}, nil
}

// Match produces the coverage record for one (rule, category) pair.
// A literal identifier occurrence wins with confidence 1.0; otherwise
// the best token-overlap span at or above the threshold counts, with
// the ratio as confidence. Commented-out occurrences still count;
// recall is prioritized over precision.
func (m *Matcher) Match(rule rules.Rule, category vocab.ArtifactCategory) Record {
	record := Record{RuleID: rule.ID, Category: category}

	if evidence := m.literalMatches(rule.ID, category); len(evidence) > 0 {
		record.Found = true
		record.Confidence = 1.0
		record.Evidence = evidence
		return record
	}

	evidence, confidence := m.similarityMatches(rule.Text, category)
	if confidence >= m.config.Threshold {
		record.Found = true
		record.Confidence = confidence
		record.Evidence = evidence
	}
	return record
}

// literalMatches finds verbatim rule identifier tokens. Matching is
// case-insensitive with token boundaries on both sides, so RULE-042 in
// a file matches the normalized identifier rule-042.
func (m *Matcher) literalMatches(ruleID string, category vocab.ArtifactCategory) []Evidence {
	needle := strings.ToLower(ruleID)
	var evidence []Evidence

	for _, sf := range m.files[category] {
		if !strings.Contains(sf.lower, needle) {
			continue
		}
		for i, line := range sf.lines {
			if containsToken(strings.ToLower(line), needle) {
				evidence = append(evidence, Evidence{File: sf.relPath, Line: i + 1})
			}
		}
	}
	return evidence
}

// similarityMatches finds the best-scoring contiguous spans for the
// rule text. Candidates are ordered (confidence desc, path asc, line
// asc) so ties resolve deterministically; only spans sharing the best
// confidence are returned.
func (m *Matcher) similarityMatches(text string, category vocab.ArtifactCategory) ([]Evidence, float64) {
	ruleTokens := tokenSet(Tokenize(text))
	if len(ruleTokens) == 0 {
		return nil, 0
	}

	best := 0.0
	var evidence []Evidence

	for _, sf := range m.files[category] {
		for i := range sf.lines {
			span := make(map[string]struct{})
			for j := i; j < i+spanLines && j < len(sf.lineTokens); j++ {
				for t := range sf.lineTokens[j] {
					span[t] = struct{}{}
				}
			}
			ratio := overlapRatio(ruleTokens, span)
			if ratio < m.config.Threshold {
				continue
			}
			// Files are visited in path order and lines in order, so
			// equal-confidence evidence stays sorted (path asc, line asc).
			if ratio > best {
				best = ratio
				evidence = []Evidence{{File: sf.relPath, Line: i + 1}}
			} else if ratio == best {
				evidence = append(evidence, Evidence{File: sf.relPath, Line: i + 1})
			}
		}
	}
	return evidence, best
}

// containsToken reports whether needle occurs in line with
// non-alphanumeric characters (or boundaries) on both sides.
func containsToken(line, needle string) bool {
	for start := 0; ; {
		idx := strings.Index(line[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(needle)
		leftOK := idx == 0 || !isWordByte(line[idx-1])
		rightOK := end == len(line) || !isWordByte(line[end])
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
