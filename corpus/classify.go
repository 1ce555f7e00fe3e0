package corpus

import (
	"path/filepath"
	"regexp"
	"strings"

	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

// reportNamePattern matches generated-report naming conventions such as
// extraction-report.md, rules_report.txt, or report-2024.json.
var reportNamePattern = regexp.MustCompile(`(?i)(^|[-_.])(report|extraction)([-_.]|$)`)

// keyValueLine matches a top-level "key: value" line of structured config.
var keyValueLine = regexp.MustCompile(`^[A-Za-z0-9_.-]+\s*:`)

// Classify infers the source kind of a corpus file from its name,
// extension, and content shape.
//
// Precedence: generated-report naming conventions win over everything,
// structured extensions (yaml/yml/json) are declarative-config, and
// prose extensions are narrative-spec. Extensionless text falls back to
// a content sniff: mostly key/value lines reads as declarative-config,
// anything else as narrative-spec.
func Classify(path string, content string) vocab.SourceKindType {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	if reportNamePattern.MatchString(name) {
		return vocab.SourceGeneratedReport
	}

	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml", ".json":
		return vocab.SourceDeclarativeConfig
	case ".md", ".markdown", ".txt", ".rst", ".adoc", ".html", ".htm":
		return vocab.SourceNarrativeSpec
	}

	if looksDeclarative(content) {
		return vocab.SourceDeclarativeConfig
	}
	return vocab.SourceNarrativeSpec
}

// looksDeclarative reports whether the leading lines of content are
// predominantly key/value pairs.
func looksDeclarative(content string) bool {
	lines := strings.Split(content, "\n")
	var inspected, structured int
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		inspected++
		if keyValueLine.MatchString(trimmed) {
			structured++
		}
		if inspected >= 20 {
			break
		}
	}
	if inspected == 0 {
		return false
	}
	return structured*2 > inspected
}

// IsBinary reports whether data looks like binary content.
// Mirrors the git heuristic: a NUL byte in the leading window.
func IsBinary(data []byte) bool {
	window := data
	if len(window) > 8000 {
		window = window[:8000]
	}
	for _, b := range window {
		if b == 0 {
			return true
		}
	}
	return false
}
