package extract

import (
	"regexp"
	"strings"

	"github.com/c360studio/rulecheck/corpus"
	"github.com/c360studio/rulecheck/rules"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

// entryLine matches list-style report entries:
//
//	- RULE-007 (should, low, naming): Variable names should be descriptive.
var entryLine = regexp.MustCompile(`^\s*(?:[-*+]\s+)?(\S+)\s*\(([^)]*)\)\s*:\s*(.+)$`)

var tableDivider = regexp.MustCompile(`^[\s|:-]+$`)

// ReportExtractor parses generated extraction reports. Rows already
// declare identifier, classification, and statement, so they are
// parsed directly without obligation-marker heuristics.
//
// Two layouts are recognized: markdown pipe tables whose header names
// the columns, and list entries of the form
// "ID (kind, severity, category): statement".
type ReportExtractor struct{}

// NewReportExtractor creates the generated-report extractor.
func NewReportExtractor() *ReportExtractor {
	return &ReportExtractor{}
}

// SourceKind implements Extractor.
func (e *ReportExtractor) SourceKind() vocab.SourceKindType {
	return vocab.SourceGeneratedReport
}

// Extract parses report rows into drafts. Rows with unrecognizable
// kind declarations are emitted as unknown rather than dropped.
func (e *ReportExtractor) Extract(doc corpus.Document) (*Result, error) {
	result := &Result{}

	var header []string
	lines := strings.Split(doc.Content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			header = nil
			continue
		}

		if strings.HasPrefix(trimmed, "|") {
			cells := splitTableRow(trimmed)
			switch {
			case header == nil && isHeaderRow(cells):
				header = normalizeHeader(cells)
			case header != nil && tableDivider.MatchString(trimmed):
				// Divider between header and body.
			case header != nil:
				e.parseTableRow(header, cells, doc.RelPath, i+1, result)
			}
			continue
		}
		header = nil

		if m := entryLine.FindStringSubmatch(trimmed); m != nil {
			e.parseEntry(m[1], m[2], m[3], doc.RelPath, i+1, result)
		}
	}

	return result, nil
}

// parseTableRow maps row cells through the header column names.
func (e *ReportExtractor) parseTableRow(header, cells []string, file string, line int, result *Result) {
	row := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(cells) {
			row[name] = strings.TrimSpace(cells[i])
		}
	}

	id := firstOf(row, "id", "rule", "rule_id", "identifier")
	text := firstOf(row, "text", "statement", "description", "expectation")
	if id == "" || text == "" {
		return
	}

	kind, ok := parseKind(firstOf(row, "kind", "obligation"))
	if !ok {
		result.Ambiguities++
	}

	draft := rules.Draft{
		DeclaredID: id,
		Text:       text,
		Kind:       kind,
		Category:   firstOf(row, "category", "class"),
		Source:     vocab.SourceGeneratedReport,
		Origin:     rules.Location{File: file, Line: line},
	}
	if sev := firstOf(row, "severity"); sev != "" {
		draft.Severity = vocab.ParseSeverity(strings.ToLower(sev))
	}
	result.Drafts = append(result.Drafts, draft)
}

// parseEntry handles "ID (kind, severity, category): text" entries.
func (e *ReportExtractor) parseEntry(id, meta, text, file string, line int, result *Result) {
	parts := strings.Split(meta, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	kind := vocab.KindUnknown
	if len(parts) > 0 {
		var ok bool
		kind, ok = parseKind(parts[0])
		if !ok {
			result.Ambiguities++
		}
	}

	draft := rules.Draft{
		DeclaredID: id,
		Text:       strings.TrimSpace(text),
		Kind:       kind,
		Source:     vocab.SourceGeneratedReport,
		Origin:     rules.Location{File: file, Line: line},
	}
	if len(parts) > 1 && parts[1] != "" {
		draft.Severity = vocab.ParseSeverity(strings.ToLower(parts[1]))
	}
	if len(parts) > 2 {
		draft.Category = parts[2]
	}
	result.Drafts = append(result.Drafts, draft)
}

func parseKind(s string) (vocab.KindType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s != "" && s != string(vocab.KindUnknown) && vocab.IsValidKind(s) {
		return vocab.KindType(s), true
	}
	return vocab.KindUnknown, false
}

func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// isHeaderRow reports whether cells look like a rule-table header:
// they must name an identifier column and a statement column.
func isHeaderRow(cells []string) bool {
	var hasID, hasText bool
	for _, c := range cells {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "id", "rule", "rule_id", "identifier":
			hasID = true
		case "text", "statement", "description", "expectation":
			hasText = true
		}
	}
	return hasID && hasText
}

func normalizeHeader(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return out
}

func firstOf(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}
