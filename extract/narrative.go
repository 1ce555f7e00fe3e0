package extract

import (
	"regexp"
	"strings"

	"github.com/c360studio/rulecheck/corpus"
	"github.com/c360studio/rulecheck/rules"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

var (
	headingLine = regexp.MustCompile(`^#+\s+(.+?)\s*$`)
	bulletLead  = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]?`)

	// codeID matches an inline-code identifier prefix: `some-id`: text.
	codeID = regexp.MustCompile("^`([^`]+)`\\s*[:-]\\s*(.+)$")

	// refID matches reference-style identifiers such as RULE-042.
	refID = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,15}-\d+\b`)
)

// NarrativeExtractor scans prose line by line for sentences carrying
// obligation markers. A preceding heading supplies the category.
type NarrativeExtractor struct {
	markers []compiledMarker
}

type compiledMarker struct {
	re   *regexp.Regexp
	kind vocab.KindType
}

// NewNarrativeExtractor creates the narrative-spec extractor with the
// configured obligation vocabulary.
func NewNarrativeExtractor(cfg Config) *NarrativeExtractor {
	merged := cfg.merged()
	markers := make([]compiledMarker, 0, len(merged.Markers))
	for _, m := range merged.Markers {
		markers = append(markers, compiledMarker{
			re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(m.Term) + `\b`),
			kind: m.Kind,
		})
	}
	return &NarrativeExtractor{markers: markers}
}

// SourceKind implements Extractor.
func (e *NarrativeExtractor) SourceKind() vocab.SourceKindType {
	return vocab.SourceNarrativeSpec
}

// Extract scans the document. Each sentence containing an obligation
// marker becomes one draft; when several markers appear, the one
// occurring earliest in the sentence wins. Sentences that declare an
// identifier but match no marker are emitted with an unknown kind
// rather than dropped.
func (e *NarrativeExtractor) Extract(doc corpus.Document) (*Result, error) {
	result := &Result{}

	var category string
	inFence := false

	for i, line := range strings.Split(doc.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingLine.FindStringSubmatch(trimmed); m != nil {
			category = strings.ToLower(m[1])
			continue
		}

		text := bulletLead.ReplaceAllString(trimmed, "")
		if text == "" {
			continue
		}

		for _, sentence := range sentenceRe.FindAllString(text, -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			e.scanSentence(sentence, category, doc.RelPath, i+1, result)
		}
	}

	return result, nil
}

// scanSentence classifies one sentence and appends a draft when it is
// a rule candidate.
func (e *NarrativeExtractor) scanSentence(sentence, category, file string, line int, result *Result) {
	declaredID, body := splitDeclaredID(sentence)

	kind, matched := e.classify(body)
	if !matched && declaredID == "" {
		return
	}
	if !matched {
		kind = vocab.KindUnknown
		result.Ambiguities++
	}

	result.Drafts = append(result.Drafts, rules.Draft{
		DeclaredID: declaredID,
		Text:       body,
		Kind:       kind,
		Category:   category,
		Source:     vocab.SourceNarrativeSpec,
		Origin:     rules.Location{File: file, Line: line},
	})
}

// classify finds the obligation marker occurring earliest in the
// sentence. Returns false when no marker matches.
func (e *NarrativeExtractor) classify(sentence string) (vocab.KindType, bool) {
	best := -1
	kind := vocab.KindUnknown
	for _, m := range e.markers {
		loc := m.re.FindStringIndex(sentence)
		if loc == nil {
			continue
		}
		if best == -1 || loc[0] < best {
			best = loc[0]
			kind = m.kind
		}
	}
	return kind, best >= 0
}

// splitDeclaredID extracts a declared identifier from the sentence:
// either an inline-code prefix (`some-id`: statement) or a reference
// token such as RULE-042 anywhere in the text.
func splitDeclaredID(sentence string) (id, body string) {
	if m := codeID.FindStringSubmatch(sentence); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	if ref := refID.FindString(sentence); ref != "" {
		return ref, sentence
	}
	return "", sentence
}
