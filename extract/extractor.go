// Package extract turns loaded corpus documents into draft rules.
//
// Each source kind has its own extraction strategy: a structured
// key/value walk for declarative config, an obligation-marker scan for
// narrative prose, and direct row parsing for generated reports.
// Extractors never drop a candidate statement; anything ambiguous is
// emitted with an unknown kind for manual triage.
package extract

import (
	"fmt"

	"github.com/c360studio/rulecheck/corpus"
	"github.com/c360studio/rulecheck/rules"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

// Result is the outcome of extracting one document.
type Result struct {
	// Drafts are the rule candidates found, in discovery order.
	Drafts []rules.Draft

	// Ambiguities counts statements emitted with an unknown kind
	// because their obligation could not be classified.
	Ambiguities int
}

// Extractor produces draft rules from one document.
type Extractor interface {
	// Extract scans a document and returns draft rules in discovery
	// order. Extraction is pure: the same document always yields the
	// same result.
	Extract(doc corpus.Document) (*Result, error)

	// SourceKind returns the source kind this extractor handles.
	SourceKind() vocab.SourceKindType
}

// Registry dispatches documents to the extractor for their source kind.
type Registry struct {
	extractors map[vocab.SourceKindType]Extractor
}

// NewRegistry creates a registry with the three default extractors.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{extractors: make(map[vocab.SourceKindType]Extractor)}
	r.Register(NewDeclarativeExtractor(cfg))
	r.Register(NewNarrativeExtractor(cfg))
	r.Register(NewReportExtractor())
	return r
}

// Register adds an extractor, replacing any previous one for the kind.
func (r *Registry) Register(e Extractor) {
	r.extractors[e.SourceKind()] = e
}

// Extract runs the extractor matching the document's source kind.
func (r *Registry) Extract(doc corpus.Document) (*Result, error) {
	e, ok := r.extractors[doc.Kind]
	if !ok {
		return nil, fmt.Errorf("no extractor for source kind %q", doc.Kind)
	}
	return e.Extract(doc)
}
