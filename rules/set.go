package rules

import (
	"log/slog"
	"sort"

	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

// Set is the single-owner accumulation arena for draft rules.
// Drafts must be added in discovery order; AddAll applies the stable
// identity sort required for deterministic merging, so the result is
// independent of extraction worker completion order.
//
// A Set is not safe for concurrent use. The pipeline feeds it from a
// single-threaded reduction after the parallel extraction stage.
type Set struct {
	logger  *slog.Logger
	entries []*entry
	byID    map[string]*entry
	byFP    map[string]*entry

	// Collisions counts declared-identifier collisions where the
	// merged texts materially differed.
	Collisions int
}

type entry struct {
	declaredID       string
	fingerprints     map[string]struct{}
	text             string
	category         string
	kind             vocab.KindType
	severity         vocab.SeverityType
	severityDeclared bool
	sources          map[vocab.SourceKindType]struct{}
	origins          map[vocab.SourceKindType][]Location
}

// NewSet creates an empty merge arena.
func NewSet(logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{
		logger: logger,
		byID:   make(map[string]*entry),
		byFP:   make(map[string]*entry),
	}
}

// AddAll stable-sorts drafts by identity key and merges them into the
// arena. The stable sort preserves discovery order among drafts with
// the same identity, which keeps origin location ordering deterministic.
func (s *Set) AddAll(drafts []Draft) {
	sorted := make([]Draft, len(drafts))
	copy(sorted, drafts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return identityKey(sorted[i]) < identityKey(sorted[j])
	})
	for _, d := range sorted {
		s.add(d)
	}
}

// identityKey returns the stable sort key: the normalized declared
// identifier when present, else the content fingerprint.
func identityKey(d Draft) string {
	if id := NormalizeID(d.DeclaredID); id != "" {
		return id
	}
	return Fingerprint(d.Text, d.Category)
}

// add merges one draft into the arena.
//
// Two drafts are the same rule if their declared identifiers match
// after normalization, or if at least one side declared no identifier
// and their (normalized text, category) fingerprints match.
func (s *Set) add(d Draft) {
	id := NormalizeID(d.DeclaredID)
	fp := Fingerprint(d.Text, d.Category)

	var e *entry
	switch {
	case id != "":
		if existing, ok := s.byID[id]; ok {
			e = existing
			if NormalizeText(existing.text) != NormalizeText(d.Text) {
				s.Collisions++
				s.logger.Warn("Identifier collision with differing text, merging",
					"rule_id", id,
					"file", d.Origin.File,
					"line", d.Origin.Line)
			}
		} else if existing, ok := s.byFP[fp]; ok && existing.declaredID == "" {
			// An identifier-less draft with matching content claimed
			// this fingerprint first; adopt the declared identifier.
			e = existing
			e.declaredID = id
			s.byID[id] = e
		}
	default:
		if existing, ok := s.byFP[fp]; ok {
			e = existing
		}
	}

	if e == nil {
		e = &entry{
			declaredID:   id,
			fingerprints: make(map[string]struct{}),
			text:         d.Text,
			category:     d.Category,
			kind:         vocab.KindUnknown,
			severity:     vocab.SeverityMedium,
			sources:      make(map[vocab.SourceKindType]struct{}),
			origins:      make(map[vocab.SourceKindType][]Location),
		}
		s.entries = append(s.entries, e)
		if id != "" {
			s.byID[id] = e
		}
	}

	e.fingerprints[fp] = struct{}{}
	s.byFP[fp] = e

	if e.category == "" {
		e.category = d.Category
	}
	e.kind = vocab.StricterKind(e.kind, d.Kind)
	// Severity max runs over declared severities only. The medium
	// default filled in for undeclared rules never enters the max, so
	// a lone declared low stays low rather than being raised to medium.
	if d.Severity != "" {
		if e.severityDeclared {
			e.severity = vocab.MaxSeverity(e.severity, d.Severity)
		} else {
			e.severity = d.Severity
			e.severityDeclared = true
		}
	}
	e.sources[d.Source] = struct{}{}
	e.origins[d.Source] = append(e.origins[d.Source], d.Origin)
}

// Finalize produces the immutable, sorted rule list. Rules are ordered
// by ID ascending so repeated runs over unchanged input emit
// byte-identical output.
func (s *Set) Finalize() []Rule {
	out := make([]Rule, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.toRule())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (e *entry) toRule() Rule {
	id := e.declaredID
	if id == "" {
		id = Fingerprint(e.text, e.category)
	}

	var sources []vocab.SourceKindType
	var origins []Location
	for _, kind := range vocab.SourceKindOrder {
		if _, ok := e.sources[kind]; ok {
			sources = append(sources, kind)
		}
		origins = append(origins, e.origins[kind]...)
	}

	r := Rule{
		ID:       id,
		Text:     NormalizeText(e.text),
		Kind:     e.kind,
		Category: e.category,
		Severity: e.severity,
		Sources:  sources,
		Origins:  origins,
	}
	r.CompletenessScore = score(r, e.severityDeclared)
	return r
}
