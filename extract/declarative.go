package extract

import (
	"fmt"
	"strings"

	"github.com/c360studio/rulecheck/corpus"
	"github.com/c360studio/rulecheck/rules"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
	"gopkg.in/yaml.v3"
)

// reservedKeys are metadata fields, not rule leaves in their own right.
var reservedKeys = map[string]bool{
	"severity": true,
	"category": true,
}

// DeclarativeExtractor walks nested key/value structures and turns
// qualifying leaves into draft rules. YAML and JSON documents both
// parse through the YAML decoder.
type DeclarativeExtractor struct {
	indicators []string
}

// NewDeclarativeExtractor creates the declarative-config extractor.
func NewDeclarativeExtractor(cfg Config) *DeclarativeExtractor {
	return &DeclarativeExtractor{indicators: cfg.merged().IndicatorKeys}
}

// SourceKind implements Extractor.
func (e *DeclarativeExtractor) SourceKind() vocab.SourceKindType {
	return vocab.SourceDeclarativeConfig
}

// Extract walks the document's node tree. A leaf becomes a draft rule
// when its key matches the indicator vocabulary or its value is a
// boolean or numeric constant. The leaf key is the declared
// identifier; the dotted path and expected value form the text.
func (e *DeclarativeExtractor) Extract(doc corpus.Document) (*Result, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(doc.Content), &root); err != nil {
		return nil, fmt.Errorf("parse declarative config: %w", err)
	}

	result := &Result{}
	if len(root.Content) == 0 {
		return result, nil
	}
	e.walk(root.Content[0], nil, doc.RelPath, result)
	return result, nil
}

// walk recurses through mappings and sequences, collecting draft rules
// from qualifying scalar leaves.
func (e *DeclarativeExtractor) walk(node *yaml.Node, path []string, file string, result *Result) {
	switch node.Kind {
	case yaml.MappingNode:
		severity, category := siblingMetadata(node)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			key := keyNode.Value
			childPath := append(append([]string{}, path...), key)

			if valNode.Kind == yaml.ScalarNode {
				if reservedKeys[strings.ToLower(key)] {
					continue
				}
				if !e.qualifies(key, valNode) {
					continue
				}
				result.Drafts = append(result.Drafts, rules.Draft{
					DeclaredID: key,
					Text:       fmt.Sprintf("%s expects %s", strings.Join(childPath, "."), valNode.Value),
					Kind:       vocab.KindMust,
					Category:   leafCategory(category, path),
					Severity:   severity,
					Source:     vocab.SourceDeclarativeConfig,
					Origin:     rules.Location{File: file, Line: keyNode.Line},
				})
				continue
			}
			e.walk(valNode, childPath, file, result)
		}

	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.MappingNode || item.Kind == yaml.SequenceNode {
				e.walk(item, path, file, result)
			}
		}
	}
}

// qualifies reports whether a scalar leaf is normative: its key matches
// the indicator vocabulary, or its value is an enumerated boolean or a
// fixed numeric/percentage constant.
func (e *DeclarativeExtractor) qualifies(key string, val *yaml.Node) bool {
	lower := strings.ToLower(key)
	for _, indicator := range e.indicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	switch val.Tag {
	case "!!bool", "!!int", "!!float":
		return true
	}
	return strings.HasSuffix(strings.TrimSpace(val.Value), "%")
}

// siblingMetadata reads severity and category fields declared alongside
// the leaves of a mapping. Severity applies only to direct siblings.
func siblingMetadata(node *yaml.Node) (vocab.SeverityType, string) {
	var severity vocab.SeverityType
	var category string
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if valNode.Kind != yaml.ScalarNode {
			continue
		}
		switch strings.ToLower(keyNode.Value) {
		case "severity":
			severity = vocab.ParseSeverity(strings.ToLower(valNode.Value))
		case "category":
			category = valNode.Value
		}
	}
	return severity, category
}

// leafCategory prefers an explicit sibling category, falling back to
// the top path segment the leaf nests under.
func leafCategory(sibling string, path []string) string {
	if sibling != "" {
		return sibling
	}
	if len(path) > 0 {
		return path[0]
	}
	return ""
}
