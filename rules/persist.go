package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RuleSet is the persisted output of the extraction stages.
type RuleSet struct {
	// Rules is the finalized rule list, sorted by ID.
	Rules []Rule `json:"rules"`
}

// Save writes the rule set as indented JSON. Output is deterministic:
// identical rule sets serialize to identical bytes.
func (rs *RuleSet) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rule set: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write rule set: %w", err)
	}
	return nil
}

// LoadRuleSet reads a rule set from a JSON file and validates it.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}

	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rule set: %w", err)
	}

	seen := make(map[string]bool, len(rs.Rules))
	for i, r := range rs.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d has empty rule_id", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule_id %q", r.ID)
		}
		seen[r.ID] = true
		if len(r.Sources) == 0 {
			return nil, fmt.Errorf("rule %q has no sources", r.ID)
		}
	}

	return &rs, nil
}
