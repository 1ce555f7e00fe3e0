package extract

import (
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
)

// Marker maps an obligation term to the kind it signals.
type Marker struct {
	Term string         `yaml:"term"`
	Kind vocab.KindType `yaml:"kind"`
}

// Config holds the controlled vocabularies driving extraction.
// Both lists are pinned configuration so extraction stays deterministic
// across runs and environments.
type Config struct {
	// Markers is the obligation vocabulary scanned for in narrative
	// prose. When a sentence contains several markers, the one
	// appearing earliest wins.
	Markers []Marker `yaml:"markers"`

	// IndicatorKeys are substrings that mark a declarative-config key
	// as normative. A leaf also qualifies when its value is a boolean
	// or a numeric constant.
	IndicatorKeys []string `yaml:"indicator_keys"`
}

// DefaultConfig returns the built-in controlled vocabularies.
func DefaultConfig() Config {
	return Config{
		Markers: []Marker{
			{Term: "must", Kind: vocab.KindMust},
			{Term: "shall", Kind: vocab.KindMust},
			{Term: "never", Kind: vocab.KindNever},
			{Term: "should", Kind: vocab.KindShould},
			{Term: "may", Kind: vocab.KindMay},
		},
		IndicatorKeys: []string{
			"require", "must", "never", "should", "allow", "deny",
			"enforce", "expect", "policy", "threshold", "limit",
			"enabled", "disabled", "min", "max",
		},
	}
}

// merged returns cfg with defaults filled in for empty lists.
func (c Config) merged() Config {
	def := DefaultConfig()
	if len(c.Markers) == 0 {
		c.Markers = def.Markers
	}
	if len(c.IndicatorKeys) == 0 {
		c.IndicatorKeys = def.IndicatorKeys
	}
	return c
}
