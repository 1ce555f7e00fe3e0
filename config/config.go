// Package config provides configuration loading and management for
// rulecheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/c360studio/rulecheck/corpus"
	"github.com/c360studio/rulecheck/coverage"
	"github.com/c360studio/rulecheck/extract"
	vocab "github.com/c360studio/rulecheck/vocabulary/rule"
	"gopkg.in/yaml.v3"
)

// Config represents the complete rulecheck configuration.
type Config struct {
	Corpus   CorpusConfig    `yaml:"corpus"`
	Extract  extract.Config  `yaml:"extract"`
	Coverage coverage.Config `yaml:"coverage"`
	Report   ReportConfig    `yaml:"report"`
}

// CorpusConfig configures document loading.
type CorpusConfig struct {
	// Path is the corpus root directory.
	Path string `yaml:"path"`

	// Walker holds include/exclude globs and size caps.
	Walker corpus.WalkerConfig `yaml:",inline"`
}

// ReportConfig configures aggregation and the hash chain.
type ReportConfig struct {
	// Threshold is the PASS percentage (default: 100). A pointer so an
	// explicit zero survives layering; nil means unset.
	Threshold *float64 `yaml:"threshold"`

	// ChainDir is where chain records are appended.
	ChainDir string `yaml:"chain_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Walker: corpus.WalkerConfig{
				Exclude: []string{"**/node_modules/**", "**/vendor/**"},
			},
		},
		Extract:  extract.DefaultConfig(),
		Coverage: coverage.Config{Threshold: coverage.DefaultThreshold},
		Report: ReportConfig{
			Threshold: floatPtr(100),
			ChainDir:  ".rulecheck/chain",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if t := c.Report.Threshold; t != nil && (*t < 0 || *t > 100) {
		return fmt.Errorf("report.threshold must be between 0 and 100, got %v", *t)
	}
	if c.Coverage.Threshold < 0 || c.Coverage.Threshold > 1 {
		return fmt.Errorf("coverage.threshold must be between 0 and 1, got %v", c.Coverage.Threshold)
	}
	for _, m := range c.Extract.Markers {
		if m.Term == "" {
			return fmt.Errorf("extract.markers entries require a term")
		}
	}
	for cat := range c.Coverage.Roots {
		if !vocab.IsValidCategory(string(cat)) {
			return fmt.Errorf("coverage.roots has unknown category %q", cat)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file, layered over
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// parseOverlay reads a config layer without filling defaults, so only
// the fields the file actually sets override earlier layers in Merge.
func parseOverlay(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence
// for non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Corpus.Path != "" {
		c.Corpus.Path = other.Corpus.Path
	}
	if len(other.Corpus.Walker.Include) > 0 {
		c.Corpus.Walker.Include = other.Corpus.Walker.Include
	}
	if len(other.Corpus.Walker.Exclude) > 0 {
		c.Corpus.Walker.Exclude = other.Corpus.Walker.Exclude
	}
	if other.Corpus.Walker.MaxFileBytes > 0 {
		c.Corpus.Walker.MaxFileBytes = other.Corpus.Walker.MaxFileBytes
	}
	if other.Corpus.Walker.MaxCorpusBytes > 0 {
		c.Corpus.Walker.MaxCorpusBytes = other.Corpus.Walker.MaxCorpusBytes
	}

	if len(other.Extract.Markers) > 0 {
		c.Extract.Markers = other.Extract.Markers
	}
	if len(other.Extract.IndicatorKeys) > 0 {
		c.Extract.IndicatorKeys = other.Extract.IndicatorKeys
	}

	if other.Coverage.Threshold > 0 {
		c.Coverage.Threshold = other.Coverage.Threshold
	}
	if other.Coverage.MaxFileBytes > 0 {
		c.Coverage.MaxFileBytes = other.Coverage.MaxFileBytes
	}
	if len(other.Coverage.Roots) > 0 {
		c.Coverage.Roots = other.Coverage.Roots
	}

	if other.Report.Threshold != nil {
		c.Report.Threshold = other.Report.Threshold
	}
	if other.Report.ChainDir != "" {
		c.Report.ChainDir = other.Report.ChainDir
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
