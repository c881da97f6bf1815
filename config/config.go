// Package config loads and validates the validator's YAML configuration,
// grounded on the teacher's config/config.go but adapted to the rule/profile
// model in package rules instead of a rule-code/category taxonomy.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/transitdata/netex-validator/types"
	"gopkg.in/yaml.v3"
)

// ValidatorConfig is the complete validator configuration.
type ValidatorConfig struct {
	Validator ValidatorSettings     `yaml:"validator"`
	Rules     map[string]RuleConfig `yaml:"rules"`
	Output    OutputConfig          `yaml:"output"`
}

// ValidatorSettings contains general validator settings.
type ValidatorSettings struct {
	Profile             string  `yaml:"profile"`             // e.g. "netex-fast-v1.2"
	MaxFileSize         int64   `yaml:"maxFileSize"`         // bytes
	MaxSchemaErrors     int     `yaml:"maxSchemaErrors"`     // stop reporting XSD errors past this count
	ConcurrentFiles     int     `yaml:"concurrentFiles"`     // per-document worker pool size
	EnableCache         bool    `yaml:"enableCache"`         // enable the XSD validator cache
	CacheTimeoutMinutes int     `yaml:"cacheTimeout"`        // XSD validator cache TTL
	QuayDistanceMeters  float64 `yaml:"quayDistanceMeters"`  // stopPlaceQuayDistanceIsReasonable threshold
	SamePointDistance   float64 `yaml:"samePointDistance"`   // locationsAreReferencingTheSamePoint threshold
}

// RuleConfig overrides a single named rule.
type RuleConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Severity *types.Severity `yaml:"severity,omitempty"`
}

// OutputConfig configures result presentation.
type OutputConfig struct {
	Format          string `yaml:"format"`          // json, text
	IncludeDetails  bool   `yaml:"includeDetails"`  // include detailed location info
	GroupBySeverity bool   `yaml:"groupBySeverity"` // group output by severity
	MaxEntries      int    `yaml:"maxEntries"`      // 0 = unlimited
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *ValidatorConfig {
	return &ValidatorConfig{
		Validator: ValidatorSettings{
			Profile:             "netex-fast-v1.2",
			MaxFileSize:         100 * 1024 * 1024,
			MaxSchemaErrors:     100,
			ConcurrentFiles:     4,
			EnableCache:         true,
			CacheTimeoutMinutes: 30,
			QuayDistanceMeters:  500.0,
			SamePointDistance:   100.0,
		},
		Rules: map[string]RuleConfig{},
		Output: OutputConfig{
			Format:          "json",
			IncludeDetails:  true,
			GroupBySeverity: true,
			MaxEntries:      0,
		},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to
// DefaultConfig when configPath is empty.
func LoadConfig(configPath string) (*ValidatorConfig, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	if !filepath.IsAbs(configPath) && strings.Contains(configPath, "..") {
		return nil, fmt.Errorf("invalid config file path: %s", configPath)
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig writes c to configPath as YAML.
func (c *ValidatorConfig) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

// Validate checks the configuration for internal consistency.
func (c *ValidatorConfig) Validate() error {
	if c.Validator.MaxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be positive")
	}
	if c.Validator.MaxSchemaErrors < 0 {
		return fmt.Errorf("maxSchemaErrors cannot be negative")
	}
	if c.Validator.ConcurrentFiles <= 0 {
		return fmt.Errorf("concurrentFiles must be positive")
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output format: %s (valid: json, text)", c.Output.Format)
	}

	for name, rc := range c.Rules {
		if rc.Severity != nil && !rc.Severity.Valid() {
			return fmt.Errorf("rule %q: invalid severity override %q", name, *rc.Severity)
		}
	}

	return nil
}

// IsRuleEnabled reports whether ruleName is enabled, defaulting to true when
// no override is configured.
func (c *ValidatorConfig) IsRuleEnabled(ruleName string) bool {
	if rc, ok := c.Rules[ruleName]; ok {
		return rc.Enabled
	}
	return true
}

// GetRuleSeverity returns the effective severity for ruleName, falling back
// to defaultSeverity when no override is configured.
func (c *ValidatorConfig) GetRuleSeverity(ruleName string, defaultSeverity types.Severity) types.Severity {
	if rc, ok := c.Rules[ruleName]; ok && rc.Severity != nil {
		return *rc.Severity
	}
	return defaultSeverity
}

// RuleConfigValues returns a free-form rule config bag holding
// QuayDistanceMeters under the "distance" key. The engine does not call it.
func (c *ValidatorConfig) RuleConfigValues() map[string]interface{} {
	return map[string]interface{}{
		"distance": c.Validator.QuayDistanceMeters,
	}
}

// GenerateDefaultConfigFile writes a default configuration file to
// configPath.
func GenerateDefaultConfigFile(configPath string) error {
	return DefaultConfig().SaveConfig(configPath)
}
