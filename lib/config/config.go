// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the FocusLog
// daemon.
//
// Configuration is loaded from a single YAML file specified by:
//   - FOCUSLOG_CONFIG environment variable, or
//   - --config flag passed to the daemon
//
// There are no fallbacks or automatic discovery. Every field has a
// default, so an empty file (or no file at all) yields a working
// configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "5m".
type Duration time.Duration

// UnmarshalYAML implements custom unmarshaling: yaml.v3 has no native
// duration support.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar like \"30s\", got %s", value.Tag)
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Config is the master configuration for the FocusLog daemon.
type Config struct {
	// DBPath is the SQLite database file holding activity snapshots.
	DBPath string `yaml:"db_path"`

	// LogFile receives the daemon's JSON logs, rotated by size.
	LogFile string `yaml:"log_file"`

	// LogMaxMegabytes is the size at which the log file rotates.
	LogMaxMegabytes int `yaml:"log_max_megabytes"`

	// LogBackups is the number of rotated log files kept.
	LogBackups int `yaml:"log_backups"`

	// APMPollInterval is how often the sampler reads the idle timer.
	APMPollInterval Duration `yaml:"apm_poll_interval"`

	// APMWindow is the trailing window over which ticks are counted
	// into the APM value.
	APMWindow Duration `yaml:"apm_window"`

	// SnapshotInterval is how often a snapshot row is recorded.
	SnapshotInterval Duration `yaml:"snapshot_interval"`

	// RetentionHours bounds both stored history and the queryable
	// range of the activity log.
	RetentionHours int `yaml:"retention_hours"`

	// MaxTitleLength is the cosmetic shortening threshold applied
	// before a title is stored.
	MaxTitleLength int `yaml:"max_title_length"`

	// KnownBrowsers are window-title suffixes that identify browser
	// windows for cleanup-rule matching.
	KnownBrowsers []string `yaml:"known_browsers"`

	// CleanupRules rewrite browser titles containing a keyword to a
	// clean name. An ordered list, not a map: the first matching rule
	// wins.
	CleanupRules []CleanupRule `yaml:"cleanup_rules"`

	// ForbiddenKeywords are stripped from titles (whole-word,
	// case-insensitive) during stage-1 redaction.
	ForbiddenKeywords []string `yaml:"forbidden_keywords"`

	// Rewrite configures the stage-2 privacy rewrite service.
	Rewrite RewriteConfig `yaml:"rewrite"`

	// MinBlockFraction drops rendered timeline blocks shorter than
	// this fraction of SnapshotInterval. Filters single-sample noise
	// from boundary jitter; lower it to keep brief focus switches.
	MinBlockFraction float64 `yaml:"min_block_fraction"`

	// MaxParallelRedactions bounds the redaction fan-out per timeline
	// request.
	MaxParallelRedactions int `yaml:"max_parallel_redactions"`
}

// CleanupRule rewrites a browser window title containing Keyword to
// "<CleanName> - <browser>".
type CleanupRule struct {
	Keyword   string `yaml:"keyword"`
	CleanName string `yaml:"clean_name"`
}

// RewriteConfig configures the stage-2 external text-rewrite call.
// The endpoint speaks the OpenAI chat-completions wire format, which
// Ollama serves locally.
type RewriteConfig struct {
	// Enabled turns stage 2 on. When false, redaction stops at the
	// deterministic keyword strip.
	Enabled bool `yaml:"enabled"`

	// BaseURL is the rewrite service root, e.g. http://127.0.0.1:11434.
	BaseURL string `yaml:"base_url"`

	// Model is the model name passed to the service.
	Model string `yaml:"model"`

	// Timeout bounds each rewrite call. On timeout the stage-1 text
	// is used as the final redaction.
	Timeout Duration `yaml:"timeout"`
}

// Default returns the configuration used when a field (or the whole
// file) is absent.
func Default() Config {
	return Config{
		DBPath:           "focuslog.db",
		LogFile:          "focuslog.log",
		LogMaxMegabytes:  5,
		LogBackups:       5,
		APMPollInterval:  Duration(time.Second),
		APMWindow:        Duration(time.Minute),
		SnapshotInterval: Duration(time.Minute),
		RetentionHours:   24,
		MaxTitleLength:   80,
		KnownBrowsers: []string{
			"Mozilla Firefox",
			"Google Chrome",
			"Chromium",
			"Brave",
		},
		Rewrite: RewriteConfig{
			Enabled: true,
			BaseURL: "http://127.0.0.1:11434",
			Model:   "llama3.2",
			Timeout: Duration(30 * time.Second),
		},
		MinBlockFraction:      0.5,
		MaxParallelRedactions: 4,
	}
}

// ResolvePath returns the config file path from the flag value or the
// FOCUSLOG_CONFIG environment variable, in that order. An empty result
// means "run on defaults".
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("FOCUSLOG_CONFIG")
}

// Load reads the YAML file at path, overlays it on the defaults, and
// validates the result. An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that would break the background
// loops or the timeline query.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.APMPollInterval <= 0 {
		return fmt.Errorf("apm_poll_interval must be positive, got %v", c.APMPollInterval)
	}
	if c.APMWindow <= 0 {
		return fmt.Errorf("apm_window must be positive, got %v", c.APMWindow)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot_interval must be positive, got %v", c.SnapshotInterval)
	}
	if c.RetentionHours < 1 {
		return fmt.Errorf("retention_hours must be at least 1, got %d", c.RetentionHours)
	}
	if c.MaxTitleLength < 4 {
		// Shortening emits "..." plus at least one character.
		return fmt.Errorf("max_title_length must be at least 4, got %d", c.MaxTitleLength)
	}
	if c.MinBlockFraction < 0 || c.MinBlockFraction > 1 {
		return fmt.Errorf("min_block_fraction must be in [0, 1], got %v", c.MinBlockFraction)
	}
	if c.MaxParallelRedactions < 1 {
		return fmt.Errorf("max_parallel_redactions must be at least 1, got %d", c.MaxParallelRedactions)
	}
	for i, rule := range c.CleanupRules {
		if rule.Keyword == "" || rule.CleanName == "" {
			return fmt.Errorf("cleanup_rules[%d]: keyword and clean_name are both required", i)
		}
	}
	if c.Rewrite.Enabled {
		if c.Rewrite.BaseURL == "" {
			return fmt.Errorf("rewrite.base_url required when rewrite is enabled")
		}
		if c.Rewrite.Model == "" {
			return fmt.Errorf("rewrite.model required when rewrite is enabled")
		}
		if c.Rewrite.Timeout <= 0 {
			return fmt.Errorf("rewrite.timeout must be positive, got %v", c.Rewrite.Timeout)
		}
	}
	return nil
}

// Retention returns the retention horizon as a duration.
func (c Config) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}
