// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/stackpad-dev/stackpad/lib/ignore"
	"github.com/stackpad-dev/stackpad/lib/pathutil"
)

// Config is the master configuration for stackpad. Zero values are
// filled from Default before the file is applied, so a partial config
// file is always valid as long as what it does set passes Validate.
type Config struct {
	// Store configures the SQLite-backed virtual file store.
	Store StoreConfig `yaml:"store"`

	// Sync configures the folder synchronization engine.
	Sync SyncConfig `yaml:"sync"`

	// Log configures CLI logging.
	Log LogConfig `yaml:"log"`
}

// StoreConfig configures the virtual file store.
type StoreConfig struct {
	// Path is the SQLite database file. The parent directory is
	// created on first use. Supports ${VAR} expansion.
	// Default: ${HOME}/.local/share/stackpad/store.db
	Path string `yaml:"path"`

	// Project is the project opened when --project is not given.
	Project string `yaml:"project"`

	// MaxFileSize caps a single file's content, as a human size
	// ("10MB"). Default 10MB.
	MaxFileSize string `yaml:"max_file_size"`

	// MaxProjectStorage caps the total bytes across one project's
	// files. Default 100MB.
	MaxProjectStorage string `yaml:"max_project_storage"`

	// ChunkThreshold is the content size above which files are stored
	// chunked. Default 256KB.
	ChunkThreshold string `yaml:"chunk_threshold"`

	// ChunkSize is the chunk payload size for chunked files.
	// Default 64KB.
	ChunkSize string `yaml:"chunk_size"`
}

// SyncConfig configures the folder synchronization engine.
type SyncConfig struct {
	// Direction is "bidirectional", "upload", or "download".
	Direction string `yaml:"direction"`

	// Namespace is the VFS subtree the sync engine reconciles
	// against. Default "edge-functions".
	Namespace string `yaml:"namespace"`

	// IgnorePatterns replaces the default ignore list when non-empty.
	IgnorePatterns []string `yaml:"ignore_patterns"`

	// ExtraIgnorePatterns extends whichever list is active.
	ExtraIgnorePatterns []string `yaml:"extra_ignore_patterns"`

	// AutoSync runs a full sync immediately when watching starts.
	AutoSync bool `yaml:"auto_sync"`

	// ConflictStrategy is "prompt", "local-wins", or "remote-wins".
	ConflictStrategy string `yaml:"conflict_strategy"`

	// WatchInterval is the cadence of the cheap change-detection pass
	// while watching ("2s"). Default 2s.
	WatchInterval string `yaml:"watch_interval"`

	// TimestampTolerance is the modification-time slack below which
	// two sides are considered simultaneous ("1s"). Accounts for
	// filesystem timestamp resolution. Default 1s.
	TimestampTolerance string `yaml:"timestamp_tolerance"`
}

// LogConfig configures CLI logging.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error". Default "info".
	Level string `yaml:"level"`
}

// Default returns the stock configuration. These are the effective
// settings when no config file exists; a file overrides field by field.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "stackpad")

	return &Config{
		Store: StoreConfig{
			Path:              filepath.Join(dataDir, "store.db"),
			Project:           "default",
			MaxFileSize:       "10MB",
			MaxProjectStorage: "100MB",
			ChunkThreshold:    "256KB",
			ChunkSize:         "64KB",
		},
		Sync: SyncConfig{
			Direction:          "bidirectional",
			Namespace:          "edge-functions",
			AutoSync:           true,
			ConflictStrategy:   "prompt",
			WatchInterval:      "2s",
			TimestampTolerance: "1s",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration for the CLI. A .env file in the working
// directory is applied to the environment first (missing is fine), so
// ${VAR} expansion in the config file can reference it. When path is
// empty, STACKPAD_CONFIG is consulted; when that is also unset, the
// defaults are returned without touching the filesystem.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("STACKPAD_CONFIG")
	}
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, cfg.Validate()
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. The file is
// merged over Default field by field, ${VAR} references are expanded,
// and the result is validated.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// path-valued fields.
func (c *Config) expandVariables() {
	c.Store.Path = expandVars(c.Store.Path)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors. All problems are
// reported at once via errors.Join rather than failing on the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	}
	if c.Store.Project == "" {
		errs = append(errs, fmt.Errorf("store.project is required"))
	}
	for _, field := range []struct{ name, value string }{
		{"store.max_file_size", c.Store.MaxFileSize},
		{"store.max_project_storage", c.Store.MaxProjectStorage},
		{"store.chunk_threshold", c.Store.ChunkThreshold},
		{"store.chunk_size", c.Store.ChunkSize},
	} {
		if field.value == "" {
			continue
		}
		if _, err := pathutil.ParseSize(field.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field.name, err))
		}
	}

	switch c.Sync.Direction {
	case "bidirectional", "upload", "download":
	default:
		errs = append(errs, fmt.Errorf("sync.direction must be bidirectional, upload, or download (got %q)", c.Sync.Direction))
	}
	switch c.Sync.ConflictStrategy {
	case "prompt", "local-wins", "remote-wins":
	default:
		errs = append(errs, fmt.Errorf("sync.conflict_strategy must be prompt, local-wins, or remote-wins (got %q)", c.Sync.ConflictStrategy))
	}
	if c.Sync.Namespace == "" {
		errs = append(errs, fmt.Errorf("sync.namespace is required"))
	} else if _, err := pathutil.Normalize(c.Sync.Namespace); err != nil {
		errs = append(errs, fmt.Errorf("sync.namespace: %w", err))
	}
	if _, err := parseNonNegativeDuration(c.Sync.WatchInterval); err != nil {
		errs = append(errs, fmt.Errorf("sync.watch_interval: %w", err))
	}
	if _, err := parseNonNegativeDuration(c.Sync.TimestampTolerance); err != nil {
		errs = append(errs, fmt.Errorf("sync.timestamp_tolerance: %w", err))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn, or error (got %q)", c.Log.Level))
	}

	return errors.Join(errs...)
}

func parseNonNegativeDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q is negative", s)
	}
	return d, nil
}

// Sizes returns the store size fields parsed into byte counts. Call
// only after Validate.
func (c *StoreConfig) Sizes() (maxFileSize, maxProjectStorage, chunkThreshold int64, chunkSize int, err error) {
	parse := func(s string) (int64, error) {
		if s == "" {
			return 0, nil
		}
		return pathutil.ParseSize(s)
	}
	if maxFileSize, err = parse(c.MaxFileSize); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("max_file_size: %w", err)
	}
	if maxProjectStorage, err = parse(c.MaxProjectStorage); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("max_project_storage: %w", err)
	}
	if chunkThreshold, err = parse(c.ChunkThreshold); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("chunk_threshold: %w", err)
	}
	size, err := parse(c.ChunkSize)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("chunk_size: %w", err)
	}
	return maxFileSize, maxProjectStorage, chunkThreshold, int(size), nil
}

// WatchInterval returns the parsed watch interval. Call only after
// Validate; an empty field yields zero (caller applies its default).
func (c *SyncConfig) WatchIntervalDuration() time.Duration {
	d, _ := parseNonNegativeDuration(c.WatchInterval)
	return d
}

// TimestampToleranceDuration returns the parsed timestamp tolerance.
// Call only after Validate; empty yields zero (caller default).
func (c *SyncConfig) TimestampToleranceDuration() time.Duration {
	d, _ := parseNonNegativeDuration(c.TimestampTolerance)
	return d
}

// EffectiveIgnorePatterns resolves the ignore-pattern fields into the
// final list: IgnorePatterns when set (a full replacement), else the
// stock defaults, plus any ExtraIgnorePatterns.
func (c *SyncConfig) EffectiveIgnorePatterns() []string {
	base := c.IgnorePatterns
	if len(base) == 0 {
		base = ignore.DefaultPatterns()
	}
	patterns := make([]string, 0, len(base)+len(c.ExtraIgnorePatterns))
	patterns = append(patterns, base...)
	patterns = append(patterns, c.ExtraIgnorePatterns...)
	return patterns
}
