// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"fmt"
	"time"

	"github.com/stackpad-dev/stackpad/lib/ignore"
)

// Direction selects which way files are allowed to flow during a sync.
type Direction string

const (
	// Bidirectional copies whichever side is missing or stale.
	Bidirectional Direction = "bidirectional"

	// Upload only pushes local files to the store; remote-only files
	// are never pulled down and remote-fresher files never overwrite
	// local ones.
	Upload Direction = "upload"

	// Download only pulls store files to the local folder; local-only
	// files are never pushed up.
	Download Direction = "download"
)

// ParseDirection converts a configuration string to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Bidirectional, Upload, Download:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown sync direction %q (want bidirectional, upload, or download)", s)
}

// allowsUpload reports whether local content may be pushed to the store.
func (d Direction) allowsUpload() bool { return d != Download }

// allowsDownload reports whether store content may be written locally.
func (d Direction) allowsDownload() bool { return d != Upload }

// Strategy selects how divergent edits are resolved.
type Strategy string

const (
	// Prompt records a Conflict and touches neither side; the caller
	// drains conflicts through ResolveConflict.
	Prompt Strategy = "prompt"

	// LocalWins pushes the local content without recording a conflict.
	LocalWins Strategy = "local-wins"

	// RemoteWins writes the store content over the local file without
	// recording a conflict.
	RemoteWins Strategy = "remote-wins"
)

// ParseStrategy converts a configuration string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Prompt, LocalWins, RemoteWins:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown conflict strategy %q (want prompt, local-wins, or remote-wins)", s)
}

// Config is the runtime configuration of one sync session. Mutable
// between syncs via Manager.SetConfig; a sync in flight keeps the
// configuration it started with.
type Config struct {
	// Direction gates which way files flow. Default Bidirectional.
	Direction Direction

	// IgnorePatterns is the glob list excluding paths from scanning
	// and upload. A path matching any pattern is ignored. Default
	// ignore.DefaultPatterns().
	IgnorePatterns []string

	// AutoSync runs one full sync immediately when watching starts.
	AutoSync bool

	// ConflictStrategy selects divergent-edit handling. Default Prompt.
	ConflictStrategy Strategy

	// WatchInterval is the cadence of the change-detection pass while
	// watching. Default 2s.
	WatchInterval time.Duration

	// TimestampTolerance is the modification-time slack below which
	// the two sides count as simultaneous. Filesystem timestamps can
	// be coarse (FAT stores 2-second resolution), so exact comparison
	// would manufacture conflicts out of storage artifacts. Default 1s.
	TimestampTolerance time.Duration
}

// DefaultConfig returns the stock sync configuration.
func DefaultConfig() Config {
	return Config{
		Direction:          Bidirectional,
		IgnorePatterns:     ignore.DefaultPatterns(),
		AutoSync:           true,
		ConflictStrategy:   Prompt,
		WatchInterval:      2 * time.Second,
		TimestampTolerance: time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Direction == "" {
		c.Direction = defaults.Direction
	}
	if c.IgnorePatterns == nil {
		c.IgnorePatterns = defaults.IgnorePatterns
	}
	if c.ConflictStrategy == "" {
		c.ConflictStrategy = defaults.ConflictStrategy
	}
	if c.WatchInterval <= 0 {
		c.WatchInterval = defaults.WatchInterval
	}
	if c.TimestampTolerance <= 0 {
		c.TimestampTolerance = defaults.TimestampTolerance
	}
	return c
}

// validate checks the enumerated fields and intervals.
func (c Config) validate() error {
	if _, err := ParseDirection(string(c.Direction)); err != nil {
		return err
	}
	if _, err := ParseStrategy(string(c.ConflictStrategy)); err != nil {
		return err
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", c.WatchInterval)
	}
	if c.TimestampTolerance < 0 {
		return fmt.Errorf("timestamp tolerance must not be negative, got %s", c.TimestampTolerance)
	}
	return nil
}
