// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// overridesFile is the optional per-folder configuration inside
// sidecarDir. JSONC so users can comment their ignore lists.
const overridesFile = "config.jsonc"

// folderOverrides are per-folder settings layered on top of the
// session Config when the folder is bound. A folder carries its own
// ignore additions and can pin the sync direction or the store
// namespace for everyone who binds it.
type folderOverrides struct {
	// Direction pins the sync direction for this folder when
	// non-empty.
	Direction string `json:"direction"`

	// Namespace overrides the store subtree this folder syncs
	// against when non-empty.
	Namespace string `json:"namespace"`

	// ExtraIgnorePatterns extends the session's ignore list.
	ExtraIgnorePatterns []string `json:"extraIgnorePatterns"`
}

// loadOverrides reads the folder-level configuration. A missing file
// means no overrides.
func loadOverrides(folder string) (*folderOverrides, error) {
	data, err := os.ReadFile(filepath.Join(folder, sidecarDir, overridesFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading folder config: %w", err)
	}

	var overrides folderOverrides
	if err := json.Unmarshal(jsonc.ToJSON(data), &overrides); err != nil {
		return nil, fmt.Errorf("parsing folder config: %w", err)
	}
	if overrides.Direction != "" {
		if _, err := ParseDirection(overrides.Direction); err != nil {
			return nil, fmt.Errorf("folder config: %w", err)
		}
	}
	return &overrides, nil
}

// apply layers the overrides onto cfg and returns the effective
// namespace (empty when the folder does not pin one).
func (o *folderOverrides) apply(cfg Config) (Config, string) {
	if o == nil {
		return cfg, ""
	}
	if o.Direction != "" {
		cfg.Direction = Direction(o.Direction)
	}
	if len(o.ExtraIgnorePatterns) > 0 {
		patterns := make([]string, 0, len(cfg.IgnorePatterns)+len(o.ExtraIgnorePatterns))
		patterns = append(patterns, cfg.IgnorePatterns...)
		patterns = append(patterns, o.ExtraIgnorePatterns...)
		cfg.IgnorePatterns = patterns
	}
	return cfg, o.Namespace
}
