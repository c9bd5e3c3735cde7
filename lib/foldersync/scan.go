// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/stackpad-dev/stackpad/lib/ignore"
)

// localEntry is one regular file found by a local scan.
type localEntry struct {
	// relPath is the folder-relative slash-separated path.
	relPath string

	// absPath is the on-disk location.
	absPath string

	size    int64
	modTime time.Time
}

// scanResult is the outcome of one local directory walk.
type scanResult struct {
	// entries maps relative path to entry for every non-ignored
	// regular file.
	entries map[string]localEntry

	// ignored is the number of files excluded by the ignore matcher.
	ignored int
}

// scanLocal walks root depth-first and collects every regular file.
// Ignored directories are still descended into so that each contained
// file is individually counted; pruning the walk would be faster but
// would report one ignored entry where there are many ignored files.
// Symlinks and other non-regular entries are skipped silently.
func scanLocal(root string, matcher *ignore.Matcher) (*scanResult, error) {
	result := &scanResult{entries: make(map[string]localEntry)}

	err := filepath.WalkDir(root, func(absPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", absPath, err)
		}
		if entry.IsDir() {
			// The sidecar holds stackpad's own metadata (snapshot,
			// folder overrides), never user files. It is pruned
			// unconditionally so replacing the ignore list cannot
			// cause it to sync.
			if entry.Name() == sidecarDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, absPath)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", absPath, err)
		}
		relPath := filepath.ToSlash(rel)

		if matcher.Match(relPath) {
			result.ignored++
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			// The file vanished between the directory listing and
			// the stat. Treat it as absent.
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("stating %s: %w", absPath, err)
		}

		result.entries[relPath] = localEntry{
			relPath: relPath,
			absPath: absPath,
			size:    info.Size(),
			modTime: info.ModTime(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
