// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// localAbsPath maps a folder-relative slash path to its on-disk
// location under the bound folder.
func localAbsPath(folder, relPath string) string {
	return filepath.Join(folder, filepath.FromSlash(relPath))
}

// writeLocalFile atomically replaces the file at absPath with content:
// write to a temp file in the same directory, then rename over the
// target. A crash mid-write leaves either the old file or the new one,
// never a truncated hybrid. When modTime is non-zero, the file's
// modification time is set to it, so a downloaded file carries the
// store-side timestamp instead of "now" and the next scan does not see
// a phantom local edit.
func writeLocalFile(absPath string, content []byte, modTime time.Time) error {
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".stackpad-sync-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()

	// CreateTemp yields 0600; carry the replaced file's mode over the
	// rename so an executable stays executable. New files get 0644.
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(absPath); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := tmpFile.Chmod(mode); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting mode of %s: %w", tmpPath, err)
	}

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, absPath); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, absPath, err)
	}
	success = true

	if !modTime.IsZero() {
		if err := os.Chtimes(absPath, modTime, modTime); err != nil {
			return fmt.Errorf("setting mtime of %s: %w", absPath, err)
		}
	}
	return nil
}
