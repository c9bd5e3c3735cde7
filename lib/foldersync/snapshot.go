// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stackpad-dev/stackpad/lib/codec"
)

// sidecarDir is the per-folder metadata directory stackpad maintains
// inside a bound folder. Always ignored by the scanner.
const sidecarDir = ".stackpad"

// snapshotFile is the persisted snapshot location within sidecarDir.
const snapshotFile = "snapshot.cbor"

// snapshotEntry records what the last successful scan saw for one
// local file. Size plus modification time is enough for the cheap
// change-detection pass; content comparison belongs to the full sync.
type snapshotEntry struct {
	Size    int64     `cbor:"size"`
	ModTime time.Time `cbor:"modTime"`
}

// snapshot maps folder-relative path to the last observed entry.
type snapshot map[string]snapshotEntry

// fromScan rebuilds the snapshot from a completed scan.
func snapshotFromScan(scan *scanResult) snapshot {
	snap := make(snapshot, len(scan.entries))
	for path, entry := range scan.entries {
		snap[path] = snapshotEntry{Size: entry.size, ModTime: entry.modTime}
	}
	return snap
}

// changedSince reports whether the scan differs from the snapshot:
// a new path, a removed path, a size change, or a modification-time
// drift beyond tolerance.
func (s snapshot) changedSince(scan *scanResult, tolerance time.Duration) bool {
	for path, entry := range scan.entries {
		previous, ok := s[path]
		if !ok {
			return true
		}
		if previous.Size != entry.size {
			return true
		}
		if absDuration(entry.modTime.Sub(previous.ModTime)) > tolerance {
			return true
		}
	}
	for path := range s {
		if _, ok := scan.entries[path]; !ok {
			return true
		}
	}
	return false
}

// loadSnapshot reads the persisted snapshot from the folder sidecar.
// A missing file is an empty snapshot, not an error: the first sync of
// a freshly bound folder has nothing to compare against.
func loadSnapshot(folder string) (snapshot, error) {
	data, err := os.ReadFile(filepath.Join(folder, sidecarDir, snapshotFile))
	if os.IsNotExist(err) {
		return snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap snapshot
	if err := codec.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap == nil {
		snap = snapshot{}
	}
	return snap, nil
}

// saveSnapshot persists the snapshot into the folder sidecar with an
// atomic replace.
func saveSnapshot(folder string, snap snapshot) error {
	data, err := codec.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return writeLocalFile(filepath.Join(folder, sidecarDir, snapshotFile), data, time.Time{})
}

// absDuration returns the magnitude of d.
func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
