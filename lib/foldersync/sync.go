// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stackpad-dev/stackpad/lib/chunk"
	"github.com/stackpad-dev/stackpad/lib/vfs"
)

// Result reports one completed SyncFolder run.
type Result struct {
	// Uploaded and Downloaded count files copied in each direction.
	Uploaded   int
	Downloaded int

	// Ignored counts local files excluded by the ignore patterns.
	Ignored int

	// Conflicts lists the divergences newly detected by this run.
	// Already-pending conflicts are not repeated.
	Conflicts []Conflict

	// Errors holds one "path: reason" entry per file that failed.
	// Per-file failures do not abort the batch.
	Errors []string

	// Duration is the wall time of the run.
	Duration time.Duration
}

// SyncFolder runs one full reconciliation between the bound folder and
// the store namespace. Requires a bound folder and an initialized
// store; both missing preconditions reject the whole call. Per-file
// failures land in Result.Errors instead. Runs are serialized: a
// second call blocks until the first finishes.
func (m *Manager) SyncFolder(ctx context.Context) (*Result, error) {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	m.mu.Lock()
	folder := m.folder
	matcher := m.matcher
	cfg, namespace := m.effectiveLocked()
	pendingConflicts := make(map[string]bool, len(m.conflicts))
	for i := range m.conflicts {
		pendingConflicts[m.conflicts[i].Path] = true
	}
	m.mu.Unlock()

	if folder == "" {
		return nil, ErrNoFolder
	}
	if m.vfs.CurrentProject() == "" {
		return nil, vfs.ErrNotInitialized
	}

	started := m.clock.Now()

	scan, err := scanLocal(folder, matcher)
	if err != nil {
		return nil, &PlatformError{Message: fmt.Sprintf("scanning %s", folder), Err: err}
	}

	remoteFiles, err := m.vfs.ListFiles(ctx, vfs.ListOptions{Directory: namespace, Recursive: true})
	if err != nil {
		return nil, fmt.Errorf("listing store files under %s: %w", namespace, err)
	}
	remoteByPath := make(map[string]*vfs.File, len(remoteFiles))
	for _, file := range remoteFiles {
		relPath := strings.TrimPrefix(file.Path, namespace+"/")
		remoteByPath[relPath] = file
	}

	result := &Result{Ignored: scan.ignored}

	for relPath, local := range scan.entries {
		remote, onBoth := remoteByPath[relPath]
		if !onBoth {
			if !cfg.Direction.allowsUpload() {
				continue
			}
			if err := m.uploadLocal(ctx, namespace, local); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", relPath, err))
				continue
			}
			result.Uploaded++
			continue
		}
		if pendingConflicts[relPath] {
			// Neither side moves while a conflict is pending; the
			// next sync after resolution converges it.
			continue
		}
		if err := m.reconcilePair(ctx, namespace, cfg, local, remote, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", relPath, err))
		}
	}

	for relPath, remote := range remoteByPath {
		if _, onBoth := scan.entries[relPath]; onBoth {
			continue
		}
		if matcher.Match(relPath) || !cfg.Direction.allowsDownload() {
			continue
		}
		if err := m.downloadRemote(ctx, folder, relPath, remote); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", relPath, err))
			continue
		}
		result.Downloaded++
	}

	// Rebuild the snapshot from a fresh scan so downloads written
	// during this run are captured with their final timestamps.
	finalScan, err := scanLocal(folder, matcher)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("post-sync scan: %v", err))
		finalScan = scan
	}
	snap := snapshotFromScan(finalScan)
	if err := saveSnapshot(folder, snap); err != nil {
		m.logger.Warn("snapshot not persisted", "folder", folder, "error", err)
	}

	completed := m.clock.Now()
	result.Duration = completed.Sub(started)

	m.mu.Lock()
	m.snap = snap
	m.conflicts = append(m.conflicts, result.Conflicts...)
	m.lastSync = completed
	m.mu.Unlock()

	m.logger.Info("sync complete",
		"folder", folder,
		"namespace", namespace,
		"uploaded", result.Uploaded,
		"downloaded", result.Downloaded,
		"ignored", result.Ignored,
		"conflicts", len(result.Conflicts),
		"errors", len(result.Errors),
		"duration", result.Duration,
	)
	return result, nil
}

// reconcilePair converges one path present on both sides. Content is
// compared by checksum first: timestamp drift with identical content
// is a no-op, not a copy. Divergent content with both timestamps
// moved beyond the tolerance is a conflict (or an immediate overwrite
// under a -wins strategy); inside the tolerance the strictly newer
// side wins, gated by the direction.
func (m *Manager) reconcilePair(ctx context.Context, namespace string, cfg Config, local localEntry, remote *vfs.File, result *Result) error {
	localContent, err := os.ReadFile(local.absPath)
	if err != nil {
		return fmt.Errorf("reading local file: %w", err)
	}
	if chunk.Checksum(localContent) == remote.Hash {
		return nil
	}

	drift := absDuration(local.modTime.Sub(remote.UpdatedAt))
	if drift > cfg.TimestampTolerance {
		switch cfg.ConflictStrategy {
		case LocalWins:
			if cfg.Direction.allowsUpload() {
				if err := m.uploadLocal(ctx, namespace, local); err != nil {
					return err
				}
				result.Uploaded++
			}
			return nil
		case RemoteWins:
			if cfg.Direction.allowsDownload() {
				if err := m.downloadRemote(ctx, m.folderRoot(), local.relPath, remote); err != nil {
					return err
				}
				result.Downloaded++
			}
			return nil
		}

		remoteContent, err := m.vfs.ReadFileContent(ctx, remote.Path)
		if err != nil {
			return fmt.Errorf("reading store file: %w", err)
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Path:           local.relPath,
			LocalModified:  local.modTime,
			RemoteModified: remote.UpdatedAt,
			LocalContent:   localContent,
			RemoteContent:  remoteContent,
		})
		return nil
	}

	// Timestamps are within the tolerance: not a divergence worth
	// prompting over. The strictly newer side wins; exactly equal
	// timestamps leave both sides alone.
	switch {
	case local.modTime.After(remote.UpdatedAt) && cfg.Direction.allowsUpload():
		if err := m.uploadLocal(ctx, namespace, local); err != nil {
			return err
		}
		result.Uploaded++
	case remote.UpdatedAt.After(local.modTime) && cfg.Direction.allowsDownload():
		if err := m.downloadRemote(ctx, m.folderRoot(), local.relPath, remote); err != nil {
			return err
		}
		result.Downloaded++
	}
	return nil
}

// uploadLocal pushes one local file into the store namespace.
func (m *Manager) uploadLocal(ctx context.Context, namespace string, local localEntry) error {
	content, err := os.ReadFile(local.absPath)
	if err != nil {
		return fmt.Errorf("reading local file: %w", err)
	}
	return m.pushContent(ctx, namespace, local.relPath, content)
}

// downloadRemote writes one store file into the bound folder, carrying
// the store-side modification time onto the local file.
func (m *Manager) downloadRemote(ctx context.Context, folder, relPath string, remote *vfs.File) error {
	content, err := m.vfs.ReadFileContent(ctx, remote.Path)
	if err != nil {
		return fmt.Errorf("reading store file: %w", err)
	}
	absolute := localAbsPath(folder, relPath)
	return writeLocalFile(absolute, content, remote.UpdatedAt)
}

// folderRoot returns the bound folder path.
func (m *Manager) folderRoot() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.folder
}
