// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stackpad-dev/stackpad/lib/clock"
	"github.com/stackpad-dev/stackpad/lib/ignore"
	"github.com/stackpad-dev/stackpad/lib/pathutil"
	"github.com/stackpad-dev/stackpad/lib/vfs"
)

// DefaultNamespace is the store subtree a sync session reconciles
// against when neither the Options nor the folder overrides name one.
const DefaultNamespace = "edge-functions"

// VFS is the slice of the store manager's API the sync engine drives.
// *vfs.Manager satisfies it; tests substitute doubles.
type VFS interface {
	CurrentProject() string
	CreateFile(ctx context.Context, path string, opts vfs.CreateOptions) (*vfs.File, error)
	UpdateFile(ctx context.Context, path string, update vfs.Update) (*vfs.File, error)
	ReadFile(ctx context.Context, path string) (*vfs.File, error)
	ReadFileContent(ctx context.Context, path string) ([]byte, error)
	ListFiles(ctx context.Context, opts vfs.ListOptions) ([]*vfs.File, error)
}

// Options configures a Manager. VFS is required; the rest default.
type Options struct {
	// VFS is the virtual file store to reconcile against. Required.
	VFS VFS

	// Namespace is the store subtree holding the synced files.
	// Defaults to DefaultNamespace; folder overrides can pin a
	// different one per folder.
	Namespace string

	// Config is the initial sync configuration. Zero fields default.
	Config Config

	// Clock supplies timestamps and the watch ticker. Defaults to
	// clock.Real().
	Clock clock.Clock

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// Manager owns one folder sync session: the bound local folder, the
// runtime configuration, the snapshot of the last successful scan, and
// the pending conflict list. Construct with NewManager; one long-lived
// instance serves the whole process.
//
// Manager is safe for concurrent use. SyncFolder runs are serialized
// by an internal guard so an overlapping watcher tick cannot corrupt
// the conflict list or the snapshot.
type Manager struct {
	vfs       VFS
	namespace string
	clock     clock.Clock
	logger    *slog.Logger

	// syncMu serializes SyncFolder runs.
	syncMu sync.Mutex

	mu        sync.Mutex
	base      Config           // session configuration before overrides
	overrides *folderOverrides // folder-level overrides, nil until bound
	matcher   *ignore.Matcher  // compiled from the effective ignore list
	folder    string           // absolute bound folder path, "" when unbound
	snap      snapshot
	conflicts []Conflict
	lastSync  time.Time
	pending   int // syncs triggered by the watcher, in flight

	watching  bool
	stopWatch chan struct{}
	watchDone chan struct{}
}

// NewManager validates opts and returns an unbound Manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.VFS == nil {
		return nil, fmt.Errorf("foldersync: VFS is required")
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg := opts.Config.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("foldersync: %w", err)
	}
	return &Manager{
		vfs:       opts.VFS,
		namespace: namespace,
		clock:     clk,
		logger:    logger,
		base:      cfg,
		matcher:   ignore.New(cfg.IgnorePatterns),
		snap:      snapshot{},
	}, nil
}

// BindFolder grants the session access to a local directory. An empty
// path means the user declined: returns (false, nil), a clean
// non-error outcome. A path that does not exist or is not a directory
// fails with a *PlatformError. On success the folder's persisted
// snapshot and `.stackpad/config.jsonc` overrides are loaded, and the
// session transitions from unbound to bound-idle.
func (m *Manager) BindFolder(path string) (bool, error) {
	if path == "" {
		return false, nil
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return false, &PlatformError{Message: fmt.Sprintf("resolving %s", path), Err: err}
	}
	info, err := os.Stat(absolute)
	if os.IsNotExist(err) {
		return false, &PlatformError{Message: fmt.Sprintf("folder does not exist: %s", absolute)}
	}
	if err != nil {
		return false, &PlatformError{Message: fmt.Sprintf("accessing %s", absolute), Err: err}
	}
	if !info.IsDir() {
		return false, &PlatformError{Message: fmt.Sprintf("not a directory: %s", absolute)}
	}

	overrides, err := loadOverrides(absolute)
	if err != nil {
		return false, &PlatformError{Message: fmt.Sprintf("loading overrides for %s", absolute), Err: err}
	}
	snap, err := loadSnapshot(absolute)
	if err != nil {
		// A corrupt snapshot only costs one extra full sync. Start
		// fresh rather than refusing the bind.
		m.logger.Warn("discarding unreadable snapshot", "folder", absolute, "error", err)
		snap = snapshot{}
	}

	m.mu.Lock()
	m.folder = absolute
	m.overrides = overrides
	m.snap = snap
	m.recompileMatcherLocked()
	m.mu.Unlock()

	m.logger.Info("folder bound", "folder", absolute, "overrides", overrides != nil)
	return true, nil
}

// Config returns the effective configuration: the session settings
// with any folder-level overrides applied.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, _ := m.overrides.apply(m.base)
	return cfg
}

// SetConfig replaces the session configuration. Zero fields take
// defaults; the ignore matcher is recompiled. A sync already in flight
// keeps the configuration it started with.
func (m *Manager) SetConfig(cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return &vfs.ValidationError{Message: err.Error()}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = cfg
	m.recompileMatcherLocked()
	return nil
}

// recompileMatcherLocked rebuilds the ignore matcher from the
// effective pattern list. Caller holds mu.
func (m *Manager) recompileMatcherLocked() {
	cfg, _ := m.overrides.apply(m.base)
	m.matcher = ignore.New(cfg.IgnorePatterns)
}

// effectiveLocked returns the effective configuration and namespace.
// Caller holds mu.
func (m *Manager) effectiveLocked() (Config, string) {
	cfg, namespace := m.overrides.apply(m.base)
	if namespace == "" {
		namespace = m.namespace
	}
	return cfg, namespace
}

// Status is a point-in-time report of the session.
type Status struct {
	// Bound reports whether a folder is bound; Folder is its
	// absolute path when it is.
	Bound  bool
	Folder string

	// Watching reports whether the periodic change-detection pass is
	// running.
	Watching bool

	// LastSync is the completion time of the most recent SyncFolder,
	// zero before the first one.
	LastSync time.Time

	// PendingChanges counts watcher-triggered syncs currently in
	// flight.
	PendingChanges int

	// Conflicts is a copy of the pending conflict list.
	Conflicts []Conflict
}

// Status reports the session state. The conflict list is copied;
// mutating it does not affect the Manager.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	conflicts := make([]Conflict, len(m.conflicts))
	for i := range m.conflicts {
		conflicts[i] = m.conflicts[i].clone()
	}
	return Status{
		Bound:          m.folder != "",
		Folder:         m.folder,
		Watching:       m.watching,
		LastSync:       m.lastSync,
		PendingChanges: m.pending,
		Conflicts:      conflicts,
	}
}

// ResolveConflict settles the pending conflict at path. ResolveLocal
// pushes the local content to the store; ResolveRemote writes the
// store content over the local file; ResolveMerge requires merged
// content and writes it to both sides. The conflict is removed from
// the pending list. Fails with a *vfs.ValidationError for an unknown
// path, an unknown resolution, or a merge without content.
func (m *Manager) ResolveConflict(ctx context.Context, path string, resolution Resolution, merged []byte) error {
	m.mu.Lock()
	folder := m.folder
	_, namespace := m.effectiveLocked()
	index := -1
	for i := range m.conflicts {
		if m.conflicts[i].Path == path {
			index = i
			break
		}
	}
	if index < 0 {
		m.mu.Unlock()
		return &vfs.ValidationError{Message: fmt.Sprintf("no pending conflict for %s", path)}
	}
	conflict := m.conflicts[index].clone()
	m.mu.Unlock()

	var localContent, remoteContent []byte
	switch resolution {
	case ResolveLocal:
		localContent, remoteContent = conflict.LocalContent, conflict.LocalContent
	case ResolveRemote:
		localContent, remoteContent = conflict.RemoteContent, conflict.RemoteContent
	case ResolveMerge:
		if merged == nil {
			return &vfs.ValidationError{Message: "merge resolution requires merged content"}
		}
		localContent, remoteContent = merged, merged
	default:
		return &vfs.ValidationError{Message: fmt.Sprintf("unknown conflict resolution %q", resolution)}
	}

	// The store copy is always updated so both sides settle on the
	// chosen content; leaving the store stale would re-detect the
	// same divergence on the next sync.
	if err := m.pushContent(ctx, namespace, path, remoteContent); err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if resolution != ResolveLocal {
		absolute := localAbsPath(folder, path)
		if err := writeLocalFile(absolute, localContent, m.clock.Now()); err != nil {
			return fmt.Errorf("resolving %s: %w", path, err)
		}
	}

	m.mu.Lock()
	for i := range m.conflicts {
		if m.conflicts[i].Path == path {
			m.conflicts = append(m.conflicts[:i], m.conflicts[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.logger.Info("conflict resolved", "path", path, "resolution", string(resolution))
	return nil
}

// pushContent creates or updates the store file backing the
// folder-relative path.
func (m *Manager) pushContent(ctx context.Context, namespace, relPath string, content []byte) error {
	storePath := pathutil.Join(namespace, relPath)
	existing, err := m.vfs.ReadFile(ctx, storePath)
	if err != nil {
		return err
	}
	if existing == nil {
		_, err = m.vfs.CreateFile(ctx, storePath, vfs.CreateOptions{Content: content})
		return err
	}
	_, err = m.vfs.UpdateFile(ctx, storePath, vfs.Update{Content: content})
	return err
}
