// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stackpad-dev/stackpad/lib/chunk"
	"github.com/stackpad-dev/stackpad/lib/clock"
	"github.com/stackpad-dev/stackpad/lib/pathutil"
)

// Options configures a Manager. Storage is required; the rest default.
type Options struct {
	// Storage is the persistence adapter. Required.
	Storage Storage

	// Limits bounds file and project sizes. Zero fields take defaults.
	Limits Limits

	// Clock supplies timestamps. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives operational messages. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Manager is the single source of truth for file-system semantics over
// one active project. Construct with NewManager; one long-lived
// instance serves the whole process.
//
// Manager is safe for concurrent use. File operations do not lock
// against each other (two concurrent writes to the same path race with
// last-write-wins at the storage layer), but initialization and project
// switching are serialized: concurrent Initialize calls coalesce onto
// one in-flight attempt, and a switch in progress fails overlapping
// operations fast instead of queueing them.
type Manager struct {
	storage Storage
	limits  Limits
	clock   clock.Clock
	logger  *slog.Logger

	mu        sync.Mutex
	project   string      // active project id; empty until Initialize completes
	flight    *initFlight // non-nil while an initialize or switch is running
	switching bool        // true while a switch is re-binding storage
}

// initFlight is one in-flight initialization attempt. Waiters block on
// done and then read err; err is written exactly once before done is
// closed.
type initFlight struct {
	projectID string
	done      chan struct{}
	err       error
}

// NewManager validates opts and returns a Manager. The storage adapter
// is not touched until Initialize.
func NewManager(opts Options) (*Manager, error) {
	if opts.Storage == nil {
		return nil, fmt.Errorf("vfs: Storage is required")
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		storage: opts.Storage,
		limits:  opts.Limits.withDefaults(),
		clock:   clk,
		logger:  logger,
	}, nil
}

// Initialize binds the Manager to a project. Calling it again with the
// active project is a no-op; calling it with a different project
// performs a switch (see SwitchToProject). If an initialization is
// already in flight for any project, the call awaits that attempt's
// result instead of starting a second one.
func (m *Manager) Initialize(ctx context.Context, projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return validationf("project id is empty")
	}

	m.mu.Lock()
	if flight := m.flight; flight != nil {
		m.mu.Unlock()
		select {
		case <-flight.done:
		case <-ctx.Done():
			return storagef(ctx.Err(), "awaiting in-flight initialization")
		}
		if flight.err != nil {
			return flight.err
		}
		if flight.projectID == projectID {
			return nil
		}
		// The in-flight attempt bound a different project. Re-enter:
		// this call now becomes a switch.
		return m.Initialize(ctx, projectID)
	}
	if m.project == projectID {
		m.mu.Unlock()
		return nil
	}
	if m.project != "" {
		m.mu.Unlock()
		return m.SwitchToProject(ctx, projectID)
	}

	flight := &initFlight{projectID: projectID, done: make(chan struct{})}
	m.flight = flight
	m.mu.Unlock()

	err := m.storage.Initialize(ctx, projectID)
	if err != nil {
		err = storagef(err, "initializing project %s", projectID)
	}

	m.mu.Lock()
	if err == nil {
		m.project = projectID
	}
	m.flight = nil
	m.mu.Unlock()

	flight.err = err
	close(flight.done)

	if err == nil {
		m.logger.Info("vfs initialized", "project", projectID)
	}
	return err
}

// SwitchToProject atomically re-binds the Manager to a different
// project. Fails fast with ErrSwitchInProgress if a switch or an
// initialization is already running; overlapping switches would
// interleave two projects' writes. A switch to the already-active
// project is a no-op.
func (m *Manager) SwitchToProject(ctx context.Context, projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return validationf("project id is empty")
	}

	m.mu.Lock()
	if m.switching || m.flight != nil {
		m.mu.Unlock()
		return ErrSwitchInProgress
	}
	if m.project == projectID {
		m.mu.Unlock()
		return nil
	}
	previous := m.project
	flight := &initFlight{projectID: projectID, done: make(chan struct{})}
	m.flight = flight
	m.switching = true
	m.mu.Unlock()

	err := m.rebind(ctx, projectID)

	m.mu.Lock()
	if err == nil {
		m.project = projectID
	}
	m.switching = false
	m.flight = nil
	m.mu.Unlock()

	flight.err = err
	close(flight.done)

	if err == nil {
		m.logger.Info("switched project", "from", previous, "to", projectID)
	}
	return err
}

// rebind releases the current project's storage and initializes the new
// one. The active project pointer is only advanced by the caller once
// both steps succeed.
func (m *Manager) rebind(ctx context.Context, projectID string) error {
	if err := m.storage.Cleanup(ctx); err != nil {
		return storagef(err, "releasing project storage")
	}
	if err := m.storage.Initialize(ctx, projectID); err != nil {
		return storagef(err, "initializing project %s", projectID)
	}
	return nil
}

// CurrentProject returns the active project id, or "" before
// initialization.
func (m *Manager) CurrentProject() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.project
}

// Limits returns the effective limits (defaults applied).
func (m *Manager) Limits() Limits {
	return m.limits
}

// activeProject returns the project id that file operations should
// resolve against, or the state error explaining why none is available.
func (m *Manager) activeProject() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.switching {
		return "", ErrSwitchInProgress
	}
	if m.project == "" {
		return "", ErrNotInitialized
	}
	return m.project, nil
}

// CreateOptions configures CreateFile.
type CreateOptions struct {
	// Content is the initial payload. Empty is legal.
	Content []byte

	// MIMEType overrides extension-based inference when non-empty.
	MIMEType string

	// Compress asks the storage layer to persist the payload
	// gzip-compressed. Only honored for text-like MIME types; binary
	// payloads never get the marker.
	Compress bool
}

// CreateFile validates, builds, and persists a new file record. Fails
// with a *ValidationError if the path is malformed or already occupied,
// if the content exceeds the per-file size limit, or if it would push
// the project past its storage quota.
func (m *Manager) CreateFile(ctx context.Context, path string, opts CreateOptions) (*File, error) {
	project, err := m.activeProject()
	if err != nil {
		return nil, err
	}

	normalized, err := pathutil.Normalize(path)
	if err != nil {
		return nil, validationf("invalid path: %v", err)
	}

	size := int64(len(opts.Content))
	if size > m.limits.MaxFileSize {
		return nil, validationf("file size %s exceeds maximum %s",
			pathutil.FormatSize(size), pathutil.FormatSize(m.limits.MaxFileSize))
	}

	existing, err := m.storage.LoadFile(ctx, project, normalized)
	if err != nil {
		return nil, storagef(err, "checking existing file %s", normalized)
	}
	if existing != nil {
		return nil, validationf("file already exists: %s", normalized)
	}

	total, err := m.storage.TotalSize(ctx, project)
	if err != nil {
		return nil, storagef(err, "computing project size")
	}
	if total+size > m.limits.MaxProjectStorage {
		return nil, validationf("project storage quota exceeded: %s used + %s requested > %s maximum",
			pathutil.FormatSize(total), pathutil.FormatSize(size),
			pathutil.FormatSize(m.limits.MaxProjectStorage))
	}

	directory, name := pathutil.Split(normalized)
	mimeType := opts.MIMEType
	if mimeType == "" {
		mimeType = pathutil.MIMEType(name)
	}

	now := m.clock.Now().UTC()
	file := &File{
		ID:        uuid.NewString(),
		ProjectID: project,
		Path:      normalized,
		Name:      name,
		Directory: directory,
		MIMEType:  mimeType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if opts.Compress && pathutil.IsTextMIME(mimeType) {
		file.Compression = CompressionGzip
	}
	chunks := m.applyContent(file, opts.Content)

	if err := m.storage.SaveFile(ctx, project, file, chunks); err != nil {
		return nil, storagef(err, "saving file %s", normalized)
	}

	m.logger.Debug("file created",
		"project", project,
		"path", normalized,
		"size", file.Size,
		"chunked", file.Chunked,
	)
	return file.Clone(), nil
}

// ReadFile returns the record at path, or (nil, nil) if absent.
// Absence is a value, not an error.
func (m *Manager) ReadFile(ctx context.Context, path string) (*File, error) {
	project, err := m.activeProject()
	if err != nil {
		return nil, err
	}
	normalized, err := pathutil.Normalize(path)
	if err != nil {
		return nil, validationf("invalid path: %v", err)
	}
	file, err := m.storage.LoadFile(ctx, project, normalized)
	if err != nil {
		return nil, storagef(err, "loading file %s", normalized)
	}
	return file.Clone(), nil
}

// ReadFileContent returns the full logical content at path,
// reassembling chunked files. Unlike ReadFile, a missing file is an
// error here: there is no content value that means "absent".
func (m *Manager) ReadFileContent(ctx context.Context, path string) ([]byte, error) {
	project, err := m.activeProject()
	if err != nil {
		return nil, err
	}
	normalized, err := pathutil.Normalize(path)
	if err != nil {
		return nil, validationf("invalid path: %v", err)
	}
	file, err := m.storage.LoadFile(ctx, project, normalized)
	if err != nil {
		return nil, storagef(err, "loading file %s", normalized)
	}
	if file == nil {
		return nil, validationf("file not found: %s", normalized)
	}
	if !file.Chunked {
		return file.Content, nil
	}
	content, err := m.storage.LoadContent(ctx, project, file.ID)
	if err != nil {
		return nil, storagef(err, "loading content of %s", normalized)
	}
	return content, nil
}

// Update describes an UpdateFile mutation. Zero-value fields leave the
// corresponding record field unchanged.
type Update struct {
	// Content replaces the payload when non-nil. To store an empty
	// payload, pass a non-nil empty slice.
	Content []byte

	// MIMEType replaces the stored MIME type when non-empty.
	MIMEType string

	// Compress toggles the gzip storage marker when non-nil. The
	// marker is only ever set for text-like MIME types.
	Compress *bool
}

// UpdateFile mutates an existing record. Fails with a *ValidationError
// if the file does not exist or the new content exceeds the per-file
// size limit. A content change recomputes size, hash, and UpdatedAt,
// and re-evaluates the inline-versus-chunked decision from scratch; a
// file crossing the threshold in either direction changes
// representation, and chunk sets are always fully regenerated.
func (m *Manager) UpdateFile(ctx context.Context, path string, update Update) (*File, error) {
	project, err := m.activeProject()
	if err != nil {
		return nil, err
	}
	normalized, err := pathutil.Normalize(path)
	if err != nil {
		return nil, validationf("invalid path: %v", err)
	}
	file, err := m.storage.LoadFile(ctx, project, normalized)
	if err != nil {
		return nil, storagef(err, "loading file %s", normalized)
	}
	if file == nil {
		return nil, validationf("file not found: %s", normalized)
	}

	changed := false
	if update.MIMEType != "" && update.MIMEType != file.MIMEType {
		file.MIMEType = update.MIMEType
		changed = true
	}

	compress := file.Compression == CompressionGzip
	if update.Compress != nil {
		compress = *update.Compress
	}

	var chunks []chunk.Chunk
	if update.Content != nil {
		size := int64(len(update.Content))
		if size > m.limits.MaxFileSize {
			return nil, validationf("file size %s exceeds maximum %s",
				pathutil.FormatSize(size), pathutil.FormatSize(m.limits.MaxFileSize))
		}
		chunks = m.applyContent(file, update.Content)
		changed = true
	}

	// The marker is re-derived on every update: a MIME change or a
	// compress toggle can both flip it.
	marker := ""
	if compress && pathutil.IsTextMIME(file.MIMEType) {
		marker = CompressionGzip
	}
	if marker != file.Compression {
		file.Compression = marker
		changed = true
	}

	if !changed {
		return file.Clone(), nil
	}

	// SaveFile replaces the record's full chunk set on every save, so
	// a metadata-only change on a chunked record must supply the set
	// again or the save would strand the record without its chunks.
	if file.Chunked && update.Content == nil {
		content, err := m.storage.LoadContent(ctx, project, file.ID)
		if err != nil {
			return nil, storagef(err, "loading content of %s", normalized)
		}
		chunks = m.applyContent(file, content)
	}

	file.UpdatedAt = m.clock.Now().UTC()
	if err := m.storage.SaveFile(ctx, project, file, chunks); err != nil {
		return nil, storagef(err, "saving file %s", normalized)
	}

	m.logger.Debug("file updated",
		"project", project,
		"path", normalized,
		"size", file.Size,
		"chunked", file.Chunked,
	)
	return file.Clone(), nil
}

// DeleteFile removes the record at path. Reports whether a record
// existed; deleting an absent path returns (false, nil), never an
// error.
func (m *Manager) DeleteFile(ctx context.Context, path string) (bool, error) {
	project, err := m.activeProject()
	if err != nil {
		return false, err
	}
	normalized, err := pathutil.Normalize(path)
	if err != nil {
		return false, validationf("invalid path: %v", err)
	}
	existed, err := m.storage.DeleteFile(ctx, project, normalized)
	if err != nil {
		return false, storagef(err, "deleting file %s", normalized)
	}
	if existed {
		m.logger.Debug("file deleted", "project", project, "path", normalized)
	}
	return existed, nil
}

// ListFiles returns records matching opts, ordered by path. See
// ListOptions for filter semantics.
func (m *Manager) ListFiles(ctx context.Context, opts ListOptions) ([]*File, error) {
	project, err := m.activeProject()
	if err != nil {
		return nil, err
	}
	if opts.Directory != "" {
		normalized, err := pathutil.Normalize(opts.Directory)
		if err != nil {
			return nil, validationf("invalid directory: %v", err)
		}
		opts.Directory = normalized
	}
	files, err := m.storage.ListFiles(ctx, project, opts)
	if err != nil {
		return nil, storagef(err, "listing files")
	}
	return files, nil
}

// CreateDirectory returns a descriptor for a virtual directory. No row
// is persisted: directories exist only through the files under them.
func (m *Manager) CreateDirectory(ctx context.Context, path string) (*Directory, error) {
	if _, err := m.activeProject(); err != nil {
		return nil, err
	}
	normalized, err := pathutil.Normalize(path)
	if err != nil {
		return nil, validationf("invalid path: %v", err)
	}
	_, name := pathutil.Split(normalized)
	return &Directory{
		Path:      normalized,
		Name:      name,
		CreatedAt: m.clock.Now().UTC(),
	}, nil
}

// DeleteDirectory deletes every file under path. If the directory is
// non-empty and recursive is false, fails with a *ValidationError and
// deletes nothing. Returns true on completion (including for an
// already-empty directory).
func (m *Manager) DeleteDirectory(ctx context.Context, path string, recursive bool) (bool, error) {
	project, err := m.activeProject()
	if err != nil {
		return false, err
	}
	normalized, err := pathutil.Normalize(path)
	if err != nil {
		return false, validationf("invalid path: %v", err)
	}

	files, err := m.storage.ListFiles(ctx, project, ListOptions{
		Directory: normalized,
		Recursive: true,
	})
	if err != nil {
		return false, storagef(err, "listing %s", normalized)
	}
	if len(files) > 0 && !recursive {
		return false, validationf("directory not empty: %s (%d files)", normalized, len(files))
	}

	for _, file := range files {
		if _, err := m.storage.DeleteFile(ctx, project, file.Path); err != nil {
			return false, storagef(err, "deleting file %s", file.Path)
		}
	}

	m.logger.Info("directory deleted",
		"project", project,
		"path", normalized,
		"files", len(files),
	)
	return true, nil
}

// Stats computes aggregate totals by scanning the full file list: O(n)
// in file count, recomputed per call rather than incrementally
// maintained. Directory count covers every distinct ancestor directory
// of every file path.
func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	project, err := m.activeProject()
	if err != nil {
		return nil, err
	}
	files, err := m.storage.ListFiles(ctx, project, ListOptions{})
	if err != nil {
		return nil, storagef(err, "listing files")
	}

	stats := &Stats{FileCount: len(files)}
	directories := make(map[string]struct{})
	for _, file := range files {
		stats.TotalSize += file.Size
		if file.Size > stats.LargestFile {
			stats.LargestFile = file.Size
		}
		if file.Chunked {
			stats.ChunkedFiles++
		}
		if file.Compression != "" {
			stats.CompressedFiles++
		}
		for dir := file.Directory; dir != ""; dir, _ = pathutil.Split(dir) {
			directories[dir] = struct{}{}
		}
	}
	stats.DirectoryCount = len(directories)
	stats.QuotaUsed = float64(stats.TotalSize) / float64(m.limits.MaxProjectStorage)
	return stats, nil
}

// Close releases the storage adapter. The Manager must not be used
// afterwards.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	project := m.project
	m.project = ""
	m.mu.Unlock()

	if err := m.storage.Cleanup(ctx); err != nil {
		return storagef(err, "releasing storage")
	}
	if project != "" {
		m.logger.Info("vfs closed", "project", project)
	}
	return nil
}

// applyContent installs a new payload on the record: inline at or
// below the chunk threshold, chunked above it. Size and Hash are
// recomputed from the payload. Returns the regenerated chunk set (nil
// for inline representation).
func (m *Manager) applyContent(file *File, content []byte) []chunk.Chunk {
	file.Size = int64(len(content))
	file.Hash = chunk.Checksum(content)

	if file.Size > m.limits.ChunkThreshold {
		chunks := chunk.Split(file.ID, content, m.limits.ChunkSize)
		file.Chunked = true
		file.Content = nil
		file.ChunkIDs = make([]string, len(chunks))
		for i, c := range chunks {
			file.ChunkIDs[i] = c.ID
		}
		return chunks
	}

	file.Chunked = false
	file.ChunkIDs = nil
	file.Content = make([]byte, len(content))
	copy(file.Content, content)
	return nil
}
