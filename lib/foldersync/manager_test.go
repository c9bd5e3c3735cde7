// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stackpad-dev/stackpad/lib/chunk"
	"github.com/stackpad-dev/stackpad/lib/clock"
	"github.com/stackpad-dev/stackpad/lib/pathutil"
	"github.com/stackpad-dev/stackpad/lib/vfs"
)

var syncTestEpoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// fakeVFS is an in-memory VFS double with inline-only records and
// direct control over remote timestamps.
type fakeVFS struct {
	mu      sync.Mutex
	project string
	clk     clock.Clock
	files   map[string]*vfs.File
	nextID  int

	// failPaths makes writes to specific store paths fail.
	failPaths map[string]error
}

func newFakeVFS(clk clock.Clock) *fakeVFS {
	return &fakeVFS{
		project:   "proj-test",
		clk:       clk,
		files:     make(map[string]*vfs.File),
		failPaths: make(map[string]error),
	}
}

func (f *fakeVFS) CurrentProject() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.project
}

func (f *fakeVFS) CreateFile(ctx context.Context, path string, opts vfs.CreateOptions) (*vfs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failPaths[path]; err != nil {
		return nil, err
	}
	if f.files[path] != nil {
		return nil, &vfs.ValidationError{Message: "file already exists: " + path}
	}
	directory, name := pathutil.Split(path)
	now := f.clk.Now()
	f.nextID++
	file := &vfs.File{
		ID:        fmt.Sprintf("file-%d", f.nextID),
		ProjectID: f.project,
		Path:      path,
		Name:      name,
		Directory: directory,
		MIMEType:  pathutil.MIMEType(name),
		Size:      int64(len(opts.Content)),
		Content:   append([]byte(nil), opts.Content...),
		Hash:      chunk.Checksum(opts.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.files[path] = file
	return file.Clone(), nil
}

func (f *fakeVFS) UpdateFile(ctx context.Context, path string, update vfs.Update) (*vfs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failPaths[path]; err != nil {
		return nil, err
	}
	file := f.files[path]
	if file == nil {
		return nil, &vfs.ValidationError{Message: "file not found: " + path}
	}
	if update.Content != nil {
		file.Content = append([]byte(nil), update.Content...)
		file.Size = int64(len(update.Content))
		file.Hash = chunk.Checksum(update.Content)
		file.UpdatedAt = f.clk.Now()
	}
	return file.Clone(), nil
}

func (f *fakeVFS) ReadFile(ctx context.Context, path string) (*vfs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path].Clone(), nil
}

func (f *fakeVFS) ReadFileContent(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file := f.files[path]
	if file == nil {
		return nil, &vfs.ValidationError{Message: "file not found: " + path}
	}
	return append([]byte(nil), file.Content...), nil
}

func (f *fakeVFS) ListFiles(ctx context.Context, opts vfs.ListOptions) ([]*vfs.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var files []*vfs.File
	for _, file := range f.files {
		if opts.Directory != "" && !pathutil.WithinDirectory(file.Path, opts.Directory, opts.Recursive) {
			continue
		}
		files = append(files, file.Clone())
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// seed installs a store file under the namespace with a fixed
// timestamp, bypassing the clock.
func (f *fakeVFS) seed(path string, content []byte, modified time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	directory, name := pathutil.Split(path)
	f.nextID++
	f.files[path] = &vfs.File{
		ID:        fmt.Sprintf("file-%d", f.nextID),
		ProjectID: f.project,
		Path:      path,
		Name:      name,
		Directory: directory,
		MIMEType:  pathutil.MIMEType(name),
		Size:      int64(len(content)),
		Content:   append([]byte(nil), content...),
		Hash:      chunk.Checksum(content),
		CreatedAt: modified,
		UpdatedAt: modified,
	}
}

func (f *fakeVFS) setUpdatedAt(path string, modified time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path].UpdatedAt = modified
}

func (f *fakeVFS) contentOf(t *testing.T, path string) []byte {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	file := f.files[path]
	if file == nil {
		t.Fatalf("store has no file at %s", path)
	}
	return append([]byte(nil), file.Content...)
}

func (f *fakeVFS) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path] != nil
}

// newTestManager returns a bound Manager over a temp folder, with a
// fake clock and prompt-strategy defaults.
func newTestManager(t *testing.T, cfg Config) (*Manager, *fakeVFS, string, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(syncTestEpoch)
	store := newFakeVFS(clk)
	folder := t.TempDir()

	manager, err := NewManager(Options{
		VFS:    store,
		Clock:  clk,
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	bound, err := manager.BindFolder(folder)
	if err != nil {
		t.Fatalf("BindFolder: %v", err)
	}
	if !bound {
		t.Fatal("BindFolder returned false for a valid directory")
	}
	return manager, store, folder, clk
}

// writeLocal creates a file under the folder with a controlled mtime.
func writeLocal(t *testing.T, folder, relPath, content string, modified time.Time) {
	t.Helper()
	absolute := filepath.Join(folder, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(absolute), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(absolute, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(absolute, modified, modified); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func readLocal(t *testing.T, folder, relPath string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(folder, filepath.FromSlash(relPath)))
	if err != nil {
		t.Fatalf("reading %s: %v", relPath, err)
	}
	return string(data)
}

func TestNewManagerRequiresVFS(t *testing.T) {
	if _, err := NewManager(Options{}); err == nil {
		t.Fatal("expected error for missing VFS")
	}
}

func TestBindFolderDeclined(t *testing.T) {
	manager, _, _, _ := newTestManager(t, Config{})
	bound, err := manager.BindFolder("")
	if err != nil {
		t.Fatalf("declining must not error, got %v", err)
	}
	if bound {
		t.Fatal("empty path must report bound=false")
	}
}

func TestBindFolderMissing(t *testing.T) {
	manager, _, _, _ := newTestManager(t, Config{})
	_, err := manager.BindFolder(filepath.Join(t.TempDir(), "nope"))
	var platformErr *PlatformError
	if !errors.As(err, &platformErr) {
		t.Fatalf("want *PlatformError, got %v", err)
	}
}

func TestBindFolderNotDirectory(t *testing.T) {
	manager, _, _, _ := newTestManager(t, Config{})
	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := manager.BindFolder(file)
	var platformErr *PlatformError
	if !errors.As(err, &platformErr) {
		t.Fatalf("want *PlatformError, got %v", err)
	}
}

func TestSyncRequiresFolder(t *testing.T) {
	clk := clock.Fake(syncTestEpoch)
	manager, err := NewManager(Options{VFS: newFakeVFS(clk), Clock: clk})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := manager.SyncFolder(context.Background()); !errors.Is(err, ErrNoFolder) {
		t.Fatalf("want ErrNoFolder, got %v", err)
	}
}

func TestSyncRequiresProject(t *testing.T) {
	manager, store, _, _ := newTestManager(t, Config{})
	store.project = ""
	if _, err := manager.SyncFolder(context.Background()); !errors.Is(err, vfs.ErrNotInitialized) {
		t.Fatalf("want ErrNotInitialized, got %v", err)
	}
}

func TestResolveConflictLocal(t *testing.T) {
	manager, store, folder, _ := newTestManager(t, Config{})
	writeLocal(t, folder, "index.ts", "local edit", syncTestEpoch.Add(-10*time.Second))
	store.seed("edge-functions/index.ts", []byte("remote edit"), syncTestEpoch.Add(-60*time.Second))

	result, err := manager.SyncFolder(context.Background())
	if err != nil {
		t.Fatalf("SyncFolder: %v", err)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("want 1 conflict, got %d", len(result.Conflicts))
	}

	if err := manager.ResolveConflict(context.Background(), "index.ts", ResolveLocal, nil); err != nil {
		t.Fatalf("ResolveConflict: %v", err)
	}

	if got := string(store.contentOf(t, "edge-functions/index.ts")); got != "local edit" {
		t.Errorf("store content = %q, want local edit pushed", got)
	}
	if got := len(manager.Status().Conflicts); got != 0 {
		t.Errorf("conflict list has %d entries after resolution, want 0", got)
	}
}

func TestResolveConflictRemote(t *testing.T) {
	manager, store, folder, _ := newTestManager(t, Config{})
	writeLocal(t, folder, "index.ts", "local edit", syncTestEpoch.Add(-10*time.Second))
	store.seed("edge-functions/index.ts", []byte("remote edit"), syncTestEpoch.Add(-60*time.Second))

	if _, err := manager.SyncFolder(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := manager.ResolveConflict(context.Background(), "index.ts", ResolveRemote, nil); err != nil {
		t.Fatalf("ResolveConflict: %v", err)
	}

	if got := readLocal(t, folder, "index.ts"); got != "remote edit" {
		t.Errorf("local content = %q, want remote edit written", got)
	}
}

func TestResolveConflictMerge(t *testing.T) {
	manager, store, folder, _ := newTestManager(t, Config{})
	writeLocal(t, folder, "index.ts", "local edit", syncTestEpoch.Add(-10*time.Second))
	store.seed("edge-functions/index.ts", []byte("remote edit"), syncTestEpoch.Add(-60*time.Second))

	if _, err := manager.SyncFolder(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := manager.ResolveConflict(context.Background(), "index.ts", ResolveMerge, nil)
	var validationErr *vfs.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("merge without content: want *vfs.ValidationError, got %v", err)
	}

	if err := manager.ResolveConflict(context.Background(), "index.ts", ResolveMerge, []byte("merged edit")); err != nil {
		t.Fatalf("ResolveConflict: %v", err)
	}
	if got := readLocal(t, folder, "index.ts"); got != "merged edit" {
		t.Errorf("local content = %q, want merged edit", got)
	}
	if got := string(store.contentOf(t, "edge-functions/index.ts")); got != "merged edit" {
		t.Errorf("store content = %q, want merged edit", got)
	}
}

func TestResolveConflictUnknownPath(t *testing.T) {
	manager, _, _, _ := newTestManager(t, Config{})
	err := manager.ResolveConflict(context.Background(), "nope.ts", ResolveLocal, nil)
	var validationErr *vfs.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("want *vfs.ValidationError, got %v", err)
	}
}

func TestResolveConflictUnknownResolution(t *testing.T) {
	manager, store, folder, _ := newTestManager(t, Config{})
	writeLocal(t, folder, "index.ts", "local edit", syncTestEpoch.Add(-10*time.Second))
	store.seed("edge-functions/index.ts", []byte("remote edit"), syncTestEpoch.Add(-60*time.Second))
	if _, err := manager.SyncFolder(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := manager.ResolveConflict(context.Background(), "index.ts", Resolution("coin-flip"), nil)
	var validationErr *vfs.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("want *vfs.ValidationError, got %v", err)
	}
	if got := len(manager.Status().Conflicts); got != 1 {
		t.Errorf("failed resolution must leave the conflict pending, have %d", got)
	}
}

func TestSetConfigValidates(t *testing.T) {
	manager, _, _, _ := newTestManager(t, Config{})
	err := manager.SetConfig(Config{Direction: "sideways"})
	var validationErr *vfs.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("want *vfs.ValidationError, got %v", err)
	}
}

func TestSetConfigRecompilesIgnores(t *testing.T) {
	manager, store, folder, _ := newTestManager(t, Config{})
	writeLocal(t, folder, "secret.pem", "key", syncTestEpoch)

	if err := manager.SetConfig(Config{IgnorePatterns: []string{"*.pem"}}); err != nil {
		t.Fatal(err)
	}
	result, err := manager.SyncFolder(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Ignored != 1 || result.Uploaded != 0 {
		t.Errorf("ignored=%d uploaded=%d, want 1/0", result.Ignored, result.Uploaded)
	}
	if store.has("edge-functions/secret.pem") {
		t.Error("ignored file reached the store")
	}
}

func TestStatusReportsSession(t *testing.T) {
	manager, _, folder, _ := newTestManager(t, Config{})
	status := manager.Status()
	if !status.Bound || status.Folder != folder {
		t.Errorf("status = %+v, want bound to %s", status, folder)
	}
	if status.Watching || !status.LastSync.IsZero() || status.PendingChanges != 0 {
		t.Errorf("fresh session status = %+v", status)
	}

	if _, err := manager.SyncFolder(context.Background()); err != nil {
		t.Fatal(err)
	}
	if manager.Status().LastSync.IsZero() {
		t.Error("LastSync still zero after a sync")
	}
}

func TestHasFolderSyncSupport(t *testing.T) {
	if !HasFolderSyncSupport() {
		t.Error("native build must report folder sync support")
	}
}

func TestStatusConflictsAreCopies(t *testing.T) {
	manager, store, folder, _ := newTestManager(t, Config{})
	writeLocal(t, folder, "index.ts", "local edit", syncTestEpoch.Add(-10*time.Second))
	store.seed("edge-functions/index.ts", []byte("remote edit"), syncTestEpoch.Add(-60*time.Second))
	if _, err := manager.SyncFolder(context.Background()); err != nil {
		t.Fatal(err)
	}

	status := manager.Status()
	status.Conflicts[0].LocalContent[0] = 'X'
	if got := string(manager.Status().Conflicts[0].LocalContent); strings.HasPrefix(got, "X") {
		t.Error("mutating a Status copy leaked into the conflict list")
	}
}
