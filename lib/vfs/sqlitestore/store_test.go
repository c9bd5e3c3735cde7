// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitestore

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/stackpad-dev/stackpad/lib/chunk"
	"github.com/stackpad-dev/stackpad/lib/clock"
	"github.com/stackpad-dev/stackpad/lib/pathutil"
	"github.com/stackpad-dev/stackpad/lib/vfs"
)

var storeTestEpoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) (*Store, *clock.FakeClock) {
	t.Helper()

	fakeClock := clock.Fake(storeTestEpoch)

	store, err := Open(Config{
		Path:     filepath.Join(t.TempDir(), "store_test.db"),
		PoolSize: 2,
		Clock:    fakeClock,
		Logger:   slog.Default(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("store.Close: %v", err)
		}
	})
	return store, fakeClock
}

// testFile builds a consistent record the way the VFS manager would:
// derived name and directory, computed hash, inline content.
func testFile(projectID, path string, content []byte) *vfs.File {
	directory, name := pathutil.Split(path)
	return &vfs.File{
		ID:        "id-" + path,
		ProjectID: projectID,
		Path:      path,
		Name:      name,
		Directory: directory,
		MIMEType:  pathutil.MIMEType(name),
		Size:      int64(len(content)),
		Content:   content,
		Hash:      chunk.Checksum(content),
		CreatedAt: storeTestEpoch,
		UpdatedAt: storeTestEpoch,
	}
}

// chunkedTestFile builds a chunked record plus its chunk set.
func chunkedTestFile(projectID, path string, content []byte, chunkSize int) (*vfs.File, []chunk.Chunk) {
	file := testFile(projectID, path, content)
	chunks := chunk.Split(file.ID, content, chunkSize)
	file.Content = nil
	file.Chunked = true
	file.ChunkIDs = make([]string, len(chunks))
	for i, c := range chunks {
		file.ChunkIDs[i] = c.ID
	}
	return file, chunks
}

// countChunks queries the chunks table directly. Orphaned chunk rows
// are invisible through the Storage interface, so replacement tests
// need to look underneath it.
func countChunks(t *testing.T, store *Store, projectID string) int {
	t.Helper()

	conn, err := store.pool.Take(context.Background())
	if err != nil {
		t.Fatalf("pool.Take: %v", err)
	}
	defer store.pool.Put(conn)

	count := 0
	err = sqlitex.Execute(conn, `SELECT COUNT(*) FROM chunks WHERE project_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{projectID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				count = int(stmt.ColumnInt64(0))
				return nil
			},
		})
	if err != nil {
		t.Fatalf("counting chunks: %v", err)
	}
	return count
}

func TestSaveAndLoadFile(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	content := []byte("export const handler = () => new Response('ok')\n")
	saved := testFile("alpha", "api/handler.ts", content)

	if err := store.SaveFile(ctx, "alpha", saved, nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded, err := store.LoadFile(ctx, "alpha", "api/handler.ts")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadFile returned nil for saved file")
	}

	if loaded.ID != saved.ID {
		t.Errorf("ID = %q, want %q", loaded.ID, saved.ID)
	}
	if loaded.Name != "handler.ts" {
		t.Errorf("Name = %q, want handler.ts", loaded.Name)
	}
	if loaded.Directory != "api" {
		t.Errorf("Directory = %q, want api", loaded.Directory)
	}
	if loaded.MIMEType != "text/typescript" {
		t.Errorf("MIMEType = %q, want text/typescript", loaded.MIMEType)
	}
	if loaded.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", loaded.Size, len(content))
	}
	if !bytes.Equal(loaded.Content, content) {
		t.Errorf("Content = %q, want %q", loaded.Content, content)
	}
	if loaded.Chunked {
		t.Error("inline file loaded as chunked")
	}
	if loaded.Hash != saved.Hash {
		t.Errorf("Hash = %q, want %q", loaded.Hash, saved.Hash)
	}
	if !loaded.CreatedAt.Equal(storeTestEpoch) {
		t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, storeTestEpoch)
	}
}

func TestLoadFileAbsent(t *testing.T) {
	store, _ := openTestStore(t)

	loaded, err := store.LoadFile(context.Background(), "alpha", "no/such/file.ts")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded != nil {
		t.Errorf("LoadFile for absent path = %+v, want nil", loaded)
	}
}

func TestSaveFileChunked(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	content := compressibleData(300 * 1024)
	file, chunks := chunkedTestFile("alpha", "assets/bundle.bin", content, 128*1024)

	if err := store.SaveFile(ctx, "alpha", file, chunks); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded, err := store.LoadFile(ctx, "alpha", "assets/bundle.bin")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !loaded.Chunked {
		t.Fatal("chunked file loaded as inline")
	}
	if loaded.Content != nil {
		t.Error("chunked file must not carry inline content")
	}
	if len(loaded.ChunkIDs) != len(chunks) {
		t.Fatalf("ChunkIDs count = %d, want %d", len(loaded.ChunkIDs), len(chunks))
	}
	for i, c := range chunks {
		if loaded.ChunkIDs[i] != c.ID {
			t.Errorf("ChunkIDs[%d] = %q, want %q", i, loaded.ChunkIDs[i], c.ID)
		}
	}

	reassembled, err := store.LoadContent(ctx, "alpha", file.ID)
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	if !bytes.Equal(reassembled, content) {
		t.Error("LoadContent did not reassemble the original content")
	}
}

func TestLoadContentInline(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	content := []byte(`{"name":"stackpad"}`)
	file := testFile("alpha", "package.json", content)
	if err := store.SaveFile(ctx, "alpha", file, nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded, err := store.LoadContent(ctx, "alpha", file.ID)
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	if !bytes.Equal(loaded, content) {
		t.Errorf("LoadContent = %q, want %q", loaded, content)
	}
}

func TestLoadContentUnknownID(t *testing.T) {
	store, _ := openTestStore(t)

	if _, err := store.LoadContent(context.Background(), "alpha", "missing-id"); err == nil {
		t.Error("LoadContent for unknown id should fail")
	}
}

func TestSaveFileReplacesChunks(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	// Start chunked.
	content := compressibleData(300 * 1024)
	file, chunks := chunkedTestFile("alpha", "data.bin", content, 64*1024)
	if err := store.SaveFile(ctx, "alpha", file, chunks); err != nil {
		t.Fatalf("SaveFile (chunked): %v", err)
	}
	if got := countChunks(t, store, "alpha"); got != len(chunks) {
		t.Fatalf("chunk rows = %d, want %d", got, len(chunks))
	}

	// Shrink to inline: every chunk row must disappear.
	small := []byte("now tiny")
	file.Content = small
	file.Chunked = false
	file.ChunkIDs = nil
	file.Size = int64(len(small))
	file.Hash = chunk.Checksum(small)
	if err := store.SaveFile(ctx, "alpha", file, nil); err != nil {
		t.Fatalf("SaveFile (inline): %v", err)
	}
	if got := countChunks(t, store, "alpha"); got != 0 {
		t.Fatalf("chunk rows after inline rewrite = %d, want 0", got)
	}

	loaded, err := store.LoadFile(ctx, "alpha", "data.bin")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Chunked || !bytes.Equal(loaded.Content, small) {
		t.Errorf("rewritten file = chunked=%v content=%q, want inline %q", loaded.Chunked, loaded.Content, small)
	}

	// Grow back to chunked with a fresh chunk set.
	content = compressibleData(200 * 1024)
	file, chunks = chunkedTestFile("alpha", "data.bin", content, 64*1024)
	if err := store.SaveFile(ctx, "alpha", file, chunks); err != nil {
		t.Fatalf("SaveFile (chunked again): %v", err)
	}
	if got := countChunks(t, store, "alpha"); got != len(chunks) {
		t.Fatalf("chunk rows after regrow = %d, want %d", got, len(chunks))
	}
}

// TestManagerMetadataUpdateKeepsChunkedContent drives a full manager
// over the real store: a MIME-only update of a chunked file must not
// disturb its chunk rows.
func TestManagerMetadataUpdateKeepsChunkedContent(t *testing.T) {
	store, fakeClock := openTestStore(t)
	ctx := context.Background()

	manager, err := vfs.NewManager(vfs.Options{
		Storage: store,
		Limits:  vfs.Limits{ChunkThreshold: 8, ChunkSize: 4},
		Clock:   fakeClock,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := manager.Initialize(ctx, "alpha"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	content := []byte("sixteen byte pay")
	created, err := manager.CreateFile(ctx, "mod.bin", vfs.CreateOptions{Content: content})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if !created.Chunked {
		t.Fatal("expected a chunked record")
	}
	before := countChunks(t, store, "alpha")

	if _, err := manager.UpdateFile(ctx, "mod.bin", vfs.Update{MIMEType: "application/wasm"}); err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	if after := countChunks(t, store, "alpha"); after != before {
		t.Fatalf("chunk rows after metadata update = %d, want %d", after, before)
	}
	got, err := manager.ReadFileContent(ctx, "mod.bin")
	if err != nil {
		t.Fatalf("ReadFileContent: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content after metadata update = %q (%d bytes), want %q", got, len(got), content)
	}
}

func TestSaveFileReplacesRecreatedPath(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	// A chunked record whose path is later overwritten by a record
	// with a different id (delete-and-recreate done as one save) must
	// not leave the old id's chunks behind.
	content := compressibleData(200 * 1024)
	first, chunks := chunkedTestFile("alpha", "swap.bin", content, 64*1024)
	if err := store.SaveFile(ctx, "alpha", first, chunks); err != nil {
		t.Fatalf("SaveFile (first): %v", err)
	}

	second := testFile("alpha", "swap.bin", []byte("replacement"))
	second.ID = "a-different-id"
	if err := store.SaveFile(ctx, "alpha", second, nil); err != nil {
		t.Fatalf("SaveFile (second): %v", err)
	}

	if got := countChunks(t, store, "alpha"); got != 0 {
		t.Errorf("orphaned chunk rows = %d, want 0", got)
	}
}

func TestDeleteFile(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	content := compressibleData(200 * 1024)
	file, chunks := chunkedTestFile("alpha", "doomed.bin", content, 64*1024)
	if err := store.SaveFile(ctx, "alpha", file, chunks); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	existed, err := store.DeleteFile(ctx, "alpha", "doomed.bin")
	if err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if !existed {
		t.Error("DeleteFile reported existed=false for a present file")
	}
	if got := countChunks(t, store, "alpha"); got != 0 {
		t.Errorf("chunk rows after delete = %d, want 0", got)
	}

	loaded, err := store.LoadFile(ctx, "alpha", "doomed.bin")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded != nil {
		t.Error("file still loadable after delete")
	}

	// Deleting again is a clean no-op.
	existed, err = store.DeleteFile(ctx, "alpha", "doomed.bin")
	if err != nil {
		t.Fatalf("DeleteFile (repeat): %v", err)
	}
	if existed {
		t.Error("DeleteFile reported existed=true for an absent file")
	}
}

func TestListFiles(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	paths := []string{
		"readme.md",
		"api/users.ts",
		"api/orders.ts",
		"api/internal/audit.ts",
		"web/index.html",
	}
	for _, p := range paths {
		if err := store.SaveFile(ctx, "alpha", testFile("alpha", p, []byte("content of "+p)), nil); err != nil {
			t.Fatalf("SaveFile(%s): %v", p, err)
		}
	}

	t.Run("all files sorted by path", func(t *testing.T) {
		files, err := store.ListFiles(ctx, "alpha", vfs.ListOptions{})
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		want := []string{"api/internal/audit.ts", "api/orders.ts", "api/users.ts", "readme.md", "web/index.html"}
		if len(files) != len(want) {
			t.Fatalf("got %d files, want %d", len(files), len(want))
		}
		for i, w := range want {
			if files[i].Path != w {
				t.Errorf("files[%d].Path = %q, want %q", i, files[i].Path, w)
			}
		}
	})

	t.Run("direct children only", func(t *testing.T) {
		files, err := store.ListFiles(ctx, "alpha", vfs.ListOptions{Directory: "api"})
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("got %d files, want 2", len(files))
		}
		if files[0].Path != "api/orders.ts" || files[1].Path != "api/users.ts" {
			t.Errorf("got %q and %q", files[0].Path, files[1].Path)
		}
	})

	t.Run("recursive subtree", func(t *testing.T) {
		files, err := store.ListFiles(ctx, "alpha", vfs.ListOptions{Directory: "api", Recursive: true})
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if len(files) != 3 {
			t.Fatalf("got %d files, want 3", len(files))
		}
	})

	t.Run("payloads omitted by default", func(t *testing.T) {
		files, err := store.ListFiles(ctx, "alpha", vfs.ListOptions{Directory: "web"})
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("got %d files, want 1", len(files))
		}
		if files[0].Content != nil {
			t.Error("listing carried content without WithContent")
		}
	})

	t.Run("with content", func(t *testing.T) {
		files, err := store.ListFiles(ctx, "alpha", vfs.ListOptions{Directory: "web", WithContent: true})
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("got %d files, want 1", len(files))
		}
		if !bytes.Equal(files[0].Content, []byte("content of web/index.html")) {
			t.Errorf("Content = %q", files[0].Content)
		}
	})
}

func TestListFilesPrefixIsNotSubtree(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	// "api-v2" shares a string prefix with "api" but is a sibling, not
	// a descendant.
	for _, p := range []string{"api/a.ts", "api-v2/b.ts"} {
		if err := store.SaveFile(ctx, "alpha", testFile("alpha", p, []byte("x")), nil); err != nil {
			t.Fatalf("SaveFile(%s): %v", p, err)
		}
	}

	files, err := store.ListFiles(ctx, "alpha", vfs.ListOptions{Directory: "api", Recursive: true})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0].Path != "api/a.ts" {
		t.Errorf("recursive listing of api = %d files, want exactly api/a.ts", len(files))
	}
}

func TestTotalSize(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	total, err := store.TotalSize(ctx, "alpha")
	if err != nil {
		t.Fatalf("TotalSize: %v", err)
	}
	if total != 0 {
		t.Errorf("TotalSize of empty project = %d, want 0", total)
	}

	if err := store.SaveFile(ctx, "alpha", testFile("alpha", "a.txt", make([]byte, 100)), nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if err := store.SaveFile(ctx, "alpha", testFile("alpha", "b.txt", make([]byte, 250)), nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	total, err = store.TotalSize(ctx, "alpha")
	if err != nil {
		t.Fatalf("TotalSize: %v", err)
	}
	if total != 350 {
		t.Errorf("TotalSize = %d, want 350", total)
	}
}

func TestProjectIsolation(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveFile(ctx, "alpha", testFile("alpha", "shared.ts", []byte("alpha content")), nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if err := store.SaveFile(ctx, "beta", testFile("beta", "shared.ts", []byte("beta content")), nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	alphaFile, err := store.LoadFile(ctx, "alpha", "shared.ts")
	if err != nil {
		t.Fatalf("LoadFile(alpha): %v", err)
	}
	if string(alphaFile.Content) != "alpha content" {
		t.Errorf("alpha content = %q", alphaFile.Content)
	}

	// Deleting in one project must not touch the other.
	if _, err := store.DeleteFile(ctx, "alpha", "shared.ts"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	betaFile, err := store.LoadFile(ctx, "beta", "shared.ts")
	if err != nil {
		t.Fatalf("LoadFile(beta): %v", err)
	}
	if betaFile == nil || string(betaFile.Content) != "beta content" {
		t.Error("delete in alpha leaked into beta")
	}

	betaTotal, err := store.TotalSize(ctx, "beta")
	if err != nil {
		t.Fatalf("TotalSize(beta): %v", err)
	}
	if betaTotal != int64(len("beta content")) {
		t.Errorf("beta TotalSize = %d, want %d", betaTotal, len("beta content"))
	}
}

func TestGzipMarkerRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	content := bytes.Repeat([]byte("body { margin: 0 }\n"), 200)
	file := testFile("alpha", "styles/site.css", content)
	file.Compression = vfs.CompressionGzip

	if err := store.SaveFile(ctx, "alpha", file, nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded, err := store.LoadFile(ctx, "alpha", "styles/site.css")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Compression != vfs.CompressionGzip {
		t.Errorf("Compression = %q, want gzip", loaded.Compression)
	}
	if !bytes.Equal(loaded.Content, content) {
		t.Error("gzip-marked content did not round-trip")
	}
	if loaded.Size != int64(len(content)) {
		t.Errorf("Size = %d, want logical %d", loaded.Size, len(content))
	}
}

func TestInitializeAndProjects(t *testing.T) {
	store, fakeClock := openTestStore(t)
	ctx := context.Background()

	if err := store.Initialize(ctx, "alpha"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	fakeClock.Advance(time.Hour)
	if err := store.Initialize(ctx, "alpha"); err != nil {
		t.Fatalf("Initialize (repeat): %v", err)
	}
	if err := store.Initialize(ctx, "beta"); err != nil {
		t.Fatalf("Initialize(beta): %v", err)
	}

	if err := store.SaveFile(ctx, "alpha", testFile("alpha", "main.ts", []byte("hello")), nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	projects, err := store.Projects(ctx)
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(projects))
	}

	alpha := projects[0]
	if alpha.ID != "alpha" {
		t.Fatalf("projects[0].ID = %q, want alpha", alpha.ID)
	}
	if !alpha.CreatedAt.Equal(storeTestEpoch) {
		t.Errorf("CreatedAt = %v, want %v", alpha.CreatedAt, storeTestEpoch)
	}
	if !alpha.LastOpenedAt.Equal(storeTestEpoch.Add(time.Hour)) {
		t.Errorf("LastOpenedAt = %v, want %v", alpha.LastOpenedAt, storeTestEpoch.Add(time.Hour))
	}
	if alpha.FileCount != 1 {
		t.Errorf("FileCount = %d, want 1", alpha.FileCount)
	}
	if alpha.TotalSize != int64(len("hello")) {
		t.Errorf("TotalSize = %d, want %d", alpha.TotalSize, len("hello"))
	}

	if projects[1].ID != "beta" || projects[1].FileCount != 0 {
		t.Errorf("projects[1] = %+v, want empty beta", projects[1])
	}
}

func TestCleanupAndDatabaseSize(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveFile(ctx, "alpha", testFile("alpha", "a.txt", compressibleData(10*1024)), nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	// Repeat calls must be safe.
	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup (repeat): %v", err)
	}

	size, err := store.DatabaseSize(ctx)
	if err != nil {
		t.Fatalf("DatabaseSize: %v", err)
	}
	if size <= 0 {
		t.Errorf("DatabaseSize = %d, want > 0", size)
	}
}
