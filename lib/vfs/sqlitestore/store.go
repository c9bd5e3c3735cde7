// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/stackpad-dev/stackpad/lib/chunk"
	"github.com/stackpad-dev/stackpad/lib/clock"
	"github.com/stackpad-dev/stackpad/lib/sqlitepool"
	"github.com/stackpad-dev/stackpad/lib/vfs"
)

// Store is the SQLite implementation of vfs.Storage. One Store (and
// one database file) holds every project; rows are scoped by the
// project_id column, which is how project isolation is enforced at the
// persistence layer.
//
// Store is safe for concurrent use. Reads run in parallel across pool
// connections; writes serialize on SQLite's single-writer lock inside
// IMMEDIATE transactions.
type Store struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

var _ vfs.Storage = (*Store)(nil)

// Config holds the parameters for opening a store.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist. Use ":memory:" with PoolSize 1
	// for tests.
	Path string

	// PoolSize is the connection pool size. Defaults to 4 if zero or
	// negative.
	PoolSize int

	// Clock provides timestamps for the project inventory. Defaults
	// to clock.Real().
	Clock clock.Clock

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// schema is applied once per pool connection. Every statement is
// idempotent, so concurrent connection setup is harmless.
//
// Column meanings that are not obvious from the names: files.size is
// the logical (uncompressed) content length and files.raw_size is the
// encoded byte count actually stored for the record, chunks included.
// chunks.size is the chunk's logical length, needed to decode its
// blob.
const schema = `
	CREATE TABLE IF NOT EXISTS projects (
		id             TEXT PRIMARY KEY,
		created_at     INTEGER NOT NULL,
		last_opened_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS files (
		project_id  TEXT NOT NULL,
		path        TEXT NOT NULL,
		id          TEXT NOT NULL,
		name        TEXT NOT NULL,
		directory   TEXT NOT NULL,
		mime_type   TEXT NOT NULL,
		size        INTEGER NOT NULL,
		content     BLOB,
		chunked     INTEGER NOT NULL,
		compression TEXT NOT NULL DEFAULT '',
		codec       TEXT NOT NULL DEFAULT 'none',
		raw_size    INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL,
		PRIMARY KEY (project_id, path)
	);
	CREATE INDEX IF NOT EXISTS idx_files_directory ON files(project_id, directory);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_files_id ON files(project_id, id);

	CREATE TABLE IF NOT EXISTS chunks (
		project_id TEXT NOT NULL,
		file_id    TEXT NOT NULL,
		position   INTEGER NOT NULL,
		chunk_id   TEXT NOT NULL,
		data       BLOB NOT NULL,
		size       INTEGER NOT NULL,
		codec      TEXT NOT NULL DEFAULT 'none',
		PRIMARY KEY (project_id, file_id, position)
	);
`

// Open creates a store backed by the SQLite database at cfg.Path. The
// database file and schema are created if they do not exist. The
// caller must Close the store when done.
func Open(cfg Config) (*Store, error) {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: poolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: %w", err)
	}

	return &Store{
		pool:   pool,
		clock:  clk,
		logger: logger,
	}, nil
}

// Close closes the underlying connection pool. Blocks until all
// borrowed connections are returned.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Initialize records the project in the inventory, creating the row on
// first use and refreshing last_opened_at on every later call.
func (s *Store) Initialize(ctx context.Context, projectID string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlitestore: initialize: %w", err)
	}
	defer s.pool.Put(conn)

	now := s.clock.Now().UnixNano()
	err = sqlitex.Execute(conn, `
		INSERT INTO projects (id, created_at, last_opened_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET last_opened_at = excluded.last_opened_at`,
		&sqlitex.ExecOptions{Args: []any{projectID, now, now}})
	if err != nil {
		return fmt.Errorf("sqlitestore: recording project %s: %w", projectID, err)
	}

	s.logger.Debug("project recorded", "project", projectID)
	return nil
}

// Cleanup checkpoints the write-ahead log back into the main database
// file. Called when the manager switches away from a project and on
// shutdown; there is no per-project state to release beyond that.
func (s *Store) Cleanup(ctx context.Context) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlitestore: cleanup: %w", err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.ExecuteTransient(conn, "PRAGMA wal_checkpoint(TRUNCATE)", nil); err != nil {
		return fmt.Errorf("sqlitestore: wal checkpoint: %w", err)
	}
	return nil
}

// fileColumns is the shared SELECT column list decoded by scanFileRow.
// Content is appended separately because most queries skip payloads.
const fileColumns = `path, id, name, directory, mime_type, size, chunked, compression, codec, hash, created_at, updated_at`

// scanFileRow decodes one files row. The statement's columns must
// match fileColumns, with content as column 12 when withContent is
// set. Inline payloads are decoded from their storage codec; chunked
// rows never carry content here.
func scanFileRow(stmt *sqlite.Stmt, projectID string, withContent bool) (*vfs.File, error) {
	file := &vfs.File{
		ProjectID:   projectID,
		Path:        stmt.ColumnText(0),
		ID:          stmt.ColumnText(1),
		Name:        stmt.ColumnText(2),
		Directory:   stmt.ColumnText(3),
		MIMEType:    stmt.ColumnText(4),
		Size:        stmt.ColumnInt64(5),
		Chunked:     stmt.ColumnInt64(6) != 0,
		Compression: stmt.ColumnText(7),
		Hash:        stmt.ColumnText(9),
		CreatedAt:   time.Unix(0, stmt.ColumnInt64(10)),
		UpdatedAt:   time.Unix(0, stmt.ColumnInt64(11)),
	}

	if withContent && !file.Chunked && !stmt.ColumnIsNull(12) {
		tag, err := parseCodecTag(stmt.ColumnText(8))
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", file.Path, err)
		}
		stored := make([]byte, stmt.ColumnLen(12))
		stmt.ColumnBytes(12, stored)
		content, err := decodeBlob(stored, tag, int(file.Size))
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", file.Path, err)
		}
		file.Content = content
	}

	return file, nil
}

// loadChunkIDs returns the ordered chunk id list for a chunked file.
func loadChunkIDs(conn *sqlite.Conn, projectID, fileID string) ([]string, error) {
	var ids []string
	err := sqlitex.Execute(conn, `
		SELECT chunk_id FROM chunks
		WHERE project_id = ? AND file_id = ?
		ORDER BY position`,
		&sqlitex.ExecOptions{
			Args: []any{projectID, fileID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				ids = append(ids, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("loading chunk ids for %s: %w", fileID, err)
	}
	return ids, nil
}

// LoadFile returns the record at path with inline Content decoded and,
// for chunked records, ChunkIDs populated. Returns (nil, nil) when no
// record exists.
func (s *Store) LoadFile(ctx context.Context, projectID, path string) (*vfs.File, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: load file: %w", err)
	}
	defer s.pool.Put(conn)

	var file *vfs.File
	err = sqlitex.Execute(conn, `
		SELECT `+fileColumns+`, content FROM files
		WHERE project_id = ? AND path = ?`,
		&sqlitex.ExecOptions{
			Args: []any{projectID, path},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var scanErr error
				file, scanErr = scanFileRow(stmt, projectID, true)
				return scanErr
			},
		})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: loading %s: %w", path, err)
	}
	if file == nil {
		return nil, nil
	}

	if file.Chunked {
		file.ChunkIDs, err = loadChunkIDs(conn, projectID, file.ID)
		if err != nil {
			return nil, fmt.Errorf("sqlitestore: loading %s: %w", path, err)
		}
	}
	return file, nil
}

// SaveFile persists a record and its chunk set in one IMMEDIATE
// transaction: any record previously at the path is replaced, its old
// chunks dropped, and the new chunks inserted. On error nothing
// changes.
func (s *Store) SaveFile(ctx context.Context, projectID string, file *vfs.File, chunks []chunk.Chunk) (err error) {
	// Encode blobs before the transaction so the write lock is not
	// held across compression.
	var contentArg any
	contentTag := codecNone
	storedSize := int64(0)
	if !file.Chunked && len(file.Content) > 0 {
		encoded, tag, err := encodeForStorage(file.Content, file.MIMEType, file.Compression)
		if err != nil {
			return fmt.Errorf("sqlitestore: encoding content for %s: %w", file.Path, err)
		}
		contentArg = encoded
		contentTag = tag
		storedSize = int64(len(encoded))
	}

	type encodedChunk struct {
		id       string
		position int
		data     []byte
		size     int
		tag      codecTag
	}
	encodedChunks := make([]encodedChunk, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		encoded, tag, err := encodeForStorage(c.Data, file.MIMEType, file.Compression)
		if err != nil {
			return fmt.Errorf("sqlitestore: encoding chunk %s: %w", c.ID, err)
		}
		encodedChunks = append(encodedChunks, encodedChunk{
			id:       c.ID,
			position: c.Position,
			data:     encoded,
			size:     len(c.Data),
			tag:      tag,
		})
		storedSize += int64(len(encoded))
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlitestore: save file: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("sqlitestore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	// Drop chunks belonging to whatever this save replaces. The id is
	// stable across updates, but a path recreated after deletion
	// carries a fresh id, so the previous record's chunks must be
	// found through the path.
	var previousID string
	err = sqlitex.Execute(conn, `SELECT id FROM files WHERE project_id = ? AND path = ?`,
		&sqlitex.ExecOptions{
			Args: []any{projectID, file.Path},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				previousID = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return fmt.Errorf("sqlitestore: looking up previous record at %s: %w", file.Path, err)
	}
	chunkOwners := []string{file.ID}
	if previousID != "" && previousID != file.ID {
		chunkOwners = append(chunkOwners, previousID)
	}
	for _, owner := range chunkOwners {
		err = sqlitex.Execute(conn, `DELETE FROM chunks WHERE project_id = ? AND file_id = ?`,
			&sqlitex.ExecOptions{Args: []any{projectID, owner}})
		if err != nil {
			return fmt.Errorf("sqlitestore: dropping old chunks of %s: %w", owner, err)
		}
	}

	chunkedInt := 0
	if file.Chunked {
		chunkedInt = 1
	}
	err = sqlitex.Execute(conn, `
		INSERT INTO files
			(project_id, path, id, name, directory, mime_type, size,
			 content, chunked, compression, codec, raw_size, hash,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, path) DO UPDATE SET
			id = excluded.id,
			name = excluded.name,
			directory = excluded.directory,
			mime_type = excluded.mime_type,
			size = excluded.size,
			content = excluded.content,
			chunked = excluded.chunked,
			compression = excluded.compression,
			codec = excluded.codec,
			raw_size = excluded.raw_size,
			hash = excluded.hash,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{
			projectID,
			file.Path,
			file.ID,
			file.Name,
			file.Directory,
			file.MIMEType,
			file.Size,
			contentArg,
			chunkedInt,
			file.Compression,
			contentTag.String(),
			storedSize,
			file.Hash,
			file.CreatedAt.UnixNano(),
			file.UpdatedAt.UnixNano(),
		}})
	if err != nil {
		return fmt.Errorf("sqlitestore: saving %s: %w", file.Path, err)
	}

	for _, c := range encodedChunks {
		err = sqlitex.Execute(conn, `
			INSERT INTO chunks (project_id, file_id, position, chunk_id, data, size, codec)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				projectID, file.ID, c.position, c.id, c.data, c.size, c.tag.String(),
			}})
		if err != nil {
			return fmt.Errorf("sqlitestore: saving chunk %s: %w", c.id, err)
		}
	}

	return nil
}

// DeleteFile removes the record at path and its chunks. Reports false
// without error when no record exists.
func (s *Store) DeleteFile(ctx context.Context, projectID, path string) (existed bool, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("sqlitestore: delete file: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return false, fmt.Errorf("sqlitestore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	var fileID string
	found := false
	err = sqlitex.Execute(conn, `SELECT id FROM files WHERE project_id = ? AND path = ?`,
		&sqlitex.ExecOptions{
			Args: []any{projectID, path},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				fileID = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("sqlitestore: deleting %s: %w", path, err)
	}
	if !found {
		return false, nil
	}

	err = sqlitex.Execute(conn, `DELETE FROM chunks WHERE project_id = ? AND file_id = ?`,
		&sqlitex.ExecOptions{Args: []any{projectID, fileID}})
	if err != nil {
		return false, fmt.Errorf("sqlitestore: deleting chunks of %s: %w", path, err)
	}
	err = sqlitex.Execute(conn, `DELETE FROM files WHERE project_id = ? AND path = ?`,
		&sqlitex.ExecOptions{Args: []any{projectID, path}})
	if err != nil {
		return false, fmt.Errorf("sqlitestore: deleting %s: %w", path, err)
	}

	return true, nil
}

// ListFiles returns records ordered by path. The directory filter
// matches exactly, or the whole subtree when Recursive is set; an
// empty Directory returns every file in the project. Inline payloads
// are decoded only when WithContent is set; chunked records always
// carry ChunkIDs.
func (s *Store) ListFiles(ctx context.Context, projectID string, opts vfs.ListOptions) ([]*vfs.File, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: list files: %w", err)
	}
	defer s.pool.Put(conn)

	columns := fileColumns
	if opts.WithContent {
		columns += ", content"
	}
	query := `SELECT ` + columns + ` FROM files WHERE project_id = ?`
	args := []any{projectID}

	if opts.Directory != "" {
		if opts.Recursive {
			// substr instead of LIKE: directory names may contain
			// LIKE metacharacters (_ is common in file names).
			query += ` AND (directory = ? OR substr(directory, 1, ?) = ?)`
			args = append(args, opts.Directory, len(opts.Directory)+1, opts.Directory+"/")
		} else {
			query += ` AND directory = ?`
			args = append(args, opts.Directory)
		}
	}
	query += ` ORDER BY path`

	var files []*vfs.File
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			file, scanErr := scanFileRow(stmt, projectID, opts.WithContent)
			if scanErr != nil {
				return scanErr
			}
			files = append(files, file)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: listing files: %w", err)
	}

	// Chunk ids are loaded after the main query completes; nesting
	// queries inside a ResultFunc on the same connection is not safe.
	for _, file := range files {
		if !file.Chunked {
			continue
		}
		file.ChunkIDs, err = loadChunkIDs(conn, projectID, file.ID)
		if err != nil {
			return nil, fmt.Errorf("sqlitestore: listing files: %w", err)
		}
	}

	return files, nil
}

// LoadContent returns the full logical content of the file with the
// given id, decoding inline blobs and reassembling chunked ones.
func (s *Store) LoadContent(ctx context.Context, projectID, fileID string) ([]byte, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: load content: %w", err)
	}
	defer s.pool.Put(conn)

	var (
		found     bool
		chunked   bool
		size      int64
		codecName string
		stored    []byte
	)
	err = sqlitex.Execute(conn, `
		SELECT size, chunked, codec, content FROM files
		WHERE project_id = ? AND id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{projectID, fileID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				size = stmt.ColumnInt64(0)
				chunked = stmt.ColumnInt64(1) != 0
				codecName = stmt.ColumnText(2)
				if !stmt.ColumnIsNull(3) {
					stored = make([]byte, stmt.ColumnLen(3))
					stmt.ColumnBytes(3, stored)
				}
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: loading content of %s: %w", fileID, err)
	}
	if !found {
		return nil, fmt.Errorf("sqlitestore: no file with id %s in project %s", fileID, projectID)
	}

	if !chunked {
		if stored == nil {
			return nil, nil
		}
		tag, err := parseCodecTag(codecName)
		if err != nil {
			return nil, fmt.Errorf("sqlitestore: file %s: %w", fileID, err)
		}
		content, err := decodeBlob(stored, tag, int(size))
		if err != nil {
			return nil, fmt.Errorf("sqlitestore: file %s: %w", fileID, err)
		}
		return content, nil
	}

	var parts []chunk.Chunk
	err = sqlitex.Execute(conn, `
		SELECT chunk_id, position, data, size, codec FROM chunks
		WHERE project_id = ? AND file_id = ?
		ORDER BY position`,
		&sqlitex.ExecOptions{
			Args: []any{projectID, fileID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tag, tagErr := parseCodecTag(stmt.ColumnText(4))
				if tagErr != nil {
					return tagErr
				}
				blob := make([]byte, stmt.ColumnLen(2))
				stmt.ColumnBytes(2, blob)
				data, decodeErr := decodeBlob(blob, tag, int(stmt.ColumnInt64(3)))
				if decodeErr != nil {
					return decodeErr
				}
				parts = append(parts, chunk.Chunk{
					ID:       stmt.ColumnText(0),
					FileID:   fileID,
					Position: int(stmt.ColumnInt64(1)),
					Data:     data,
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: loading chunks of %s: %w", fileID, err)
	}

	content, err := chunk.Join(parts)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: reassembling %s: %w", fileID, err)
	}
	return content, nil
}

// TotalSize returns the sum of logical file sizes across the project.
func (s *Store) TotalSize(ctx context.Context, projectID string) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: total size: %w", err)
	}
	defer s.pool.Put(conn)

	var total int64
	err = sqlitex.Execute(conn, `SELECT COALESCE(SUM(size), 0) FROM files WHERE project_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{projectID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				total = stmt.ColumnInt64(0)
				return nil
			},
		})
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: total size of %s: %w", projectID, err)
	}
	return total, nil
}

// ProjectInfo is one row of the project inventory.
type ProjectInfo struct {
	// ID is the project identifier.
	ID string

	// CreatedAt is when the project was first initialized;
	// LastOpenedAt is refreshed on every Initialize.
	CreatedAt    time.Time
	LastOpenedAt time.Time

	// FileCount and TotalSize aggregate the project's files.
	// TotalSize counts logical bytes; StoredSize counts the encoded
	// bytes actually on disk.
	FileCount  int
	TotalSize  int64
	StoredSize int64
}

// Projects returns the inventory of every project ever initialized,
// with per-project file counts and sizes, ordered by id.
func (s *Store) Projects(ctx context.Context) ([]ProjectInfo, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: projects: %w", err)
	}
	defer s.pool.Put(conn)

	var projects []ProjectInfo
	err = sqlitex.Execute(conn, `
		SELECT p.id, p.created_at, p.last_opened_at,
		       COUNT(f.path), COALESCE(SUM(f.size), 0), COALESCE(SUM(f.raw_size), 0)
		FROM projects p
		LEFT JOIN files f ON f.project_id = p.id
		GROUP BY p.id
		ORDER BY p.id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				projects = append(projects, ProjectInfo{
					ID:           stmt.ColumnText(0),
					CreatedAt:    time.Unix(0, stmt.ColumnInt64(1)),
					LastOpenedAt: time.Unix(0, stmt.ColumnInt64(2)),
					FileCount:    int(stmt.ColumnInt64(3)),
					TotalSize:    stmt.ColumnInt64(4),
					StoredSize:   stmt.ColumnInt64(5),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: listing projects: %w", err)
	}
	return projects, nil
}

// DatabaseSize returns the physical size of the database file in
// bytes, computed from the page count.
func (s *Store) DatabaseSize(ctx context.Context) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: database size: %w", err)
	}
	defer s.pool.Put(conn)

	var size int64
	err = sqlitex.Execute(conn, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				size = stmt.ColumnInt64(0)
				return nil
			},
		})
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: database size: %w", err)
	}
	return size, nil
}
