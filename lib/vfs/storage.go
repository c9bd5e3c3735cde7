// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"

	"github.com/stackpad-dev/stackpad/lib/chunk"
)

// Storage is the persistence contract the Manager drives. The Manager
// owns all file-system semantics (validation, uniqueness, chunking
// decisions, quotas); implementations only persist and retrieve what
// they are given, scoped by project id.
//
// Implementations must be safe for concurrent use. Absence is a value,
// not an error: LoadFile returns (nil, nil) and DeleteFile returns
// (false, nil) for paths that do not exist.
type Storage interface {
	// Initialize prepares storage for a project: creates schema on
	// first use and records the project in the inventory. Called once
	// per Manager initialization or switch. Must be idempotent.
	Initialize(ctx context.Context, projectID string) error

	// Cleanup releases per-project resources. Called when the Manager
	// switches away from a project and when it shuts down. Must be
	// safe to call repeatedly.
	Cleanup(ctx context.Context) error

	// LoadFile returns the record at path, with inline Content
	// populated (decoded from any storage encoding) and ChunkIDs
	// populated for chunked files. Returns (nil, nil) if absent.
	LoadFile(ctx context.Context, projectID, path string) (*File, error)

	// SaveFile persists a record and, for chunked files, its full
	// regenerated chunk set. The write is atomic: on error the
	// previous record state is unchanged. Replaces any existing record
	// at the same path, including dropping that record's old chunks.
	SaveFile(ctx context.Context, projectID string, file *File, chunks []chunk.Chunk) error

	// DeleteFile removes the record and its chunks. Reports whether a
	// record existed.
	DeleteFile(ctx context.Context, projectID, path string) (bool, error)

	// ListFiles returns records matching opts, ordered by path.
	// Payloads are omitted unless opts.WithContent is set; chunked
	// records always carry ChunkIDs.
	ListFiles(ctx context.Context, projectID string, opts ListOptions) ([]*File, error)

	// LoadContent returns the full logical content for the file with
	// the given id, reassembling chunks and reversing any storage
	// encoding. Returns an error if the file does not exist.
	LoadContent(ctx context.Context, projectID, fileID string) ([]byte, error)

	// TotalSize returns the sum of logical sizes across the project's
	// files. Used for quota checks.
	TotalSize(ctx context.Context, projectID string) (int64, error)
}
