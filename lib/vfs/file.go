// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"time"

	"github.com/stackpad-dev/stackpad/lib/chunk"
)

// CompressionGzip is the marker stored on records whose payload the
// storage layer must persist gzip-compressed. It is only ever set for
// text-like MIME types.
const CompressionGzip = "gzip"

// File is one stored file record. Size and Hash always describe the
// logical (uncompressed) content regardless of the on-disk encoding.
type File struct {
	// ID is an opaque unique identifier assigned at creation. Immutable.
	ID string `json:"id"`

	// ProjectID is the owning project. Files never move between
	// projects.
	ProjectID string `json:"projectId"`

	// Path is the normalized project-relative path, unique within the
	// project. Name and Directory are derived from it.
	Path      string `json:"path"`
	Name      string `json:"name"`
	Directory string `json:"directory"`

	// MIMEType is inferred from the file extension unless explicitly
	// supplied at creation.
	MIMEType string `json:"mimeType"`

	// Size is the byte length of the logical content.
	Size int64 `json:"size"`

	// Content is the inline payload. Present only when not chunked.
	Content []byte `json:"content,omitempty"`

	// Chunked is true when Size exceeded the chunk threshold at the
	// last write. Exactly one of Content and ChunkIDs is present.
	Chunked  bool     `json:"chunked"`
	ChunkIDs []string `json:"chunkIds,omitempty"`

	// Compression is the optional storage-encoding marker
	// (CompressionGzip), set only for text-like MIME types when the
	// caller requested compression.
	Compression string `json:"compression,omitempty"`

	// Hash is the checksum of the current content, recomputed on every
	// write. The sync engine compares it to tell real content change
	// from timestamp drift.
	Hash string `json:"hash"`

	// CreatedAt is immutable; UpdatedAt is refreshed on every content
	// mutation.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the record. The Manager clones every
// record on the way out so callers cannot corrupt cached state.
func (f *File) Clone() *File {
	if f == nil {
		return nil
	}
	clone := *f
	if f.Content != nil {
		clone.Content = make([]byte, len(f.Content))
		copy(clone.Content, f.Content)
	}
	if f.ChunkIDs != nil {
		clone.ChunkIDs = make([]string, len(f.ChunkIDs))
		copy(clone.ChunkIDs, f.ChunkIDs)
	}
	return &clone
}

// Directory is the descriptor returned by CreateDirectory. Directories
// are virtual: no independent row is persisted, and a directory exists
// exactly as long as at least one file path references it.
type Directory struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListOptions filters ListFiles results.
type ListOptions struct {
	// Directory restricts results to files in this directory: direct
	// children only, or the whole subtree when Recursive is set. Empty
	// means no filter (every file in the project, regardless of
	// Recursive).
	Directory string

	// Recursive includes files in subdirectories of Directory.
	Recursive bool

	// WithContent populates inline Content on the returned records.
	// Listings omit payloads by default; metadata is enough for
	// directory trees, stats, and sync planning.
	WithContent bool
}

// Stats is the aggregate quota and composition report for the active
// project. Recomputed from the full file list on every call.
type Stats struct {
	FileCount       int     `json:"fileCount"`
	DirectoryCount  int     `json:"directoryCount"`
	TotalSize       int64   `json:"totalSize"`
	QuotaUsed       float64 `json:"quotaUsed"`
	LargestFile     int64   `json:"largestFile"`
	ChunkedFiles    int     `json:"chunkedFiles"`
	CompressedFiles int     `json:"compressedFiles"`
}

// Limits bounds file and project sizes and sets the chunking policy.
// Zero fields take the defaults.
type Limits struct {
	// MaxFileSize is the largest accepted content length for a single
	// file. Default 10 MiB.
	MaxFileSize int64

	// MaxProjectStorage is the quota across all files in one project.
	// Default 100 MiB.
	MaxProjectStorage int64

	// ChunkThreshold is the content size above which a file is stored
	// chunked instead of inline. Default chunk.DefaultThreshold.
	ChunkThreshold int64

	// ChunkSize is the chunk payload size for chunked files. Default
	// chunk.DefaultSize.
	ChunkSize int
}

// DefaultLimits returns the stock limits applied when a field is zero.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:       10 << 20,
		MaxProjectStorage: 100 << 20,
		ChunkThreshold:    chunk.DefaultThreshold,
		ChunkSize:         chunk.DefaultSize,
	}
}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	defaults := DefaultLimits()
	if l.MaxFileSize <= 0 {
		l.MaxFileSize = defaults.MaxFileSize
	}
	if l.MaxProjectStorage <= 0 {
		l.MaxProjectStorage = defaults.MaxProjectStorage
	}
	if l.ChunkThreshold <= 0 {
		l.ChunkThreshold = defaults.ChunkThreshold
	}
	if l.ChunkSize <= 0 {
		l.ChunkSize = defaults.ChunkSize
	}
	return l
}
