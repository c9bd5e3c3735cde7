// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package chunk

import (
	"fmt"
	"sort"
)

const (
	// DefaultSize is the chunk payload size used when the caller does
	// not configure one. 64 KiB keeps individual rows comfortably small
	// for the storage layer while bounding per-file chunk counts.
	DefaultSize = 64 * 1024

	// DefaultThreshold is the content size above which a file switches
	// from inline storage to chunked storage.
	DefaultThreshold = 256 * 1024
)

// Chunk is one contiguous slice of a file's content.
type Chunk struct {
	// ID is the chunk's storage identifier, derived from the owning
	// file id and the chunk position. See ID.
	ID string

	// FileID is the id of the owning file record.
	FileID string

	// Position is the zero-based ordinal of this chunk within the
	// file's content.
	Position int

	// Data is the chunk payload.
	Data []byte
}

// ID derives the storage identifier for the chunk of fileID at the
// given position.
//
//	ID("f7c3…", 2) → "f7c3….2"
func ID(fileID string, position int) string {
	return fmt.Sprintf("%s.%d", fileID, position)
}

// Split cuts content into size-byte chunks owned by fileID. The final
// chunk holds the remainder and may be shorter. Empty content yields
// nil. Panics if size is not positive.
//
// Chunk payloads are copies, so later mutation of content does not
// alias into the returned chunks.
func Split(fileID string, content []byte, size int) []Chunk {
	if size <= 0 {
		panic("chunk: non-positive chunk size for Split")
	}
	if len(content) == 0 {
		return nil
	}

	count := (len(content) + size - 1) / size
	chunks := make([]Chunk, 0, count)
	for position := 0; position < count; position++ {
		start := position * size
		end := min(start+size, len(content))
		data := make([]byte, end-start)
		copy(data, content[start:end])
		chunks = append(chunks, Chunk{
			ID:       ID(fileID, position),
			FileID:   fileID,
			Position: position,
			Data:     data,
		})
	}
	return chunks
}

// Join reassembles file content from its chunks. Input order does not
// matter; chunks are sorted by position first. Returns an error if the
// positions do not form the contiguous sequence 0..n-1 (a missing or
// duplicated chunk means the stored file is corrupt and must not be
// silently reassembled).
func Join(chunks []Chunk) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	total := 0
	for i, c := range sorted {
		if c.Position != i {
			return nil, fmt.Errorf("chunk sequence broken: want position %d, have %d (file %s)", i, c.Position, c.FileID)
		}
		total += len(c.Data)
	}

	content := make([]byte, 0, total)
	for _, c := range sorted {
		content = append(content, c.Data...)
	}
	return content, nil
}
