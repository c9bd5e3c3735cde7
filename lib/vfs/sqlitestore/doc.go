// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitestore implements the vfs.Storage contract on SQLite.
//
// One database file holds every project: a projects inventory table, a
// files table keyed by (project_id, path), and a chunks table keyed by
// (project_id, file_id, position). Every mutation of a file record and
// its chunk set runs in a single IMMEDIATE transaction, so a create or
// update either fully lands or leaves the previous state untouched.
//
// Stored blobs (inline file content and chunk payloads) are
// transparently compressed. Each blob carries a codec tag: gzip when
// the record's Compression marker demands it, otherwise zstd or LZ4
// chosen by probing a sample, with raw storage as the fallback for
// incompressible data and already-compressed MIME types. Logical sizes
// and hashes always describe the uncompressed content; compression is
// invisible above this package.
//
// The Store adds two methods beyond the vfs.Storage interface for the
// CLI: Projects, the per-project inventory with file counts and sizes,
// and DatabaseSize, the physical size of the database file.
package sqlitestore
