// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunk splits large file content into fixed-size segments and
// reassembles them, and computes the content checksums used for change
// detection.
//
// Chunks are write-once: an update to a chunked file regenerates the
// whole chunk set from the new content rather than patching segments in
// place. Each chunk carries its owning file id and ordinal position;
// the chunk id is derived from both, so a file's chunk ids are stable
// across reads but never survive a rewrite.
//
// Checksums are BLAKE3 keyed hashes with a fixed domain key, hex
// encoded. They detect real content change (as opposed to metadata or
// timestamp drift) and are not used for content addressing.
package chunk
