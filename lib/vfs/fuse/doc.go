// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuse exposes the active project's virtual file store as a
// read-only FUSE filesystem, so ordinary tools (ls, cat, editors,
// grep) can browse stored files without going through the stackpad
// CLI. Lookups and reads resolve live against the store manager;
// chunked files are reassembled transparently on read. All write
// operations fail with EROFS — mutation goes through the manager API.
package fuse
