// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package vfs implements Stackpad's project-scoped virtual file system:
// file records with inline or chunked content, virtual directories
// derived from path prefixes, per-project size quotas, and atomic
// project switching.
//
// The Manager is the single source of truth for file-system semantics.
// It validates paths, enforces the per-file size limit and the project
// quota, decides inline-versus-chunked representation on every write,
// and scopes every operation to the one active project. Persistence is
// delegated to a Storage implementation (see lib/vfs/sqlitestore for
// the production adapter).
//
// # Projects
//
// A Manager serves exactly one project at a time. Initialize binds the
// first project; calling it again with the same id is a no-op, and
// calling it with a different id performs an atomic project switch.
// Concurrent Initialize calls coalesce onto the same in-flight attempt
// instead of racing, and operations issued while a switch is running
// fail fast with ErrSwitchInProgress rather than interleaving two
// projects' writes.
//
// # Content Representation
//
// Content at or below the chunk threshold is stored inline on the file
// record. Above the threshold it is split into fixed-size chunks and
// the record carries the ordered chunk id list instead. Exactly one of
// the two representations is ever present. The decision is re-evaluated
// on every update, so a file moves freely between representations as
// its size crosses the threshold; chunks are regenerated wholesale,
// never patched.
//
// # Immutability
//
// Every File returned by the Manager is a defensive copy. Callers may
// mutate what they receive without corrupting the Manager's or the
// Storage layer's state.
package vfs
