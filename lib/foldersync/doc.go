// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package foldersync reconciles a real on-disk directory against the
// virtual file store's edge-functions namespace.
//
// The [Manager] owns one sync session: a bound local folder, the
// runtime [Config], the in-memory conflict list, and the snapshot of
// the last successful scan. [Manager.SyncFolder] runs one full
// bidirectional reconciliation; [Manager.StartWatching] runs a cheap
// periodic change-detection pass that triggers a full sync whenever
// the local tree drifts from the snapshot.
//
// Divergent edits (both sides modified, different content) become
// [Conflict] entries rather than overwrites, and stay pending until
// resolved through [Manager.ResolveConflict]. Everything else follows
// the freshest side, gated by the configured [Direction].
package foldersync
