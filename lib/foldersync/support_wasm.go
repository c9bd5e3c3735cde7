// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

//go:build js || wasip1

package foldersync

// HasFolderSyncSupport reports whether the platform exposes a real
// directory tree to bind. Browser and WASI builds have no local
// filesystem to reconcile against.
func HasFolderSyncSupport() bool { return false }
