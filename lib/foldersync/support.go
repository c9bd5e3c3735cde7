// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !(js || wasip1)

package foldersync

// HasFolderSyncSupport reports whether the platform exposes a real
// directory tree to bind. UI layers must check this before offering
// sync. True everywhere except browser and WASI builds.
func HasFolderSyncSupport() bool { return true }
