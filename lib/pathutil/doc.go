// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathutil provides pure helpers for virtual file paths: path
// normalization and validation, directory/name splitting, MIME type
// inference from file extensions, and byte-size formatting.
//
// Virtual paths are project-relative, slash-separated, and never begin
// with "/". Normalize is the single entry point that turns caller input
// into this canonical form; every layer above stores and compares only
// normalized paths.
//
// The package has no state and no dependencies beyond the standard
// library, so it is safe to call from any goroutine.
package pathutil
