// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package ignore matches slash-separated paths against gitignore-style
// glob patterns. The sync engine uses it to exclude dependency
// directories, VCS metadata, OS artifacts, and build output from folder
// scans.
//
// Pattern language:
//
//   - "*" matches any single path segment (never crosses "/")
//   - "?" matches a single non-slash character
//   - "**" matches zero or more whole segments and may appear any
//     number of times in one pattern
//   - a pattern without "/" matches a single segment at any depth,
//     so "*.log" ignores "app.log" and "logs/app.log" alike
//
// Malformed patterns never match. A path is ignored if it matches any
// pattern in the configured set.
package ignore
