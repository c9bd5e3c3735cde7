// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package pathutil

import (
	"fmt"
	"path"
	"strings"
)

// MaxPathLength is the maximum allowed length for a normalized virtual
// path. Long enough for deeply nested function bundles, short enough to
// index comfortably.
const MaxPathLength = 1024

// Normalize converts caller-supplied path input into canonical virtual
// form: forward slashes, no leading "/" or "./", no duplicate slashes,
// no trailing slash.
//
// Rules enforced:
//   - Non-empty after trimming whitespace
//   - No ".." segments (path traversal)
//   - No empty segments once cleaned ("a//b" collapses to "a/b")
//   - Maximum 1024 characters
//
// Backslashes are treated as separators so Windows-style input
// normalizes instead of producing a one-segment path with literal
// backslashes in it.
func Normalize(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("path is empty")
	}

	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")

	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("path %q has no segments", p)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path %q escapes the project root", p)
	}
	if len(cleaned) > MaxPathLength {
		return "", fmt.Errorf("path is %d characters, maximum is %d", len(cleaned), MaxPathLength)
	}

	for _, segment := range strings.Split(cleaned, "/") {
		if segment == ".." {
			return "", fmt.Errorf("path %q contains '..' segment (path traversal)", p)
		}
	}

	return cleaned, nil
}

// Split separates a normalized path into its directory and file name
// components. The directory is empty for root-level paths and never
// carries a trailing slash.
//
//	Split("edge-functions/foo/index.ts") → ("edge-functions/foo", "index.ts")
//	Split("README.md")                   → ("", "README.md")
func Split(p string) (directory, name string) {
	index := strings.LastIndexByte(p, '/')
	if index < 0 {
		return "", p
	}
	return p[:index], p[index+1:]
}

// Join concatenates a directory and a name into a single virtual path.
// An empty directory yields the bare name.
func Join(directory, name string) string {
	if directory == "" {
		return name
	}
	return directory + "/" + name
}

// WithinDirectory reports whether path p lives under directory dir,
// either directly (recursive=false: p's own directory equals dir) or at
// any depth (recursive=true: dir is a path prefix of p on a segment
// boundary). An empty dir matches root-level paths when non-recursive
// and everything when recursive.
func WithinDirectory(p, dir string, recursive bool) bool {
	if dir == "" {
		if recursive {
			return true
		}
		return !strings.ContainsRune(p, '/')
	}
	if recursive {
		return strings.HasPrefix(p, dir+"/")
	}
	parent, _ := Split(p)
	return parent == dir
}
