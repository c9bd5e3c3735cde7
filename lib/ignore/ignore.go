// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package ignore

import (
	"path"
	"strings"
)

// DefaultPatterns returns the stock ignore list applied to new sync
// sessions: dependency directories, VCS metadata, OS artifacts, log and
// editor temp files, build output, and stackpad's own per-folder
// metadata directory. Callers may append to or replace the list via
// sync configuration.
func DefaultPatterns() []string {
	return []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/dist/**",
		"**/build/**",
		"**/.stackpad/**",
		".DS_Store",
		"Thumbs.db",
		"*.log",
		"*.tmp",
		"*.swp",
	}
}

// Matcher is a compiled set of ignore patterns. The zero value matches
// nothing; use New.
type Matcher struct {
	patterns [][]string
}

// New compiles patterns into a Matcher. Patterns are split into
// segments once here so Match does no per-call parsing. Empty patterns
// are dropped.
func New(patterns []string) *Matcher {
	m := &Matcher{patterns: make([][]string, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// A slash-free pattern matches one segment at any depth,
		// which is the same as wrapping it in "**" on both sides.
		var segments []string
		if !strings.Contains(p, "/") {
			segments = []string{"**", p, "**"}
		} else {
			segments = strings.Split(strings.Trim(p, "/"), "/")
		}
		m.patterns = append(m.patterns, segments)
	}
	return m
}

// Match reports whether p matches any pattern in the set. p must be a
// normalized slash-separated path.
func (m *Matcher) Match(p string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	pathSegments := strings.Split(p, "/")
	for _, patternSegments := range m.patterns {
		if matchSegments(patternSegments, pathSegments) {
			return true
		}
	}
	return false
}

// Match reports whether p matches a single pattern. Convenience wrapper
// for one-off checks; compile a Matcher for repeated use.
func Match(pattern, p string) bool {
	return New([]string{pattern}).Match(p)
}

// matchSegments matches pattern segments against path segments with
// "**" consuming zero or more whole segments. Two-pointer walk with
// backtracking to the most recent "**": when a literal segment
// mismatches, the "**" absorbs one more path segment and the walk
// retries from there.
func matchSegments(patternSegments, pathSegments []string) bool {
	pi, si := 0, 0
	starPi, starSi := -1, -1

	for si < len(pathSegments) {
		switch {
		case pi < len(patternSegments) && patternSegments[pi] == "**":
			starPi, starSi = pi, si
			pi++
		case pi < len(patternSegments) && segmentMatch(patternSegments[pi], pathSegments[si]):
			pi++
			si++
		case starPi >= 0:
			starSi++
			pi = starPi + 1
			si = starSi
		default:
			return false
		}
	}

	// Path consumed; any remaining pattern segments must all be "**"
	// (each matching zero segments).
	for pi < len(patternSegments) && patternSegments[pi] == "**" {
		pi++
	}
	return pi == len(patternSegments)
}

// segmentMatch matches one pattern segment against one path segment
// using path.Match semantics. Malformed segments never match.
func segmentMatch(pattern, segment string) bool {
	matched, err := path.Match(pattern, segment)
	return err == nil && matched
}
