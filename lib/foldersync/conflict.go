// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// Conflict is one detected divergence: the same path was modified on
// both sides since the last sync, with different content. Conflicts
// live only in the Manager's in-memory list until resolved; they are
// never persisted.
type Conflict struct {
	// Path is the folder-relative path, identical on both sides.
	Path string

	// LocalModified and RemoteModified are the modification times
	// observed when the conflict was detected.
	LocalModified  time.Time
	RemoteModified time.Time

	// LocalContent and RemoteContent are the full payloads of each
	// side at detection time. Resolution writes one of them (or a
	// caller-supplied merge) to both sides.
	LocalContent  []byte
	RemoteContent []byte
}

// Resolution selects which content settles a conflict.
type Resolution string

const (
	// ResolveLocal keeps the local content and pushes it to the store.
	ResolveLocal Resolution = "local"

	// ResolveRemote keeps the store content and overwrites the local
	// file.
	ResolveRemote Resolution = "remote"

	// ResolveMerge writes caller-supplied merged content to both
	// sides.
	ResolveMerge Resolution = "merge"
)

// Diff renders the divergence as a unified diff, local content as the
// "from" side and remote as the "to" side.
func (c *Conflict) Diff() (string, error) {
	unified := difflib.UnifiedDiff{
		A:        splitLines(string(c.LocalContent)),
		B:        splitLines(string(c.RemoteContent)),
		FromFile: "local/" + c.Path,
		ToFile:   "remote/" + c.Path,
		FromDate: c.LocalModified.Format(time.RFC3339),
		ToDate:   c.RemoteModified.Format(time.RFC3339),
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(unified)
}

// clone returns a deep copy so Status callers cannot mutate the
// Manager's conflict list through shared slices.
func (c *Conflict) clone() Conflict {
	clone := *c
	clone.LocalContent = append([]byte(nil), c.LocalContent...)
	clone.RemoteContent = append([]byte(nil), c.RemoteContent...)
	return clone
}

// splitLines splits s into lines keeping the trailing newline on each,
// which difflib needs for clean hunks.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}
