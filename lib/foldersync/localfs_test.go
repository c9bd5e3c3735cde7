// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteLocalFileNewFileMode(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "out.txt")

	if err := writeLocalFile(target, []byte("payload"), time.Time{}); err != nil {
		t.Fatalf("writeLocalFile: %v", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o644 {
		t.Errorf("mode = %o, want 644", got)
	}
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("content = %q, want %q", content, "payload")
	}
}

func TestWriteLocalFilePreservesExecutableMode(t *testing.T) {
	target := filepath.Join(t.TempDir(), "deploy.sh")
	if err := os.WriteFile(target, []byte("#!/bin/sh\necho old\n"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := writeLocalFile(target, []byte("#!/bin/sh\necho new\n"), time.Time{}); err != nil {
		t.Fatalf("writeLocalFile: %v", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o755 {
		t.Errorf("mode = %o, want 755", got)
	}
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "#!/bin/sh\necho new\n" {
		t.Errorf("content = %q, want replacement", content)
	}
}

func TestWriteLocalFileSetsModTime(t *testing.T) {
	target := filepath.Join(t.TempDir(), "stamped.txt")
	stamp := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	if err := writeLocalFile(target, []byte("x"), stamp); err != nil {
		t.Fatalf("writeLocalFile: %v", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.ModTime().Equal(stamp) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), stamp)
	}
}
