// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package foldersync

import (
	"testing"
	"time"
)

func TestParseDirection(t *testing.T) {
	for _, valid := range []string{"bidirectional", "upload", "download"} {
		if _, err := ParseDirection(valid); err != nil {
			t.Errorf("ParseDirection(%q): %v", valid, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("ParseDirection accepted an unknown direction")
	}
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"prompt", "local-wins", "remote-wins"} {
		if _, err := ParseStrategy(valid); err != nil {
			t.Errorf("ParseStrategy(%q): %v", valid, err)
		}
	}
	if _, err := ParseStrategy("coin-flip"); err == nil {
		t.Error("ParseStrategy accepted an unknown strategy")
	}
}

func TestDirectionGates(t *testing.T) {
	tests := []struct {
		direction Direction
		up, down  bool
	}{
		{Bidirectional, true, true},
		{Upload, true, false},
		{Download, false, true},
	}
	for _, test := range tests {
		if got := test.direction.allowsUpload(); got != test.up {
			t.Errorf("%s.allowsUpload() = %v, want %v", test.direction, got, test.up)
		}
		if got := test.direction.allowsDownload(); got != test.down {
			t.Errorf("%s.allowsDownload() = %v, want %v", test.direction, got, test.down)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.Direction != Bidirectional {
		t.Errorf("Direction = %q", cfg.Direction)
	}
	if cfg.ConflictStrategy != Prompt {
		t.Errorf("ConflictStrategy = %q", cfg.ConflictStrategy)
	}
	if cfg.WatchInterval != 2*time.Second {
		t.Errorf("WatchInterval = %s", cfg.WatchInterval)
	}
	if cfg.TimestampTolerance != time.Second {
		t.Errorf("TimestampTolerance = %s", cfg.TimestampTolerance)
	}
	if len(cfg.IgnorePatterns) == 0 {
		t.Error("default ignore patterns missing")
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	if err := valid.validate(); err != nil {
		t.Fatalf("DefaultConfig must validate: %v", err)
	}

	bad := valid
	bad.Direction = "sideways"
	if err := bad.validate(); err == nil {
		t.Error("bad direction passed validation")
	}

	bad = valid
	bad.ConflictStrategy = "coin-flip"
	if err := bad.validate(); err == nil {
		t.Error("bad strategy passed validation")
	}

	bad = valid
	bad.TimestampTolerance = -time.Second
	if err := bad.validate(); err == nil {
		t.Error("negative tolerance passed validation")
	}
}
