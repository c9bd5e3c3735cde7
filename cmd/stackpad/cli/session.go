// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/stackpad-dev/stackpad/lib/config"
	"github.com/stackpad-dev/stackpad/lib/foldersync"
	"github.com/stackpad-dev/stackpad/lib/vfs"
	"github.com/stackpad-dev/stackpad/lib/vfs/sqlitestore"
)

// SessionFlags are the global flags shared by every command that
// touches the store. Flag values override the config file field by
// field.
type SessionFlags struct {
	ConfigPath string
	StorePath  string
	Project    string
	LogLevel   string
}

// AddFlags registers the shared flags on a command's flag set.
func (f *SessionFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.ConfigPath, "config", "", "config file (default $STACKPAD_CONFIG, else built-in defaults)")
	flagSet.StringVar(&f.StorePath, "store", "", "SQLite store file (overrides config)")
	flagSet.StringVar(&f.Project, "project", "", "project to operate on (overrides config)")
	flagSet.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

// Session is an opened store bound to a project for the duration of
// one command. Construct with SessionFlags.Open; always Close.
type Session struct {
	Config  *config.Config
	Store   *sqlitestore.Store
	Manager *vfs.Manager
	Logger  *slog.Logger
}

// Open loads the configuration, opens the SQLite store, and
// initializes the VFS manager for the selected project.
func (f *SessionFlags) Open(ctx context.Context) (*Session, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	if f.StorePath != "" {
		cfg.Store.Path = f.StorePath
	}
	if f.Project != "" {
		cfg.Store.Project = f.Project
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}

	logger := NewLogger(ParseLevel(cfg.Log.Level))

	maxFileSize, maxProjectStorage, chunkThreshold, chunkSize, err := cfg.Store.Sizes()
	if err != nil {
		return nil, fmt.Errorf("store limits: %w", err)
	}

	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}
	store, err := sqlitestore.Open(sqlitestore.Config{
		Path:   cfg.Store.Path,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Store.Path, err)
	}

	manager, err := vfs.NewManager(vfs.Options{
		Storage: store,
		Limits: vfs.Limits{
			MaxFileSize:       maxFileSize,
			MaxProjectStorage: maxProjectStorage,
			ChunkThreshold:    chunkThreshold,
			ChunkSize:         chunkSize,
		},
		Logger: logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	if err := manager.Initialize(ctx, cfg.Store.Project); err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing project %s: %w", cfg.Store.Project, err)
	}

	return &Session{
		Config:  cfg,
		Store:   store,
		Manager: manager,
		Logger:  logger,
	}, nil
}

// Close releases the manager and the underlying store.
func (s *Session) Close(ctx context.Context) {
	if err := s.Manager.Close(ctx); err != nil {
		s.Logger.Warn("closing manager", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		s.Logger.Warn("closing store", "error", err)
	}
}

// SyncManager builds a folder sync manager from the session's sync
// configuration.
func (s *Session) SyncManager() (*foldersync.Manager, error) {
	direction, err := foldersync.ParseDirection(s.Config.Sync.Direction)
	if err != nil {
		return nil, err
	}
	strategy, err := foldersync.ParseStrategy(s.Config.Sync.ConflictStrategy)
	if err != nil {
		return nil, err
	}
	return foldersync.NewManager(foldersync.Options{
		VFS:       s.Manager,
		Namespace: s.Config.Sync.Namespace,
		Logger:    s.Logger,
		Config: foldersync.Config{
			Direction:          direction,
			IgnorePatterns:     s.Config.Sync.EffectiveIgnorePatterns(),
			AutoSync:           s.Config.Sync.AutoSync,
			ConflictStrategy:   strategy,
			WatchInterval:      s.Config.Sync.WatchIntervalDuration(),
			TimestampTolerance: s.Config.Sync.TimestampToleranceDuration(),
		},
	})
}
