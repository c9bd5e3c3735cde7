// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete Stackpad CLI command tree.
package commands

import (
	"fmt"

	"github.com/stackpad-dev/stackpad/cmd/stackpad/cli"
	fscmd "github.com/stackpad-dev/stackpad/cmd/stackpad/fs"
	mountcmd "github.com/stackpad-dev/stackpad/cmd/stackpad/mount"
	projectcmd "github.com/stackpad-dev/stackpad/cmd/stackpad/project"
	synccmd "github.com/stackpad-dev/stackpad/cmd/stackpad/sync"
	"github.com/stackpad-dev/stackpad/lib/version"
)

// Root builds and returns the complete Stackpad CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "stackpad",
		Description: `Stackpad: project-scoped virtual file system with folder sync.

Files live in a single SQLite database, organized per project. A
bidirectional sync engine mirrors a VFS namespace against a local
folder, with conflict detection and pluggable resolution.`,
		Subcommands: []*cli.Command{
			fscmd.Command(),
			projectcmd.Command(),
			synccmd.Command(),
			mountcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ []string) error {
					fmt.Printf("stackpad %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "List the active project's files",
				Command:     "stackpad fs ls --recursive",
			},
			{
				Description: "Store a local file in the VFS",
				Command:     "stackpad fs put src/index.ts --from ./index.ts",
			},
			{
				Description: "Sync a local folder against the edge-functions namespace",
				Command:     "stackpad sync run ./functions",
			},
			{
				Description: "Watch a folder and sync continuously",
				Command:     "stackpad sync watch ./functions",
			},
			{
				Description: "Mount the active project read-only via FUSE",
				Command:     "stackpad mount /mnt/stackpad",
			},
		},
	}
}
