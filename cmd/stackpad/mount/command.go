// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package mount implements the "stackpad mount" CLI command exposing
// the active project as a read-only FUSE filesystem.
package mount

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/stackpad-dev/stackpad/cmd/stackpad/cli"
	vfsfuse "github.com/stackpad-dev/stackpad/lib/vfs/fuse"
)

// Command returns the "mount" command.
func Command() *cli.Command {
	var session cli.SessionFlags
	var allowOther bool
	return &cli.Command{
		Name:    "mount",
		Summary: "Mount the active project read-only via FUSE",
		Usage:   "stackpad mount <mountpoint> [flags]",
		Description: `Expose the active project's files as a read-only filesystem.

The mount serves file metadata and content straight from the store;
chunked files are assembled transparently. Writes are rejected with
EROFS. The mount stays up until interrupted.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("mount", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			flagSet.BoolVar(&allowOther, "allow-other", false, "allow other users to access the mount")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Mount and browse with regular tools",
				Command:     "stackpad mount /mnt/stackpad && ls /mnt/stackpad",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad mount <mountpoint>")
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := session.Open(ctx)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			server, err := vfsfuse.Mount(vfsfuse.Options{
				Mountpoint: args[0],
				Manager:    s.Manager,
				AllowOther: allowOther,
				Logger:     s.Logger,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Mounted project %s at %s (interrupt to unmount)\n",
				s.Manager.CurrentProject(), args[0])

			<-ctx.Done()
			if err := server.Unmount(); err != nil {
				return fmt.Errorf("unmounting: %w", err)
			}
			server.Wait()
			return nil
		},
	}
}
