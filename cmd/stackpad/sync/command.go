// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package sync implements the "stackpad sync" CLI subcommands for
// reconciling a local folder against a VFS namespace.
//
// Every subcommand binds the given folder, which loads any
// .stackpad/config.jsonc overrides inside it, then runs one sync pass
// ("run"), a continuous watch loop ("watch"), or conflict resolution
// ("resolve").
package sync

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/stackpad-dev/stackpad/cmd/stackpad/cli"
	"github.com/stackpad-dev/stackpad/lib/foldersync"
)

// Command returns the top-level "sync" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "sync",
		Summary: "Sync a local folder against the store",
		Description: `Bidirectional folder synchronization.

A sync pass scans the local folder and the configured VFS namespace,
copies one-sided files across, and compares both sides of shared
paths by content checksum. Files that diverged on both sides become
conflicts; resolve them interactively with "sync resolve" or
automatically with the local-wins / remote-wins strategies.

A folder can carry a .stackpad/config.jsonc file overriding the sync
direction, namespace, and ignore patterns for that folder.`,
		Subcommands: []*cli.Command{
			runCommand(),
			watchCommand(),
			statusCommand(),
			resolveCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "One sync pass over a folder",
				Command:     "stackpad sync run ./functions",
			},
			{
				Description: "Upload-only sync",
				Command:     "stackpad sync run ./functions --direction upload",
			},
			{
				Description: "Watch a folder and sync on changes",
				Command:     "stackpad sync watch ./functions",
			},
			{
				Description: "Resolve conflicts, taking the local side everywhere",
				Command:     "stackpad sync resolve ./functions --use local",
			},
		},
	}
}

// syncFlags bundles the session flags with the per-invocation sync
// overrides shared by run and watch.
type syncFlags struct {
	session   cli.SessionFlags
	direction string
	strategy  string
}

func (f *syncFlags) addFlags(flagSet *pflag.FlagSet) {
	f.session.AddFlags(flagSet)
	flagSet.StringVar(&f.direction, "direction", "", "sync direction: bidirectional, upload, or download (overrides config)")
	flagSet.StringVar(&f.strategy, "strategy", "", "conflict strategy: prompt, local-wins, or remote-wins (overrides config)")
}

// open builds a bound sync manager for folder. The returned session
// must be closed by the caller.
func (f *syncFlags) open(ctx context.Context, folder string) (*cli.Session, *foldersync.Manager, error) {
	session, err := f.session.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	manager, err := session.SyncManager()
	if err != nil {
		session.Close(ctx)
		return nil, nil, err
	}
	cfg := manager.Config()
	if f.direction != "" {
		direction, err := foldersync.ParseDirection(f.direction)
		if err != nil {
			session.Close(ctx)
			return nil, nil, err
		}
		cfg.Direction = direction
	}
	if f.strategy != "" {
		strategy, err := foldersync.ParseStrategy(f.strategy)
		if err != nil {
			session.Close(ctx)
			return nil, nil, err
		}
		cfg.ConflictStrategy = strategy
	}
	if err := manager.SetConfig(cfg); err != nil {
		session.Close(ctx)
		return nil, nil, err
	}
	if _, err := manager.BindFolder(folder); err != nil {
		session.Close(ctx)
		return nil, nil, err
	}
	return session, manager, nil
}

func runCommand() *cli.Command {
	var flags syncFlags
	return &cli.Command{
		Name:    "run",
		Summary: "Run one sync pass over a folder",
		Usage:   "stackpad sync run <folder> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad sync run <folder>")
			}
			ctx := context.Background()
			session, manager, err := flags.open(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			result, err := manager.SyncFolder(ctx)
			if err != nil {
				return err
			}
			printResult(result)
			if len(result.Conflicts) > 0 {
				fmt.Printf("\nRun 'stackpad sync resolve %s' to resolve conflicts.\n", args[0])
				return &cli.ExitError{Code: 2}
			}
			if len(result.Errors) > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	var flags syncFlags
	return &cli.Command{
		Name:    "watch",
		Summary: "Watch a folder and sync continuously",
		Usage:   "stackpad sync watch <folder> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("watch", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad sync watch <folder>")
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, manager, err := flags.open(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Close(context.Background())

			if err := manager.StartWatching(ctx); err != nil {
				return err
			}
			fmt.Printf("Watching %s (interrupt to stop)\n", args[0])
			<-ctx.Done()
			manager.StopWatching()

			status := manager.Status()
			if len(status.Conflicts) > 0 {
				fmt.Printf("%d unresolved conflict(s); run 'stackpad sync resolve %s'\n",
					len(status.Conflicts), args[0])
			}
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	var flags syncFlags
	return &cli.Command{
		Name:    "status",
		Summary: "Show the sync configuration for a folder",
		Usage:   "stackpad sync status <folder> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad sync status <folder>")
			}
			ctx := context.Background()
			session, manager, err := flags.open(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			status := manager.Status()
			cfg := manager.Config()
			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Folder:\t%s\n", status.Folder)
			fmt.Fprintf(tw, "Project:\t%s\n", session.Manager.CurrentProject())
			fmt.Fprintf(tw, "Namespace:\t%s\n", session.Config.Sync.Namespace)
			fmt.Fprintf(tw, "Direction:\t%s\n", cfg.Direction)
			fmt.Fprintf(tw, "Strategy:\t%s\n", cfg.ConflictStrategy)
			fmt.Fprintf(tw, "Watch interval:\t%s\n", cfg.WatchInterval)
			fmt.Fprintf(tw, "Ignore patterns:\t%d\n", len(cfg.IgnorePatterns))
			return tw.Flush()
		},
	}
}

func resolveCommand() *cli.Command {
	var flags syncFlags
	var use string
	var mergeFile string
	return &cli.Command{
		Name:    "resolve",
		Summary: "Resolve sync conflicts",
		Usage:   "stackpad sync resolve <folder> [path] [flags]",
		Description: `Detect and resolve conflicts in a folder.

Runs a sync pass to find conflicts, then resolves them. With --use,
every conflict (or just the named path) takes the chosen side. With
--merge-file, the named path takes the merged content from a local
file. Without flags, an interactive resolver opens on a terminal.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			flagSet.StringVar(&use, "use", "", "take one side everywhere: local or remote")
			flagSet.StringVar(&mergeFile, "merge-file", "", "resolve a single path with merged content from this file")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("usage: stackpad sync resolve <folder> [path]")
			}
			ctx := context.Background()
			session, manager, err := flags.open(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			result, err := manager.SyncFolder(ctx)
			if err != nil {
				return err
			}
			conflicts := manager.Status().Conflicts
			if len(conflicts) == 0 {
				printResult(result)
				fmt.Println("No conflicts.")
				return nil
			}

			onlyPath := ""
			if len(args) == 2 {
				onlyPath = args[1]
			}

			switch {
			case mergeFile != "":
				if onlyPath == "" {
					return fmt.Errorf("--merge-file requires a conflict path argument")
				}
				merged, err := os.ReadFile(mergeFile)
				if err != nil {
					return fmt.Errorf("reading merge file: %w", err)
				}
				if err := manager.ResolveConflict(ctx, onlyPath, foldersync.ResolveMerge, merged); err != nil {
					return err
				}
				fmt.Printf("Resolved %s with merged content\n", onlyPath)
				return nil

			case use != "":
				resolution, err := parseSide(use)
				if err != nil {
					return err
				}
				resolved := 0
				for _, conflict := range conflicts {
					if onlyPath != "" && conflict.Path != onlyPath {
						continue
					}
					if err := manager.ResolveConflict(ctx, conflict.Path, resolution, nil); err != nil {
						return fmt.Errorf("resolving %s: %w", conflict.Path, err)
					}
					resolved++
				}
				if onlyPath != "" && resolved == 0 {
					return fmt.Errorf("no conflict on path %s", onlyPath)
				}
				fmt.Printf("Resolved %d conflict(s) using the %s side\n", resolved, use)
				return nil

			default:
				if !cli.IsInteractive() {
					return fmt.Errorf("no terminal; use --use local|remote or --merge-file")
				}
				return runResolver(ctx, manager, conflicts)
			}
		},
	}
}

func parseSide(side string) (foldersync.Resolution, error) {
	switch side {
	case "local":
		return foldersync.ResolveLocal, nil
	case "remote":
		return foldersync.ResolveRemote, nil
	default:
		return "", fmt.Errorf("invalid --use value %q (want local or remote)", side)
	}
}

func printResult(result *foldersync.Result) {
	fmt.Printf("Uploaded %d, downloaded %d, ignored %d (%s)\n",
		result.Uploaded, result.Downloaded, result.Ignored, result.Duration.Round(time.Millisecond))
	for _, conflict := range result.Conflicts {
		fmt.Printf("  conflict: %s (local %s, remote %s)\n", conflict.Path,
			conflict.LocalModified.Format(time.RFC3339),
			conflict.RemoteModified.Format(time.RFC3339))
	}
	for _, syncError := range result.Errors {
		fmt.Fprintf(os.Stderr, "  error: %s\n", syncError)
	}
}
