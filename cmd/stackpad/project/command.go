// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package project implements the "stackpad project" CLI subcommands
// for inspecting the projects stored in the database.
package project

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/stackpad-dev/stackpad/cmd/stackpad/cli"
	"github.com/stackpad-dev/stackpad/lib/pathutil"
)

// Command returns the top-level "project" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "project",
		Summary: "Inspect projects in the store",
		Description: `Inspect the projects held in the SQLite store.

Every file belongs to exactly one project. Commands operate on the
project named by --project (or the config default); "project list"
shows all of them.`,
		Subcommands: []*cli.Command{
			listCommand(),
			currentCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List all projects with sizes",
				Command:     "stackpad project list",
			},
			{
				Description: "Show the active project",
				Command:     "stackpad project current",
			},
		},
	}
}

func listCommand() *cli.Command {
	var session cli.SessionFlags
	return &cli.Command{
		Name:    "list",
		Summary: "List all projects in the store",
		Usage:   "stackpad project list [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			ctx := context.Background()
			s, err := session.Open(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			projects, err := s.Store.Projects(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "PROJECT\tFILES\tSIZE\tON DISK\tLAST OPENED\n")
			for _, info := range projects {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
					info.ID, info.FileCount,
					pathutil.FormatSize(info.TotalSize),
					pathutil.FormatSize(info.StoredSize),
					info.LastOpenedAt.Format("2006-01-02 15:04:05"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			size, err := s.Store.DatabaseSize(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("\nDatabase: %s (%s)\n", s.Config.Store.Path, pathutil.FormatSize(size))
			return nil
		},
	}
}

func currentCommand() *cli.Command {
	var session cli.SessionFlags
	return &cli.Command{
		Name:    "current",
		Summary: "Show the active project",
		Usage:   "stackpad project current [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("current", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			ctx := context.Background()
			s, err := session.Open(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)
			fmt.Println(s.Manager.CurrentProject())
			return nil
		},
	}
}
