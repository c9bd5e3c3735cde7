// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "stackpad",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "fs",
				Run: func(args []string) error {
					called = "fs"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"fs"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "fs" {
		t.Errorf("dispatched to %q, want %q", called, "fs")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "stackpad",
		Subcommands: []*Command{
			{
				Name: "sync",
				Subcommands: []*Command{
					{
						Name: "run",
						Run: func(args []string) error {
							called = "sync run"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"sync", "run", "./functions"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "sync run" {
		t.Errorf("dispatched to %q, want %q", called, "sync run")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "./functions" {
		t.Errorf("args = %v, want [./functions]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var storePath string
	var target string

	command := &Command{
		Name: "cat",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("cat", pflag.ContinueOnError)
			flagSet.StringVar(&storePath, "store", "/default.db", "store path")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--store", "/custom.db", "src/index.ts"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if storePath != "/custom.db" {
		t.Errorf("storePath = %q, want %q", storePath, "/custom.db")
	}
	if target != "src/index.ts" {
		t.Errorf("target = %q, want %q", target, "src/index.ts")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "ls",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ls", pflag.ContinueOnError)
			flagSet.Bool("recursive", false, "descend into subdirectories")
			flagSet.String("store", "/default.db", "store path")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--recrusive"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --recursive") {
		t.Errorf("error = %q, want suggestion for '--recursive'", errStr)
	}
	// Suggestion should be on the same line as the error, not buried.
	if !strings.Contains(errStr, "recrusive") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	// Should include a pointer to --help.
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "ls",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ls", pflag.ContinueOnError)
			flagSet.Bool("recursive", false, "descend into subdirectories")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "stackpad",
		Subcommands: []*Command{
			{Name: "project"},
			{Name: "sync"},
			{Name: "version"},
		},
	}

	err := root.Execute([]string{"projct"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"project\"") {
		t.Errorf("error = %q, want suggestion for 'project'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "stackpad",
		Subcommands: []*Command{
			{Name: "project"},
			{Name: "sync"},
		},
	}

	err := root.Execute([]string{"zzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "stackpad",
				Summary: "Project-scoped virtual file system",
				Subcommands: []*Command{
					{Name: "fs", Summary: "File operations"},
				},
			}

			err := root.Execute([]string{helpArg})
			if err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "stackpad",
		Subcommands: []*Command{
			{Name: "fs", Summary: "File operations"},
		},
	}

	err := root.Execute([]string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "stackpad",
		Description: "Project-scoped virtual file system with folder sync.",
		Subcommands: []*Command{
			{Name: "fs", Summary: "Work with files in the store"},
			{Name: "sync", Summary: "Sync a local folder against the store"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "List the active project's files",
				Command:     "stackpad fs ls --recursive",
			},
			{
				Description: "Sync a local folder",
				Command:     "stackpad sync run ./functions",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	// Verify structural elements are present.
	for _, want := range []string{
		"Project-scoped virtual file system with folder sync.",
		"Usage:",
		"stackpad <command> [flags]",
		"Commands:",
		"fs",
		"Work with files in the store",
		"sync",
		"Sync a local folder against the store",
		"Examples:",
		"stackpad fs ls --recursive",
		"stackpad sync run ./functions",
		"Run 'stackpad <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "ls",
		Summary: "List files",
		Usage:   "stackpad fs ls [directory] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ls", pflag.ContinueOnError)
			flagSet.String("store", "", "SQLite store file")
			flagSet.Bool("recursive", false, "descend into subdirectories")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"stackpad fs ls [directory] [flags]",
		"Flags:",
		"store",
		"recursive",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "stackpad"}
	syncCommand := &Command{Name: "sync", parent: root}
	run := &Command{Name: "run", parent: syncCommand}

	if got := root.fullName(); got != "stackpad" {
		t.Errorf("root.fullName() = %q, want %q", got, "stackpad")
	}
	if got := syncCommand.fullName(); got != "stackpad sync" {
		t.Errorf("sync.fullName() = %q, want %q", got, "stackpad sync")
	}
	if got := run.fullName(); got != "stackpad sync run" {
		t.Errorf("run.fullName() = %q, want %q", got, "stackpad sync run")
	}
}
