// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package fs implements the "stackpad fs" CLI subcommands for direct
// file operations against the virtual file system.
//
// Every subcommand opens the configured SQLite store, binds the
// selected project, performs one operation, and closes the store.
// Store location and project selection come from the config file and
// can be overridden with the shared --store and --project flags.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/stackpad-dev/stackpad/cmd/stackpad/cli"
	"github.com/stackpad-dev/stackpad/lib/pathutil"
	"github.com/stackpad-dev/stackpad/lib/vfs"
)

// Command returns the top-level "fs" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "fs",
		Summary: "Work with files in the virtual file system",
		Description: `Direct file operations against the project-scoped store.

Paths are project-relative and use forward slashes. Files above the
chunk threshold are stored in fixed-size chunks transparently; cat and
put always operate on whole files.`,
		Subcommands: []*cli.Command{
			listCommand(),
			catCommand(),
			putCommand(),
			infoCommand(),
			removeCommand(),
			mkdirCommand(),
			rmdirCommand(),
			statsCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List everything in the active project",
				Command:     "stackpad fs ls --recursive",
			},
			{
				Description: "Print a file to stdout",
				Command:     "stackpad fs cat edge-functions/handler.ts",
			},
			{
				Description: "Store stdin under a VFS path",
				Command:     "cat handler.ts | stackpad fs put edge-functions/handler.ts",
			},
			{
				Description: "Show quota usage for the project",
				Command:     "stackpad fs stats",
			},
		},
	}
}

func listCommand() *cli.Command {
	var session cli.SessionFlags
	var recursive bool
	var long bool
	return &cli.Command{
		Name:    "ls",
		Summary: "List files, optionally below a directory",
		Usage:   "stackpad fs ls [directory] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ls", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			flagSet.BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
			flagSet.BoolVarP(&long, "long", "l", false, "show size, MIME type, and modification time")
			return flagSet
		},
		Run: func(args []string) error {
			directory := ""
			if len(args) > 0 {
				directory = args[0]
			}
			return withSession(&session, func(ctx context.Context, s *cli.Session) error {
				files, err := s.Manager.ListFiles(ctx, vfs.ListOptions{
					Directory: directory,
					Recursive: recursive,
				})
				if err != nil {
					return err
				}
				if len(files) == 0 {
					return nil
				}
				sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
				if !long {
					for _, file := range files {
						fmt.Println(file.Path)
					}
					return nil
				}
				tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
				for _, file := range files {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						pathutil.FormatSize(file.Size), file.MIMEType,
						file.UpdatedAt.Format("2006-01-02 15:04:05"), file.Path)
				}
				return tw.Flush()
			})
		},
	}
}

func catCommand() *cli.Command {
	var session cli.SessionFlags
	var output string
	return &cli.Command{
		Name:    "cat",
		Summary: "Print a file's content to stdout",
		Usage:   "stackpad fs cat <path> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("cat", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			flagSet.StringVarP(&output, "output", "o", "", "write to file instead of stdout")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad fs cat <path>")
			}
			return withSession(&session, func(ctx context.Context, s *cli.Session) error {
				content, err := s.Manager.ReadFileContent(ctx, args[0])
				if err != nil {
					return err
				}
				if content == nil {
					return fmt.Errorf("file not found: %s", args[0])
				}
				if output != "" {
					return os.WriteFile(output, content, 0o644)
				}
				_, err = os.Stdout.Write(content)
				return err
			})
		},
	}
}

func putCommand() *cli.Command {
	var session cli.SessionFlags
	var from string
	var mimeType string
	var compress bool
	return &cli.Command{
		Name:    "put",
		Summary: "Create or overwrite a file from stdin or a local file",
		Usage:   "stackpad fs put <path> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("put", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			flagSet.StringVar(&from, "from", "", "read content from this local file instead of stdin")
			flagSet.StringVar(&mimeType, "mime-type", "", "override the MIME type inferred from the extension")
			flagSet.BoolVar(&compress, "compress", false, "store text content gzip-compressed")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad fs put <path>")
			}
			var content []byte
			var err error
			if from != "" {
				content, err = os.ReadFile(from)
			} else {
				content, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("reading content: %w", err)
			}
			return withSession(&session, func(ctx context.Context, s *cli.Session) error {
				path := args[0]
				existing, err := s.Manager.ReadFile(ctx, path)
				if err != nil {
					return err
				}
				var file *vfs.File
				if existing == nil {
					file, err = s.Manager.CreateFile(ctx, path, vfs.CreateOptions{
						Content:  content,
						MIMEType: mimeType,
						Compress: compress,
					})
				} else {
					file, err = s.Manager.UpdateFile(ctx, path, vfs.Update{
						Content:  content,
						MIMEType: mimeType,
						Compress: &compress,
					})
				}
				if err != nil {
					return err
				}
				fmt.Printf("%s (%s)\n", file.Path, pathutil.FormatSize(file.Size))
				return nil
			})
		},
	}
}

func infoCommand() *cli.Command {
	var session cli.SessionFlags
	return &cli.Command{
		Name:    "info",
		Summary: "Show a file's metadata",
		Usage:   "stackpad fs info <path> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("info", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad fs info <path>")
			}
			return withSession(&session, func(ctx context.Context, s *cli.Session) error {
				file, err := s.Manager.ReadFile(ctx, args[0])
				if err != nil {
					return err
				}
				if file == nil {
					return fmt.Errorf("file not found: %s", args[0])
				}
				tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Path:\t%s\n", file.Path)
				fmt.Fprintf(tw, "Project:\t%s\n", file.ProjectID)
				fmt.Fprintf(tw, "Size:\t%s\n", pathutil.FormatSize(file.Size))
				fmt.Fprintf(tw, "MIME type:\t%s\n", file.MIMEType)
				fmt.Fprintf(tw, "Hash:\t%s\n", file.Hash)
				fmt.Fprintf(tw, "Chunked:\t%t\n", file.Chunked)
				if file.Chunked {
					fmt.Fprintf(tw, "Chunks:\t%d\n", len(file.ChunkIDs))
				}
				if file.Compression != "" {
					fmt.Fprintf(tw, "Compression:\t%s\n", file.Compression)
				}
				fmt.Fprintf(tw, "Created:\t%s\n", file.CreatedAt.Format("2006-01-02 15:04:05 MST"))
				fmt.Fprintf(tw, "Updated:\t%s\n", file.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
				return tw.Flush()
			})
		},
	}
}

func removeCommand() *cli.Command {
	var session cli.SessionFlags
	return &cli.Command{
		Name:    "rm",
		Summary: "Delete a file",
		Usage:   "stackpad fs rm <path> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("rm", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad fs rm <path>")
			}
			return withSession(&session, func(ctx context.Context, s *cli.Session) error {
				deleted, err := s.Manager.DeleteFile(ctx, args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("file not found: %s", args[0])
				}
				return nil
			})
		},
	}
}

func mkdirCommand() *cli.Command {
	var session cli.SessionFlags
	return &cli.Command{
		Name:    "mkdir",
		Summary: "Create a directory marker",
		Usage:   "stackpad fs mkdir <path> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("mkdir", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad fs mkdir <path>")
			}
			return withSession(&session, func(ctx context.Context, s *cli.Session) error {
				_, err := s.Manager.CreateDirectory(ctx, args[0])
				return err
			})
		},
	}
}

func rmdirCommand() *cli.Command {
	var session cli.SessionFlags
	var recursive bool
	return &cli.Command{
		Name:    "rmdir",
		Summary: "Delete a directory",
		Usage:   "stackpad fs rmdir <path> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("rmdir", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			flagSet.BoolVarP(&recursive, "recursive", "r", false, "also delete contained files and subdirectories")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: stackpad fs rmdir <path>")
			}
			return withSession(&session, func(ctx context.Context, s *cli.Session) error {
				deleted, err := s.Manager.DeleteDirectory(ctx, args[0], recursive)
				if err != nil {
					var validation *vfs.ValidationError
					if errors.As(err, &validation) {
						return fmt.Errorf("%s (use --recursive to delete contents)", validation.Message)
					}
					return err
				}
				if !deleted {
					return fmt.Errorf("directory not found: %s", args[0])
				}
				return nil
			})
		},
	}
}

func statsCommand() *cli.Command {
	var session cli.SessionFlags
	return &cli.Command{
		Name:    "stats",
		Summary: "Show storage statistics for the active project",
		Usage:   "stackpad fs stats [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("stats", pflag.ContinueOnError)
			session.AddFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			return withSession(&session, func(ctx context.Context, s *cli.Session) error {
				stats, err := s.Manager.Stats(ctx)
				if err != nil {
					return err
				}
				limits := s.Manager.Limits()
				tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Project:\t%s\n", s.Manager.CurrentProject())
				fmt.Fprintf(tw, "Files:\t%d\n", stats.FileCount)
				fmt.Fprintf(tw, "Directories:\t%d\n", stats.DirectoryCount)
				fmt.Fprintf(tw, "Total size:\t%s\n", pathutil.FormatSize(stats.TotalSize))
				fmt.Fprintf(tw, "Quota:\t%s of %s (%.1f%%)\n",
					pathutil.FormatSize(stats.TotalSize),
					pathutil.FormatSize(limits.MaxProjectStorage),
					stats.QuotaUsed*100)
				fmt.Fprintf(tw, "Largest file:\t%s\n", pathutil.FormatSize(stats.LargestFile))
				fmt.Fprintf(tw, "Chunked files:\t%d\n", stats.ChunkedFiles)
				fmt.Fprintf(tw, "Compressed files:\t%d\n", stats.CompressedFiles)
				return tw.Flush()
			})
		},
	}
}

// withSession opens a session, runs fn, and closes the session. All fs
// subcommands go through here so store open/close stays in one place.
func withSession(flags *cli.SessionFlags, fn func(context.Context, *cli.Session) error) error {
	ctx := context.Background()
	session, err := flags.Open(ctx)
	if err != nil {
		return err
	}
	defer session.Close(ctx)
	return fn(ctx, session)
}
