// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/stackpad-dev/stackpad/lib/vfs"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	// Created if it does not exist.
	Mountpoint string

	// Manager is the store manager serving lookups and reads. It
	// must be initialized for a project before the mount is used.
	Manager *vfs.Manager

	// AllowOther permits other users to access the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// Mount mounts the store filesystem at the configured mountpoint. The
// caller must call Unmount on the returned server when done.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Manager == nil {
		return nil, fmt.Errorf("manager is required")
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := &dirNode{options: &options, prefix: ""}

	// Store records only change through the manager, and a sync can
	// change them at any time, so entry and attribute caching stays
	// short.
	entryTimeout := 1 * time.Second
	attrTimeout := 1 * time.Second
	negativeTimeout := 100 * time.Millisecond

	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "stackpad-vfs",
			Name:       "stackpad",
			AllowOther: options.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("store filesystem mounted",
		"mountpoint", options.Mountpoint,
		"project", options.Manager.CurrentProject(),
	)
	return server, nil
}

// dirNode is one virtual directory: the project root for an empty
// prefix, otherwise the subtree of store paths starting with prefix.
// Directories are derived from file paths on demand, matching the
// store's model of directories as path prefixes.
type dirNode struct {
	gofuse.Inode
	options *Options
	prefix  string // "" for root, "foo/" for nested directories
}

var _ gofuse.InodeEmbedder = (*dirNode)(nil)
var _ gofuse.NodeLookuper = (*dirNode)(nil)
var _ gofuse.NodeReaddirer = (*dirNode)(nil)

func (d *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	fullPath := d.prefix + name

	file, err := d.options.Manager.ReadFile(ctx, fullPath)
	if err != nil {
		d.options.Logger.Error("lookup failed", "path", fullPath, "error", err)
		return nil, syscall.EIO
	}

	// A directory exists exactly when at least one file lives under
	// it. Directory takes precedence over a same-named file, which
	// the store's path uniqueness rules make impossible anyway.
	children, err := d.options.Manager.ListFiles(ctx, vfs.ListOptions{
		Directory: fullPath,
		Recursive: true,
	})
	if err != nil {
		d.options.Logger.Error("lookup listing failed", "path", fullPath, "error", err)
		return nil, syscall.EIO
	}
	if len(children) > 0 {
		child := d.NewPersistentInode(ctx, &dirNode{
			options: d.options,
			prefix:  fullPath + "/",
		}, gofuse.StableAttr{Mode: syscall.S_IFDIR})
		out.Mode = syscall.S_IFDIR | 0o555
		return child, 0
	}

	if file != nil {
		node := &fileNode{options: d.options, record: file}
		child := d.NewPersistentInode(ctx, node, gofuse.StableAttr{Mode: syscall.S_IFREG})
		fillFileAttr(&out.Attr, file)
		return child, 0
	}

	return nil, syscall.ENOENT
}

func (d *dirNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	directory := strings.TrimSuffix(d.prefix, "/")
	files, err := d.options.Manager.ListFiles(ctx, vfs.ListOptions{
		Directory: directory,
		Recursive: true,
	})
	if err != nil {
		d.options.Logger.Error("readdir failed", "prefix", d.prefix, "error", err)
		return nil, syscall.EIO
	}

	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = file.Path
	}
	entries := immediateChildren(paths, d.prefix)
	return &sliceDirStream{entries: entries}, 0
}

// immediateChildren reduces full store paths to the unique first-level
// entries under prefix, marking entries that have deeper paths as
// directories.
func immediateChildren(paths []string, prefix string) []fuse.DirEntry {
	seen := make(map[string]bool)
	var entries []fuse.DirEntry

	for _, p := range paths {
		relative := strings.TrimPrefix(p, prefix)
		if relative == "" || relative == p && prefix != "" {
			continue
		}

		component := relative
		isDirectory := false
		if slashIndex := strings.IndexByte(relative, '/'); slashIndex >= 0 {
			component = relative[:slashIndex]
			isDirectory = true
		}
		if seen[component] {
			continue
		}
		seen[component] = true

		mode := uint32(syscall.S_IFREG)
		if isDirectory {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: component, Mode: mode})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// fileNode serves one store file. Content is loaded in full on first
// read and held for the node's lifetime; store files are bounded by
// the per-file size limit, so whole-file buffering is acceptable and
// keeps chunk reassembly out of the read path.
type fileNode struct {
	gofuse.Inode
	options *Options
	record  *vfs.File

	mu      sync.Mutex
	content []byte
	loaded  bool
}

var _ gofuse.InodeEmbedder = (*fileNode)(nil)
var _ gofuse.NodeGetattrer = (*fileNode)(nil)
var _ gofuse.NodeSetattrer = (*fileNode)(nil)
var _ gofuse.NodeOpener = (*fileNode)(nil)
var _ gofuse.NodeReader = (*fileNode)(nil)

func (f *fileNode) Getattr(ctx context.Context, _ gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fillFileAttr(&out.Attr, f.record)
	return 0
}

// Setattr rejects every mutation; the mount is read-only.
func (f *fileNode) Setattr(_ context.Context, _ gofuse.FileHandle, _ *fuse.SetAttrIn, _ *fuse.AttrOut) syscall.Errno {
	return syscall.EROFS
}

func (f *fileNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	if err := f.ensureContent(ctx); err != nil {
		f.options.Logger.Error("open failed", "path", f.record.Path, "error", err)
		return nil, 0, syscall.EIO
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (f *fileNode) Read(ctx context.Context, _ gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if err := f.ensureContent(ctx); err != nil {
		return nil, syscall.EIO
	}

	f.mu.Lock()
	content := f.content
	f.mu.Unlock()

	if off >= int64(len(content)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return fuse.ReadResultData(content[off:end]), 0
}

// ensureContent loads the full logical content once, reassembling
// chunked files through the manager.
func (f *fileNode) ensureContent(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded {
		return nil
	}
	content, err := f.options.Manager.ReadFileContent(ctx, f.record.Path)
	if err != nil {
		return err
	}
	f.content = content
	f.loaded = true
	return nil
}

// fillFileAttr populates FUSE attributes from a store record.
func fillFileAttr(attr *fuse.Attr, file *vfs.File) {
	attr.Mode = syscall.S_IFREG | 0o444
	attr.Size = uint64(file.Size)
	attr.Blocks = (attr.Size + 511) / 512
	attr.Blksize = 64 * 1024
	attr.SetTimes(nil, &file.UpdatedAt, &file.CreatedAt)
}

// sliceDirStream implements fs.DirStream from a slice of entries.
type sliceDirStream struct {
	entries []fuse.DirEntry
	index   int
}

func (s *sliceDirStream) HasNext() bool {
	return s.index < len(s.entries)
}

func (s *sliceDirStream) Next() (fuse.DirEntry, syscall.Errno) {
	if s.index >= len(s.entries) {
		return fuse.DirEntry{}, syscall.EINVAL
	}
	entry := s.entries[s.index]
	s.index++
	return entry, 0
}

func (s *sliceDirStream) Close() {}
