// Package sysfs reads the small attribute files the kernel exposes under
// /sys and /proc. Every failure carries the path that caused it.
package sysfs

import (
	"io"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
)

// FileAccess is the set of read primitives the collector depends on.
type FileAccess interface {
	ListDir(name string) ([]fs.DirEntry, error)
	ReadText(name string) (string, error)
	ReadBool(name string) (bool, error)
	ReadUint64(name string) (uint64, error)
	ReadUint32(name string) (uint32, error)
}

// FS implements FileAccess on top of an fs.FS rooted at "/".
type FS struct {
	fsys fs.FS
}

// New wraps fsys. Absolute paths passed to FS methods are resolved
// relative to the root of fsys.
func New(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Host returns an FS backed by the real root filesystem.
func Host() *FS {
	return New(os.DirFS("/"))
}

func (f *FS) rel(name string) string {
	p := strings.TrimPrefix(path.Clean("/"+name), "/")
	if p == "" {
		return "."
	}
	return p
}

// ListDir returns the entries of a directory in the order the filesystem
// reports them.
func (f *FS) ListDir(name string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(f.fsys, f.rel(name))
	if err != nil {
		return nil, &Error{Kind: KindDirAccess, Path: name, Err: err}
	}
	return entries, nil
}

// ReadText returns the whole file content unmodified.
func (f *FS) ReadText(name string) (string, error) {
	file, err := f.fsys.Open(f.rel(name))
	if err != nil {
		return "", &Error{Kind: KindFileAccess, Path: name, Err: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", &Error{Kind: KindFileRead, Path: name, Err: err}
	}
	return string(data), nil
}

// ReadBool reports whether the file holds the flag value "1".
func (f *FS) ReadBool(name string) (bool, error) {
	content, err := f.ReadText(name)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(content) == "1", nil
}

func (f *FS) ReadUint64(name string) (uint64, error) {
	content, err := f.ReadText(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(content), 10, 64)
	if err != nil {
		return 0, &Error{Kind: KindConversionU64, Path: name, Err: err}
	}
	return v, nil
}

func (f *FS) ReadUint32(name string) (uint32, error) {
	content, err := f.ReadText(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(content), 10, 32)
	if err != nil {
		return 0, &Error{Kind: KindConversionU32, Path: name, Err: err}
	}
	return uint32(v), nil
}
