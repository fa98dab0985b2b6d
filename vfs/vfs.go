// Package vfs provides a small filesystem abstraction for the container
// engine's file-backed Map path, plus an in-memory filesystem (NewMem).
// Map needs an OS file descriptor to mmap, so it fails on files from the
// in-memory filesystem, whose Fd reports false.
package vfs

import (
	"io"
	"os"
	"path/filepath"
)

// File is a readable, writable sequence of bytes.
//
// Typically it is an *os.File, but test code may substitute a memory-backed
// implementation.
type File interface {
	io.Closer
	io.Reader
	io.ReaderAt
	io.Writer
	Stat() (os.FileInfo, error)
	Sync() error
	// Fd returns the underlying OS file descriptor, for Mmap. Memory-backed
	// Files return (0, false).
	Fd() (uintptr, bool)
}

// FS is a namespace for files.
type FS interface {
	// Create creates the named file for writing, truncating it if it
	// already exists.
	Create(name string) (File, error)

	// Open opens the named file for reading and writing.
	Open(name string) (File, error)

	// Remove removes the named file.
	Remove(name string) error

	// Rename renames a file, overwriting newname if it exists.
	Rename(oldname, newname string) error

	// Stat returns an os.FileInfo describing the named file.
	Stat(name string) (os.FileInfo, error)

	// PathBase returns the last element of path.
	PathBase(path string) string

	// PathJoin joins path elements into a single path.
	PathJoin(elem ...string) string
}

// Default is a FS implementation backed by the underlying operating
// system's file system.
var Default FS = defaultFS{}

type defaultFS struct{}

func (defaultFS) Create(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}
	return osFile{f}, nil
}

func (defaultFS) Open(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		f, err = os.OpenFile(name, os.O_RDONLY, 0)
		if err != nil {
			return nil, err
		}
	}
	return osFile{f}, nil
}

func (defaultFS) Remove(name string) error { return os.Remove(name) }

func (defaultFS) Rename(oldname, newname string) error { return os.Rename(oldname, newname) }

func (defaultFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

func (defaultFS) PathBase(path string) string { return filepath.Base(path) }

func (defaultFS) PathJoin(elem ...string) string { return filepath.Join(elem...) }

type osFile struct{ *os.File }

func (f osFile) Fd() (uintptr, bool) { return f.File.Fd(), true }
