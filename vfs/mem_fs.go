package vfs

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// NewMem returns an in-memory FS, for tests that build and read back
// containers without touching disk.
func NewMem() FS {
	return &memFS{files: make(map[string]*memFile)}
}

type memFS struct {
	mu    sync.Mutex
	files map[string]*memFile
}

type memFile struct {
	name string
	data []byte
}

func (fs *memFS) Create(name string) (File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f := &memFile{name: name}
	fs.files[name] = f
	return &memHandle{f: f}, nil
}

func (fs *memFS) Open(name string) (File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.files[name]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "vfs: open %q", name)
	}
	return &memHandle{f: f}, nil
}

func (fs *memFS) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[name]; !ok {
		return errors.Wrapf(os.ErrNotExist, "vfs: remove %q", name)
	}
	delete(fs.files, name)
	return nil
}

func (fs *memFS) Rename(oldname, newname string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.files[oldname]
	if !ok {
		return errors.Wrapf(os.ErrNotExist, "vfs: rename %q", oldname)
	}
	delete(fs.files, oldname)
	f.name = newname
	fs.files[newname] = f
	return nil
}

func (fs *memFS) Stat(name string) (os.FileInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.files[name]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "vfs: stat %q", name)
	}
	return memFileInfo{f}, nil
}

func (fs *memFS) PathBase(path string) string { return Default.PathBase(path) }
func (fs *memFS) PathJoin(elem ...string) string { return Default.PathJoin(elem...) }

// memHandle is an open handle onto a memFile; multiple handles may be open
// concurrently but each has its own read/write offset.
type memHandle struct {
	f      *memFile
	offset int64
}

func (h *memHandle) Read(p []byte) (int, error) {
	n, err := h.ReadAt(p, h.offset)
	h.offset += int64(n)
	return n, err
}

func (h *memHandle) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(h.f.data)) {
		return 0, io.EOF
	}
	n := copy(p, h.f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (h *memHandle) Write(p []byte) (int, error) {
	end := h.offset + int64(len(p))
	if end > int64(len(h.f.data)) {
		grown := make([]byte, end)
		copy(grown, h.f.data)
		h.f.data = grown
	}
	copy(h.f.data[h.offset:end], p)
	h.offset = end
	return len(p), nil
}

func (h *memHandle) Close() error                   { return nil }
func (h *memHandle) Sync() error                    { return nil }
func (h *memHandle) Fd() (uintptr, bool)             { return 0, false }
func (h *memHandle) Stat() (os.FileInfo, error)      { return memFileInfo{h.f}, nil }

type memFileInfo struct{ f *memFile }

func (fi memFileInfo) Name() string       { return fi.f.name }
func (fi memFileInfo) Size() int64        { return int64(len(fi.f.data)) }
func (fi memFileInfo) Mode() os.FileMode  { return 0644 }
func (fi memFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() interface{}   { return nil }
