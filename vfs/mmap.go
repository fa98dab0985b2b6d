//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package vfs

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Mapping is a read-only memory mapping of a file's contents, the backing
// store for a Map-mode Database (spec §3.6).
type Mapping struct {
	data []byte
}

// Mmap maps the full contents of f read-only. f must support Fd.
func Mmap(f File) (*Mapping, error) {
	fd, ok := f.Fd()
	if !ok {
		return nil, errors.New("vfs: file does not support mmap")
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &Mapping{data: nil}, nil
	}
	data, err := unix.Mmap(int(fd), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, "vfs: mmap")
	}
	return &Mapping{data: data}, nil
}

// Bytes returns the mapped region.
func (m *Mapping) Bytes() []byte { return m.data }

// Unmap releases the mapping. It is an error to use Bytes's result after
// Unmap returns.
func (m *Mapping) Unmap() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	return unix.Munmap(data)
}
