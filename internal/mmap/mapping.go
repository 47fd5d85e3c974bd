package mmap

import (
	"io"
	"math"
	"os"
	"sync/atomic"
)

// Mapping is a read-only view of a whole file.
// It owns the mapped memory and unmaps it on Close.
type Mapping struct {
	data   []byte
	unmap  func([]byte) error
	closed atomic.Bool
}

// Open maps the file at path read-only. Empty files yield an empty Mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// The mapping outlives the descriptor.
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	switch {
	case size == 0:
		return &Mapping{}, nil
	case size < 0 || uint64(size) > math.MaxInt:
		return nil, ErrInvalidSize
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.unmap == nil {
		return nil
	}
	return m.unmap(m.data)
}

// Bytes returns the mapped file contents, or nil once closed.
// The slice is valid only until Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapped file in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Advise passes an access hint to the kernel.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(m.data, pattern)
}

// tail returns the mapped bytes from off to the end.
func (m *Mapping) tail(off int64) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 {
		return nil, ErrInvalidOffset
	}
	if off > int64(len(m.data)) {
		return nil, ErrOutOfBounds
	}
	return m.data[off:], nil
}

// Slice returns length bytes starting at off without copying.
func (m *Mapping) Slice(off, length int64) ([]byte, error) {
	rest, err := m.tail(off)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, ErrInvalidOffset
	}
	if length > int64(len(rest)) {
		return nil, ErrOutOfBounds
	}
	return rest[:length], nil
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	rest, err := m.tail(off)
	if err == ErrOutOfBounds || (err == nil && len(rest) == 0) {
		return 0, io.EOF
	}
	if err != nil {
		return 0, err
	}
	n := copy(p, rest)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
