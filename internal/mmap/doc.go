// Package mmap provides read-only memory-mapped file access.
//
// LocalStore blobs are backed by a Mapping so that header inspection and
// ranged reads of saved vectors never copy through an intermediate buffer.
//
//	m, err := mmap.Open("counts.hcv")
//	if err != nil { ... }
//	defer m.Close()
//
//	header := m.Bytes()[:32]
//	_ = m.Advise(mmap.AccessSequential)
//
// On Unix the package uses mmap(2) and madvise(2). On Windows it uses
// CreateFileMapping/MapViewOfFile and Advise is a no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch slices obtained from Bytes or Slice after it returns.
package mmap
