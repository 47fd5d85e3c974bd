package mmap

import "errors"

// AccessPattern is an madvise hint for a Mapping.
type AccessPattern int

const (
	// AccessDefault clears any previous hint.
	AccessDefault AccessPattern = iota
	// AccessSequential suits loads that stream a saved vector front to back.
	AccessSequential
	// AccessRandom suits header probes and scattered ReadAt calls.
	AccessRandom
)

var (
	// ErrClosed is returned when a closed Mapping is accessed.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files that cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrOutOfBounds is returned when a range ends past the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset is returned for negative offsets or lengths.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
