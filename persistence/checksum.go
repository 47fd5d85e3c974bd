package persistence

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// Checksums cover the uncompressed raw section. The 4-byte trailer follows
// the section inside the (possibly compressed) payload stream.
//
// CRC32 (IEEE) detects accidental corruption only; it is not a tamper check.

// CRC32Table is the IEEE polynomial table for checksum computation.
var CRC32Table = crc32.MakeTable(crc32.IEEE)

// TrailerSize is the size of the checksum trailer in bytes.
const TrailerSize = 4

// runningSum hashes every byte that passes through a stream.
type runningSum struct {
	hash hash.Hash32
}

func newRunningSum() runningSum {
	return runningSum{hash: crc32.New(CRC32Table)}
}

func (s runningSum) add(p []byte) {
	// hash.Hash never returns an error
	_, _ = s.hash.Write(p)
}

// Sum returns the checksum of the bytes seen so far.
func (s runningSum) Sum() uint32 {
	return s.hash.Sum32()
}

// ChecksumWriter hashes the bytes written through it.
type ChecksumWriter struct {
	runningSum
	w io.Writer
}

// NewChecksumWriter creates a new checksumming writer.
func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{runningSum: newRunningSum(), w: w}
}

// Write implements io.Writer.
func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.add(p[:n])
	return n, err
}

// WriteTrailer appends the checksum of everything written so far to w.
// w must be the stream beneath the ChecksumWriter so the trailer is not
// hashed itself.
func (cw *ChecksumWriter) WriteTrailer(w io.Writer) error {
	return NewWriter(w).WriteUint32(cw.Sum())
}

// ChecksumReader hashes the bytes read through it.
type ChecksumReader struct {
	runningSum
	r io.Reader
}

// NewChecksumReader creates a new checksumming reader.
func NewChecksumReader(r io.Reader) *ChecksumReader {
	return &ChecksumReader{runningSum: newRunningSum(), r: r}
}

// Read implements io.Reader.
func (cr *ChecksumReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.add(p[:n])
	return n, err
}

// Verify compares the checksum of the bytes read so far with stored.
func (cr *ChecksumReader) Verify(stored uint32) error {
	if computed := cr.Sum(); computed != stored {
		return &ChecksumMismatchError{Stored: stored, Computed: computed}
	}
	return nil
}

// VerifyTrailer reads the trailer from r, the stream beneath the
// ChecksumReader, and verifies it. A missing trailer is ErrTruncated.
func (cr *ChecksumReader) VerifyTrailer(r io.Reader) error {
	stored, err := NewReader(r).ReadUint32()
	if err != nil {
		return err
	}
	return cr.Verify(stored)
}

// ChecksumMismatchError is returned when checksum verification fails.
type ChecksumMismatchError struct {
	Stored   uint32
	Computed uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: stored 0x%08x, computed 0x%08x", e.Stored, e.Computed)
}

// IsChecksumMismatch returns true if err is a checksum mismatch error.
func IsChecksumMismatch(err error) bool {
	var cm *ChecksumMismatchError
	return errors.As(err, &cm)
}
