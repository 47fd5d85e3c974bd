package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// MagicNumber identifies hash compact vector files (ASCII: "HCV1").
	MagicNumber = 0x48435631
	// Version is the current file format version (v1.0.0).
	Version = 0x00010000

	// FlagChecksum marks files carrying a CRC32 trailer over the raw section.
	FlagChecksum uint8 = 1 << 0
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrInvalidSection = errors.New("invalid section header")
	ErrHeaderMismatch = errors.New("file header does not match section header")
	ErrTruncated      = errors.New("truncated data")
	ErrTrailingData   = errors.New("trailing data after section")
)

// FileHeader is the 32-byte record at the start of every saved vector.
type FileHeader struct {
	Magic       uint32          // 0x48435631 ("HCV1")
	Version     uint32          // File format version
	Compression CompressionType // Compressor applied after the header
	Flags       uint8           // FlagChecksum
	KeyBits     uint8           // 32 or 64
	ValueWidth  uint8           // 1..64
	Padding     [4]byte
	Count       uint64 // Number of slots
	Reserved    [8]byte
}

// HeaderSize is the encoded size of FileHeader.
var HeaderSize = binary.Size(FileHeader{})

// HasChecksum reports whether FlagChecksum is set.
func (h *FileHeader) HasChecksum() bool {
	return h.Flags&FlagChecksum != 0
}

// SectionHeader precedes the key and value buffers of a raw section.
type SectionHeader struct {
	Count      uint64 // n
	ValueWidth uint8  // W
	KeyBits    uint8  // K
}

// SectionHeaderSize is the encoded size of SectionHeader.
var SectionHeaderSize = binary.Size(SectionHeader{})

// Validate checks the ranges of a decoded section header.
func (s SectionHeader) Validate() error {
	if s.Count == 0 {
		return fmt.Errorf("%w: zero count", ErrInvalidSection)
	}
	if s.ValueWidth == 0 || s.ValueWidth > 64 {
		return fmt.Errorf("%w: value width %d outside [1, 64]", ErrInvalidSection, s.ValueWidth)
	}
	if s.KeyBits != 32 && s.KeyBits != 64 {
		return fmt.Errorf("%w: key width %d is not 32 or 64", ErrInvalidSection, s.KeyBits)
	}
	return nil
}

// Matches reports whether the section agrees with the file header.
func (h *FileHeader) Matches(s SectionHeader) bool {
	return h.Count == s.Count && h.ValueWidth == s.ValueWidth && h.KeyBits == s.KeyBits
}

// Size returns the encoded size of the raw section described by s, header
// included. ok is false when the size does not fit an int64.
func (s SectionHeader) Size() (size int64, ok bool) {
	// keys <= 8n bytes, values <= 8n+8 bytes
	if s.Count > (math.MaxInt64-64)/16 {
		return 0, false
	}
	n := int64(s.Count)
	keys := n * int64(s.KeyBits/8)
	values := (n*int64(s.ValueWidth) + 63) / 64 * 8
	return int64(SectionHeaderSize) + keys + values, true
}
