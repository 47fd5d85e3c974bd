package bitpack

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/hashvec/internal/conv"
)

const (
	// WordBits is the width of a storage word.
	WordBits = 64
	// WordBytes is the size of a storage word in bytes.
	WordBytes = WordBits / 8

	// MaxWidth is the widest field a Store accepts.
	MaxWidth = 64

	// MaxAllocBytes bounds a single backing allocation; larger slices cannot
	// be made on any supported platform.
	MaxAllocBytes = 1 << 48
)

var (
	// ErrInvalidWidth is returned when the field width is outside [1, 64].
	ErrInvalidWidth = errors.New("bitpack: invalid field width")
	// ErrInvalidSize is returned when the field count is zero or too large.
	ErrInvalidSize = errors.New("bitpack: invalid field count")
	// ErrOutOfRange is returned for an index past the end or a value wider than the field.
	ErrOutOfRange = errors.New("bitpack: out of range")
	// ErrWordCount is returned when adopted words do not match the field layout.
	ErrWordCount = errors.New("bitpack: word count mismatch")
)

// Store is a packed array of n fields, w bits each.
type Store struct {
	words []uint64
	n     uint64
	width uint8
	mask  uint64
}

// New allocates a zeroed Store for n fields of w bits.
func New(n uint64, w uint8) (*Store, error) {
	words, err := DataWords(n, w)
	if err != nil {
		return nil, err
	}
	size, err := conv.Uint64ToInt(words + 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	return &Store{
		words: make([]uint64, size),
		n:     n,
		width: w,
		mask:  Mask(w),
	}, nil
}

// FromWords adopts words as the backing buffer of a Store with n fields of w bits.
// words may hold exactly the data words or the data words plus headroom; in the
// former case one zero word is appended. The Store takes ownership of words.
func FromWords(n uint64, w uint8, words []uint64) (*Store, error) {
	want, err := DataWords(n, w)
	if err != nil {
		return nil, err
	}

	switch uint64(len(words)) {
	case want:
		words = append(words, 0)
	case want + 1:
		words[want] = 0
	default:
		return nil, fmt.Errorf("%w: have %d words, want %d", ErrWordCount, len(words), want)
	}

	return &Store{
		words: words,
		n:     n,
		width: w,
		mask:  Mask(w),
	}, nil
}

// DataWords returns ceil(n*w/64), the number of words holding field bits.
func DataWords(n uint64, w uint8) (uint64, error) {
	if w == 0 || w > MaxWidth {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWidth, w)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: 0", ErrInvalidSize)
	}
	// n*w must not overflow.
	if n > math.MaxUint64/uint64(w)-WordBits {
		return 0, fmt.Errorf("%w: %d fields of %d bits", ErrInvalidSize, n, w)
	}
	words := (n*uint64(w) + WordBits - 1) / WordBits
	// Data words plus headroom must be allocatable.
	if words >= MaxAllocBytes/WordBytes {
		return 0, fmt.Errorf("%w: %d fields of %d bits exceed %d bytes", ErrInvalidSize, n, w, uint64(MaxAllocBytes))
	}
	return words, nil
}

// Mask returns the low-w-bits mask. Mask(64) is all ones.
func Mask(w uint8) uint64 {
	if w >= WordBits {
		return math.MaxUint64
	}
	return (uint64(1) << w) - 1
}

// Set writes v into field i, replacing what was there.
func (s *Store) Set(i, v uint64) error {
	if i >= s.n {
		return fmt.Errorf("%w: index %d, size %d", ErrOutOfRange, i, s.n)
	}
	if v&^s.mask != 0 {
		return fmt.Errorf("%w: value %d exceeds %d bits", ErrOutOfRange, v, s.width)
	}
	s.put(i, v)
	return nil
}

func (s *Store) put(i, v uint64) {
	pos := i * uint64(s.width)
	idx := pos / WordBits
	shift := pos % WordBits

	// Full-width fields are always word aligned.
	if s.width == WordBits {
		s.words[idx] = v
		return
	}

	s.words[idx] = s.words[idx]&^(s.mask<<shift) | v<<shift

	if shift+uint64(s.width) > WordBits {
		// low holds the bits that went into words[idx]; 1 <= low <= 63.
		low := WordBits - shift
		s.words[idx+1] = s.words[idx+1]&^(s.mask>>low) | v>>low
	}
}

// Get returns field i. i must be below Len; the caller owns the bounds check.
func (s *Store) Get(i uint64) uint64 {
	pos := i * uint64(s.width)
	idx := pos / WordBits
	shift := pos % WordBits

	if s.width == WordBits {
		return s.words[idx]
	}

	v := s.words[idx] >> shift
	if shift+uint64(s.width) > WordBits {
		v |= s.words[idx+1] << (WordBits - shift)
	}
	return v & s.mask
}

// At is the bounds-checked form of Get.
func (s *Store) At(i uint64) (uint64, error) {
	if i >= s.n {
		return 0, fmt.Errorf("%w: index %d, size %d", ErrOutOfRange, i, s.n)
	}
	return s.Get(i), nil
}

// Len returns the number of fields.
func (s *Store) Len() uint64 { return s.n }

// Width returns the field width in bits.
func (s *Store) Width() uint8 { return s.width }

// Mask returns the field mask.
func (s *Store) Mask() uint64 { return s.mask }

// DataWords returns the number of words holding field bits, excluding headroom.
func (s *Store) DataWords() uint64 {
	return uint64(len(s.words) - 1)
}

// Words returns the data words without the headroom word.
// The slice aliases the Store and must not be modified.
func (s *Store) Words() []uint64 {
	return s.words[:len(s.words)-1]
}

// Allocated returns the number of words allocated, including headroom.
func (s *Store) Allocated() int {
	return len(s.words)
}

// SizeBytes returns the number of bytes the data words occupy on disk.
func (s *Store) SizeBytes() int64 {
	return int64(s.DataWords()) * WordBytes
}
