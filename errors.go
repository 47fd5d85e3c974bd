package hashvec

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hashvec/internal/bitpack"
	"github.com/hupe1980/hashvec/persistence"
)

var (
	// ErrInvalidWidth is returned when the value width is outside [1, 64].
	ErrInvalidWidth = errors.New("value width must be in [1, 64]")

	// ErrInvalidSize is returned when a vector would have zero slots.
	ErrInvalidSize = errors.New("size must be positive")

	// ErrValueOverflow is returned when a value does not fit in the value width.
	ErrValueOverflow = errors.New("value overflows width")

	// ErrOutOfRange is returned for an index outside [0, n).
	ErrOutOfRange = errors.New("index out of range")

	// ErrCorruptFile is returned when a serialized vector cannot be decoded.
	// No partially loaded vector is ever returned alongside it.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrFrozen is returned when a builder is used after Build.
	ErrFrozen = errors.New("builder is frozen")
)

// OutOfRangeError reports an index outside [0, Size).
//
// errors.Is(err, ErrOutOfRange) holds for it.
type OutOfRangeError struct {
	Index uint64
	Size  uint64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index out of range: %d not in [0, %d)", e.Index, e.Size)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// ValueOverflowError reports a value that needs more than Width bits.
//
// errors.Is(err, ErrValueOverflow) holds for it.
type ValueOverflowError struct {
	Index uint64
	Value uint64
	Width uint8
}

func (e *ValueOverflowError) Error() string {
	return fmt.Sprintf("value overflows width: %d at index %d needs more than %d bits", e.Value, e.Index, e.Width)
}

func (e *ValueOverflowError) Is(target error) bool { return target == ErrValueOverflow }

// translateError maps leaf-package errors onto the public sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, bitpack.ErrInvalidWidth):
		return fmt.Errorf("%w: %w", ErrInvalidWidth, err)
	case errors.Is(err, bitpack.ErrInvalidSize):
		return fmt.Errorf("%w: %w", ErrInvalidSize, err)
	case errors.Is(err, bitpack.ErrOutOfRange):
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	case errors.Is(err, bitpack.ErrWordCount):
		return fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	if isCorruption(err) {
		return fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}
	return err
}

func isCorruption(err error) bool {
	for _, target := range []error{
		persistence.ErrInvalidMagic,
		persistence.ErrInvalidVersion,
		persistence.ErrInvalidSection,
		persistence.ErrHeaderMismatch,
		persistence.ErrTruncated,
		persistence.ErrTrailingData,
		persistence.ErrUnknownCompression,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return persistence.IsChecksumMismatch(err)
}
