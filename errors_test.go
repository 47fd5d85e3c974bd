package hashvec

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/hupe1980/hashvec/internal/bitpack"
	"github.com/hupe1980/hashvec/persistence"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"width", fmt.Errorf("%w: 0", bitpack.ErrInvalidWidth), ErrInvalidWidth},
		{"size", fmt.Errorf("%w: 0", bitpack.ErrInvalidSize), ErrInvalidSize},
		{"range", bitpack.ErrOutOfRange, ErrOutOfRange},
		{"word count", bitpack.ErrWordCount, ErrCorruptFile},
		{"magic", persistence.ErrInvalidMagic, ErrCorruptFile},
		{"version", persistence.ErrInvalidVersion, ErrCorruptFile},
		{"section", persistence.ErrInvalidSection, ErrCorruptFile},
		{"mismatch", persistence.ErrHeaderMismatch, ErrCorruptFile},
		{"truncated", fmt.Errorf("%w: %w", persistence.ErrTruncated, io.ErrUnexpectedEOF), ErrCorruptFile},
		{"trailing", persistence.ErrTrailingData, ErrCorruptFile},
		{"compression", persistence.ErrUnknownCompression, ErrCorruptFile},
		{"checksum", &persistence.ChecksumMismatchError{Stored: 1, Computed: 2}, ErrCorruptFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, translateError(nil))

	other := errors.New("disk on fire")
	assert.Equal(t, other, translateError(other))
}

func TestTypedErrors(t *testing.T) {
	var err error = &OutOfRangeError{Index: 7, Size: 5}
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.NotErrorIs(t, err, ErrValueOverflow)
	assert.EqualError(t, err, "index out of range: 7 not in [0, 5)")

	err = &ValueOverflowError{Index: 1, Value: 64, Width: 6}
	assert.ErrorIs(t, err, ErrValueOverflow)
	assert.NotErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "needs more than 6 bits")
}
