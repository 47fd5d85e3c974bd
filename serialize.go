package hashvec

import (
	"fmt"
	"io"

	"github.com/hupe1980/hashvec/internal/bitpack"
	"github.com/hupe1980/hashvec/internal/conv"
	"github.com/hupe1980/hashvec/persistence"
)

// readChunk bounds allocations while reading a section whose size has not
// been checked against its source.
const readChunk = 1 << 20

// WriteTo writes the raw section: n (uint64), W (uint8), K (uint8), the keys
// and the packed value words, all little-endian. It returns the number of
// bytes written, which is 10 + KeyBytes + ValueBytes on success.
func (v *CompactVector[K]) WriteTo(w io.Writer) (int64, error) {
	bw := persistence.NewWriter(w)
	err := v.writeSection(bw)
	return bw.Count(), err
}

func (v *CompactVector[K]) writeSection(bw *persistence.Writer) error {
	if err := bw.WriteSectionHeader(v.sectionHeader()); err != nil {
		return err
	}
	if err := persistence.WriteSlice(bw, v.keys); err != nil {
		return err
	}
	return persistence.WriteSlice(bw, v.values.Words())
}

// ReadFrom decodes a raw section written by WriteTo.
//
// It returns the vector and the number of bytes consumed from r. Any decode
// failure, including a key width that differs from K, is an ErrCorruptFile
// error and no vector is returned. Bytes after the section are left unread.
func ReadFrom[K Key](r io.Reader) (*CompactVector[K], int64, error) {
	br := persistence.NewReader(r)
	v, err := readSection[K](br, false)
	if err != nil {
		return nil, br.Count(), err
	}
	return v, br.Count(), nil
}

// readSection decodes one raw section from br. sized reports whether the
// caller already checked the section against the number of available bytes.
func readSection[K Key](br *persistence.Reader, sized bool) (*CompactVector[K], error) {
	sh, err := br.ReadSectionHeader()
	if err != nil {
		return nil, translateError(err)
	}
	if want := KeyBits[K](); sh.KeyBits != want {
		return nil, fmt.Errorf("%w: key width %d, want %d", ErrCorruptFile, sh.KeyBits, want)
	}
	if _, ok := sh.Size(); !ok {
		return nil, fmt.Errorf("%w: %w: count %d", ErrCorruptFile, persistence.ErrInvalidSection, sh.Count)
	}

	dataWords, err := bitpack.DataWords(sh.Count, sh.ValueWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	keys, err := readSlice[K](br, sh.Count, 0, sized)
	if err != nil {
		return nil, err
	}
	// One spare element becomes the headroom word without a reallocation.
	words, err := readSlice[uint64](br, dataWords, 1, sized)
	if err != nil {
		return nil, err
	}

	values, err := bitpack.FromWords(sh.Count, sh.ValueWidth, words)
	if err != nil {
		return nil, translateError(err)
	}
	return &CompactVector[K]{keys: keys, values: values}, nil
}

// readSlice reads n elements into a slice with room for spare more. Unless
// sized is set, memory grows with the bytes actually read so that a corrupt
// count fails on the short read instead of on the allocation.
func readSlice[T persistence.Word](br *persistence.Reader, n, spare uint64, sized bool) ([]T, error) {
	total, err := conv.Uint64ToInt(n + spare)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}
	size := total - int(spare)

	if sized || size <= readChunk {
		s := make([]T, size, total)
		if err := persistence.ReadSliceInto(br, s); err != nil {
			return nil, translateError(err)
		}
		return s, nil
	}

	s := make([]T, 0, readChunk)
	for len(s) < size {
		step := min(readChunk, size-len(s))
		start := len(s)
		s = append(s, make([]T, step)...)
		if err := persistence.ReadSliceInto(br, s[start:]); err != nil {
			return nil, translateError(err)
		}
	}
	return s, nil
}
