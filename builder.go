package hashvec

import (
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/hashvec/internal/bitpack"
	"github.com/hupe1980/hashvec/internal/conv"
)

// Builder fills the n slots of a CompactVector.
//
// The value width is fixed up front and both buffers are allocated by
// NewBuilder. Slots that are never Set read back as (0, 0); the builder does
// not treat them as an error unless asked via WithSlotTracking and Unwritten.
// Setting a slot twice keeps the last write.
//
// A Builder is not safe for concurrent use.
type Builder[K Key] struct {
	keys    []K
	values  *bitpack.Store
	n       uint64
	width   uint8
	written *roaring64.Bitmap
	opts    options
	start   time.Time
}

// NewBuilder allocates a builder for n slots with w-bit values.
//
// It fails with ErrInvalidWidth unless 1 <= w <= 64 and with ErrInvalidSize
// when n is zero or the keys or values could not be allocated.
func NewBuilder[K Key](n uint64, w uint8, optFns ...Option) (*Builder[K], error) {
	if keyBytes := uint64(KeyBits[K]() / 8); n > bitpack.MaxAllocBytes/keyBytes {
		return nil, fmt.Errorf("%w: %d keys of %d bytes exceed %d bytes", ErrInvalidSize, n, keyBytes, uint64(bitpack.MaxAllocBytes))
	}
	values, err := bitpack.New(n, w)
	if err != nil {
		return nil, translateError(err)
	}
	size, err := conv.Uint64ToInt(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	b := &Builder[K]{
		keys:   make([]K, size),
		values: values,
		n:      n,
		width:  w,
		opts:   applyOptions(optFns),
		start:  time.Now(),
	}
	if b.opts.slotTracking {
		b.written = roaring64.New()
	}
	return b, nil
}

// Set stores (key, value) in slot i.
//
// It fails with ErrOutOfRange when i >= n and with ErrValueOverflow when value
// needs more than the builder's width; in both cases no slot changes.
func (b *Builder[K]) Set(i uint64, key K, value uint64) error {
	if b.values == nil {
		return ErrFrozen
	}
	if i >= b.n {
		return &OutOfRangeError{Index: i, Size: b.n}
	}
	if value&^b.values.Mask() != 0 {
		return &ValueOverflowError{Index: i, Value: value, Width: b.width}
	}

	if err := b.values.Set(i, value); err != nil {
		return translateError(err)
	}
	b.keys[i] = key
	if b.written != nil {
		b.written.Add(i)
	}
	return nil
}

// Build hands the builder's buffers to a new CompactVector without copying.
// The builder is unusable afterwards; further calls return ErrFrozen.
func (b *Builder[K]) Build() (*CompactVector[K], error) {
	if b.values == nil {
		return nil, ErrFrozen
	}

	v := &CompactVector[K]{
		keys:   b.keys,
		values: b.values,
	}
	b.keys = nil
	b.values = nil

	elapsed := time.Since(b.start)
	b.opts.metricsCollector.RecordBuild(b.n, elapsed)
	b.opts.logger.WithShape(b.n, KeyBits[K](), b.width).LogBuild(context.Background(), b.n, elapsed)

	return v, nil
}

// Len returns the number of slots.
func (b *Builder[K]) Len() uint64 { return b.n }

// Width returns the value width in bits.
func (b *Builder[K]) Width() uint8 { return b.width }

// Unwritten returns the slots that have not been Set, or nil when the builder
// was created without WithSlotTracking. It stays valid after Build.
func (b *Builder[K]) Unwritten() *roaring64.Bitmap {
	if b.written == nil {
		return nil
	}
	missing := roaring64.New()
	missing.AddRange(0, b.n)
	missing.AndNot(b.written)
	return missing
}
