package hashvec

import (
	"iter"
	"unsafe"

	"github.com/hupe1980/hashvec/internal/bitpack"
	"github.com/hupe1980/hashvec/persistence"
)

// Lookup is the read side of a vector as seen by a hash table probing slots:
// the slot count and an unchecked slot read.
type Lookup[K Key] interface {
	Size() uint64
	Get(i uint64) Entry[K]
}

var _ Lookup[uint64] = (*CompactVector[uint64])(nil)

// CompactVector is an immutable sequence of n (key, value) slots.
//
// Keys are stored at their natural width. Values are bit-packed at a fixed
// width W, so a slot costs K+W bits. All methods are safe for concurrent use.
type CompactVector[K Key] struct {
	keys   []K
	values *bitpack.Store
}

// Size returns the number of slots.
func (v *CompactVector[K]) Size() uint64 {
	return v.values.Len()
}

// Width returns the value width in bits.
func (v *CompactVector[K]) Width() uint8 {
	return v.values.Width()
}

// KeyBits returns the key width in bits.
func (v *CompactVector[K]) KeyBits() uint8 {
	return KeyBits[K]()
}

// Get returns slot i without a bounds check on the packed values.
// i must be < Size; otherwise Get panics.
func (v *CompactVector[K]) Get(i uint64) Entry[K] {
	return Entry[K]{Key: v.keys[i], Value: v.values.Get(i)}
}

// At returns slot i, or an ErrOutOfRange error when i >= Size.
func (v *CompactVector[K]) At(i uint64) (Entry[K], error) {
	if n := v.Size(); i >= n {
		return Entry[K]{}, &OutOfRangeError{Index: i, Size: n}
	}
	return v.Get(i), nil
}

// Key returns the key of slot i. i must be < Size.
func (v *CompactVector[K]) Key(i uint64) K {
	return v.keys[i]
}

// Value returns the value of slot i. i must be < Size.
func (v *CompactVector[K]) Value(i uint64) uint64 {
	_ = v.keys[i]
	return v.values.Get(i)
}

// All iterates over every slot in index order.
func (v *CompactVector[K]) All() iter.Seq2[uint64, Entry[K]] {
	return func(yield func(uint64, Entry[K]) bool) {
		for i := range v.Size() {
			if !yield(i, v.Get(i)) {
				return
			}
		}
	}
}

// KeyBytes returns the size of the key buffer: n·K/8.
func (v *CompactVector[K]) KeyBytes() int64 {
	var k K
	return int64(len(v.keys)) * int64(unsafe.Sizeof(k))
}

// ValueBytes returns the size of the packed values: ceil(n·W/64)·8.
// The extra headroom word kept in memory is not counted.
func (v *CompactVector[K]) ValueBytes() int64 {
	return v.values.SizeBytes()
}

// MemoryUsage returns the bytes held by the vector's buffers, headroom included.
func (v *CompactVector[K]) MemoryUsage() int64 {
	var k K
	return int64(cap(v.keys))*int64(unsafe.Sizeof(k)) +
		int64(v.values.Allocated())*bitpack.WordBytes
}

func (v *CompactVector[K]) sectionHeader() persistence.SectionHeader {
	return persistence.SectionHeader{
		Count:      v.Size(),
		ValueWidth: v.Width(),
		KeyBits:    v.KeyBits(),
	}
}
