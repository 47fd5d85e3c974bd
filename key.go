package hashvec

import "unsafe"

// Key is the set of hash key types a vector can store.
// The width is fixed per vector by the type parameter.
type Key interface {
	~uint32 | ~uint64
}

// Entry is one decoded slot.
type Entry[K Key] struct {
	Key   K
	Value uint64
}

// KeyBits returns the width of K in bits (32 or 64).
func KeyBits[K Key]() uint8 {
	var k K
	return uint8(unsafe.Sizeof(k) * 8)
}
