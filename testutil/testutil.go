package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG wraps a seeded math/rand source. It is safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Mask returns the low-w-bits mask for w in [0, 64].
func Mask(w uint8) uint64 {
	if w >= 64 {
		return math.MaxUint64
	}
	return 1<<w - 1
}

// Keys32 returns n random 32-bit hash keys.
func (r *RNG) Keys32(n int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = r.rand.Uint32()
	}
	return keys
}

// Keys64 returns n random 64-bit hash keys.
func (r *RNG) Keys64(n int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]uint64, n)
	for i := range keys {
		keys[i] = r.rand.Uint64()
	}
	return keys
}

// Values returns n values uniform in [0, 2^w).
func (r *RNG) Values(n int, w uint8) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	mask := Mask(w)
	values := make([]uint64, n)
	for i := range values {
		values[i] = r.rand.Uint64() & mask
	}
	return values
}

// UpTo returns n values uniform in [0, hi], hi inclusive.
func (r *RNG) UpTo(n int, hi uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make([]uint64, n)
	if hi == math.MaxUint64 {
		for i := range values {
			values[i] = r.rand.Uint64()
		}
		return values
	}

	bound := hi + 1
	// Draws below 2^64 mod bound would bias the low values.
	reject := -bound % bound
	for i := range values {
		v := r.rand.Uint64()
		for v < reject {
			v = r.rand.Uint64()
		}
		values[i] = v % bound
	}
	return values
}

// ZipfCounts returns n values with a Zipfian distribution over [0, 2^w),
// the shape of n-gram frequency counts. s must be > 1.
func (r *RNG) ZipfCounts(n int, w uint8, s float64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	z := rand.NewZipf(r.rand, s, 1, Mask(w))
	counts := make([]uint64, n)
	for i := range counts {
		counts[i] = z.Uint64()
	}
	return counts
}

// Occupancy reports for each of n slots whether it is filled, with
// probability loadFactor per slot.
func (r *RNG) Occupancy(n int, loadFactor float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	occupied := make([]bool, n)
	for i := range occupied {
		occupied[i] = r.rand.Float64() < loadFactor
	}
	return occupied
}
