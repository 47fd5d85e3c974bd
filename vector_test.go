package hashvec

import (
	"context"
	"testing"

	"github.com/hupe1980/hashvec/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// buildRandom fills every slot of a new vector with random keys and values.
func buildRandom[K Key](t testing.TB, rng *testutil.RNG, n int, w uint8, key func(i int) K) (*CompactVector[K], []Entry[K]) {
	t.Helper()

	b, err := NewBuilder[K](uint64(n), w)
	require.NoError(t, err)

	values := rng.Values(n, w)
	want := make([]Entry[K], n)
	for i := range n {
		want[i] = Entry[K]{Key: key(i), Value: values[i]}
		require.NoError(t, b.Set(uint64(i), want[i].Key, want[i].Value))
	}

	v, err := b.Build()
	require.NoError(t, err)
	return v, want
}

func random64(rng *testutil.RNG) func(int) uint64 {
	return func(int) uint64 { return rng.Uint64() }
}

func random32(rng *testutil.RNG) func(int) uint32 {
	return func(int) uint32 { return uint32(rng.Uint64()) }
}

func TestCompactVector_Accessors(t *testing.T) {
	rng := testutil.NewRNG(4711)
	v, want := buildRandom(t, rng, 100, 13, random64(rng))

	assert.Equal(t, uint64(100), v.Size())
	assert.Equal(t, uint8(13), v.Width())
	assert.Equal(t, uint8(64), v.KeyBits())

	for i, e := range want {
		idx := uint64(i)
		assert.Equal(t, e, v.Get(idx))
		assert.Equal(t, e.Key, v.Key(idx))
		assert.Equal(t, e.Value, v.Value(idx))

		got, err := v.At(idx)
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	_, err := v.At(100)
	require.ErrorIs(t, err, ErrOutOfRange)

	assert.Panics(t, func() { v.Get(100) })
	assert.Panics(t, func() { v.Value(100) })
}

func TestCompactVector_All(t *testing.T) {
	rng := testutil.NewRNG(1)
	v, want := buildRandom(t, rng, 37, 5, random32(rng))

	var seen []Entry[uint32]
	for i, e := range v.All() {
		assert.Equal(t, uint64(len(seen)), i)
		seen = append(seen, e)
	}
	assert.Equal(t, want, seen)

	count := 0
	for range v.All() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestCompactVector_Sizes(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		w          uint8
		keyBytes   int64
		valueBytes int64
	}{
		{"scenario", 5, 6, 20, 8},
		{"aligned", 64, 8, 256, 64},
		{"aligned width 1", 128, 1, 512, 16},
		{"full width", 3, 64, 12, 24},
		{"straddling", 10, 7, 40, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := testutil.NewRNG(7)
			v, _ := buildRandom(t, rng, tt.n, tt.w, random32(rng))

			assert.Equal(t, tt.keyBytes, v.KeyBytes())
			assert.Equal(t, tt.valueBytes, v.ValueBytes())
			// One headroom word is allocated beyond the serialized values.
			assert.Equal(t, tt.keyBytes+tt.valueBytes+8, v.MemoryUsage())
		})
	}
}

func TestCompactVector_Lookup(t *testing.T) {
	b, err := NewBuilder[uint64](4, 10)
	require.NoError(t, err)
	require.NoError(t, b.Set(2, 0xDEADBEEF, 1000))
	v, err := b.Build()
	require.NoError(t, err)

	var lookup Lookup[uint64] = v
	slot := 0xDEADBEEF % lookup.Size()
	for lookup.Get(slot).Key != 0xDEADBEEF {
		slot = (slot + 1) % lookup.Size()
	}
	assert.Equal(t, uint64(1000), lookup.Get(slot).Value)
}

func TestCompactVector_ConcurrentReaders(t *testing.T) {
	rng := testutil.NewRNG(99)
	v, want := buildRandom(t, rng, 5000, 29, random64(rng))

	g, _ := errgroup.WithContext(context.Background())
	for r := range 8 {
		g.Go(func() error {
			for i := r; i < len(want); i += 3 {
				e, err := v.At(uint64(i))
				if err != nil {
					return err
				}
				if !assert.Equal(t, want[i], e) {
					return assert.AnError
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func BenchmarkCompactVector_Get(b *testing.B) {
	rng := testutil.NewRNG(42)
	v, _ := buildRandom(b, rng, 1<<16, 20, random64(rng))
	mask := uint64(1<<16 - 1)

	b.ResetTimer()
	var sink uint64
	for i := range b.N {
		sink += v.Get(uint64(i) & mask).Value
	}
	_ = sink
}
