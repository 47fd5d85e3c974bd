package hashvec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/hupe1980/hashvec/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionBytes(n uint64, w, k uint8) []byte {
	buf := binary.LittleEndian.AppendUint64(nil, n)
	return append(buf, w, k)
}

func TestWriteTo_ConcreteScenario(t *testing.T) {
	b, err := NewBuilder[uint32](5, 6)
	require.NoError(t, err)
	keys := []uint32{100, 200, 300, 400, 500}
	values := []uint64{5, 9, 31, 0, 63}
	for i := range keys {
		require.NoError(t, b.Set(uint64(i), keys[i], values[i]))
	}
	v, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := v.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(10+20+8), n)
	assert.Equal(t, 38, buf.Len())

	want := sectionBytes(5, 6, 32)
	for _, k := range keys {
		want = binary.LittleEndian.AppendUint32(want, k)
	}
	// Fields at bit offsets 0, 6, 12, 18, 24.
	var word uint64
	for i, val := range values {
		word |= val << (6 * i)
	}
	want = binary.LittleEndian.AppendUint64(want, word)
	assert.Equal(t, want, buf.Bytes())

	loaded, read, err := ReadFrom[uint32](&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(38), read)
	assert.Equal(t, uint64(5), loaded.Size())
	assert.Equal(t, Entry[uint32]{Key: 300, Value: 31}, loaded.Get(2))
	assert.Equal(t, Entry[uint32]{Key: 400, Value: 0}, loaded.Get(3))
	for i := range uint64(5) {
		assert.Equal(t, v.Get(i), loaded.Get(i))
	}
}

func TestWriteTo_RoundTrip(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for w := uint8(1); w <= 64; w++ {
		n := 1 + rng.Intn(300)

		t.Run(fmt.Sprintf("K32/W%d/n%d", w, n), func(t *testing.T) {
			v, want := buildRandom(t, rng, n, w, random32(rng))
			assertRoundTrip(t, v, want)
		})
		t.Run(fmt.Sprintf("K64/W%d/n%d", w, n), func(t *testing.T) {
			v, want := buildRandom(t, rng, n, w, random64(rng))
			assertRoundTrip(t, v, want)
		})
	}
}

func assertRoundTrip[K Key](t *testing.T, v *CompactVector[K], want []Entry[K]) {
	t.Helper()

	var buf bytes.Buffer
	written, err := v.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, 10+v.KeyBytes()+v.ValueBytes(), written)

	loaded, read, err := ReadFrom[K](&buf)
	require.NoError(t, err)
	assert.Equal(t, written, read)
	assert.Equal(t, v.Size(), loaded.Size())
	assert.Equal(t, v.Width(), loaded.Width())

	for i, e := range want {
		require.Equal(t, e, loaded.Get(uint64(i)), "slot %d", i)
	}
}

func TestWriteTo_BoundaryWidths(t *testing.T) {
	for _, w := range []uint8{1, 63, 64} {
		t.Run(fmt.Sprintf("W%d", w), func(t *testing.T) {
			// 65 fields guarantee straddling for every width but 1 and 64.
			b, err := NewBuilder[uint64](65, w)
			require.NoError(t, err)

			maxVal := testutil.Mask(w)
			for i := range uint64(65) {
				value := maxVal
				if i%2 == 1 {
					value = maxVal >> 1
				}
				require.NoError(t, b.Set(i, ^i, value))
			}
			v, err := b.Build()
			require.NoError(t, err)

			var buf bytes.Buffer
			_, err = v.WriteTo(&buf)
			require.NoError(t, err)

			loaded, _, err := ReadFrom[uint64](&buf)
			require.NoError(t, err)
			for i := range uint64(65) {
				assert.Equal(t, v.Get(i), loaded.Get(i))
			}
		})
	}
}

func TestReadFrom_LeavesTrailingBytes(t *testing.T) {
	b, err := NewBuilder[uint64](2, 3)
	require.NoError(t, err)
	v, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	written, err := v.WriteTo(&buf)
	require.NoError(t, err)
	buf.WriteString("next")

	_, read, err := ReadFrom[uint64](&buf)
	require.NoError(t, err)
	assert.Equal(t, written, read)
	assert.Equal(t, "next", buf.String())
}

func TestReadFrom_Corrupt(t *testing.T) {
	valid := func() []byte {
		b, err := NewBuilder[uint32](3, 12)
		require.NoError(t, err)
		require.NoError(t, b.Set(0, 7, 4095))
		v, err := b.Build()
		require.NoError(t, err)

		var buf bytes.Buffer
		_, err = v.WriteTo(&buf)
		require.NoError(t, err)
		return buf.Bytes()
	}()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"zero count", sectionBytes(0, 12, 32)},
		{"zero width", append(sectionBytes(3, 0, 32), make([]byte, 20)...)},
		{"width 65", append(sectionBytes(3, 65, 32), make([]byte, 40)...)},
		{"key width 16", append(sectionBytes(3, 12, 16), make([]byte, 20)...)},
		{"key width mismatch", append(sectionBytes(3, 12, 64), make([]byte, 32)...)},
		{"huge count", append(sectionBytes(1<<40, 12, 32), make([]byte, 64)...)},
		{"count overflow", append(sectionBytes(1<<63, 64, 32), make([]byte, 64)...)},
	}
	for cut := range len(valid) {
		tests = append(tests, struct {
			name string
			data []byte
		}{fmt.Sprintf("truncated at %d", cut), valid[:cut]})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, err := ReadFrom[uint32](bytes.NewReader(tt.data))
			require.ErrorIs(t, err, ErrCorruptFile)
			assert.Nil(t, v)
		})
	}

	v, _, err := ReadFrom[uint32](bytes.NewReader(valid))
	require.NoError(t, err)
	assert.Equal(t, Entry[uint32]{Key: 7, Value: 4095}, v.Get(0))
}
