package persistence

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	header := &FileHeader{
		Compression: CompressionZSTD,
		Flags:       FlagChecksum,
		KeyBits:     64,
		ValueWidth:  17,
		Count:       12345,
	}
	require.NoError(t, writer.WriteHeader(header))
	assert.Equal(t, int64(HeaderSize), writer.Count())
	assert.Equal(t, 32, HeaderSize)

	reader := NewReader(&buf)
	got, err := reader.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, uint32(MagicNumber), got.Magic)
	assert.Equal(t, uint32(Version), got.Version)
	assert.Equal(t, CompressionZSTD, got.Compression)
	assert.True(t, got.HasChecksum())
	assert.Equal(t, uint8(64), got.KeyBits)
	assert.Equal(t, uint8(17), got.ValueWidth)
	assert.Equal(t, uint64(12345), got.Count)
	assert.Equal(t, int64(HeaderSize), reader.Count())
}

func TestHeader_Invalid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteHeader(&FileHeader{KeyBits: 32, ValueWidth: 1, Count: 1}))
	data := buf.Bytes()

	t.Run("Magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] ^= 0xff
		_, err := NewReader(bytes.NewReader(bad)).ReadHeader()
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("Version", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[4] ^= 0xff
		_, err := NewReader(bytes.NewReader(bad)).ReadHeader()
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("Compression", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[8] = 9
		_, err := NewReader(bytes.NewReader(bad)).ReadHeader()
		assert.ErrorIs(t, err, ErrUnknownCompression)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader(data[:10])).ReadHeader()
		assert.ErrorIs(t, err, ErrTruncated)
	})
}

func TestSectionHeader(t *testing.T) {
	assert.Equal(t, 10, SectionHeaderSize)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteSectionHeader(SectionHeader{Count: 5, ValueWidth: 6, KeyBits: 32}))
	assert.Equal(t, SectionHeaderSize, buf.Len())

	sh, err := NewReader(&buf).ReadSectionHeader()
	require.NoError(t, err)
	assert.Equal(t, SectionHeader{Count: 5, ValueWidth: 6, KeyBits: 32}, sh)

	size, ok := sh.Size()
	require.True(t, ok)
	assert.Equal(t, int64(10+5*4+8), size)

	for _, bad := range []SectionHeader{
		{Count: 0, ValueWidth: 6, KeyBits: 32},
		{Count: 1, ValueWidth: 0, KeyBits: 32},
		{Count: 1, ValueWidth: 65, KeyBits: 32},
		{Count: 1, ValueWidth: 6, KeyBits: 16},
	} {
		assert.ErrorIs(t, bad.Validate(), ErrInvalidSection, "%+v", bad)
	}

	_, ok = SectionHeader{Count: 1 << 62, ValueWidth: 64, KeyBits: 64}.Size()
	assert.False(t, ok)
}

func TestSlices_WriteRead(t *testing.T) {
	keys := []uint32{1, 2, 0xdeadbeef}
	words := []uint64{0x0123456789abcdef, 42}

	var buf bytes.Buffer
	writer := NewWriter(&buf)
	require.NoError(t, WriteSlice(writer, keys))
	require.NoError(t, WriteSlice(writer, words))
	require.NoError(t, writer.WriteUint32(7))
	assert.Equal(t, int64(3*4+2*8+4), writer.Count())

	reader := NewReader(&buf)
	gotKeys := make([]uint32, 3)
	gotWords := make([]uint64, 2)
	require.NoError(t, ReadSliceInto(reader, gotKeys))
	require.NoError(t, ReadSliceInto(reader, gotWords))
	v, err := reader.ReadUint32()
	require.NoError(t, err)

	assert.Equal(t, keys, gotKeys)
	assert.Equal(t, words, gotWords)
	assert.Equal(t, uint32(7), v)
	assert.NoError(t, reader.ExpectEOF())
}

func TestReadSliceInto_Short(t *testing.T) {
	reader := NewReader(bytes.NewReader(make([]byte, 12)))
	err := ReadSliceInto(reader, make([]uint64, 2))
	assert.ErrorIs(t, err, ErrTruncated)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestExpectEOF_TrailingData(t *testing.T) {
	reader := NewReader(bytes.NewReader([]byte{1}))
	assert.ErrorIs(t, reader.ExpectEOF(), ErrTrailingData)
}

func TestPlatformInfo(t *testing.T) {
	assert.True(t, isLittleEndian())
	assert.Contains(t, PlatformInfo(), "little-endian")
	assert.NoError(t, validateAlignment([]uint64{1}))
}
