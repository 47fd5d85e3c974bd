package persistence

import (
	"bytes"
	"hash/crc32"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum_WriterReader(t *testing.T) {
	data := []byte("hash compact vector payload")

	var buf bytes.Buffer
	cw := NewChecksumWriter(&buf)
	_, err := cw.Write(data)
	require.NoError(t, err)
	assert.Equal(t, crc32.ChecksumIEEE(data), cw.Sum())

	cr := NewChecksumReader(&buf)
	got, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.NoError(t, cr.Verify(cw.Sum()))

	err = cr.Verify(cw.Sum() + 1)
	require.Error(t, err)
	assert.True(t, IsChecksumMismatch(err))
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestChecksum_Trailer(t *testing.T) {
	data := []byte("section bytes")

	var buf bytes.Buffer
	cw := NewChecksumWriter(&buf)
	_, err := cw.Write(data)
	require.NoError(t, err)
	require.NoError(t, cw.WriteTrailer(&buf))
	require.Equal(t, len(data)+TrailerSize, buf.Len())

	t.Run("valid", func(t *testing.T) {
		src := bytes.NewReader(buf.Bytes())
		cr := NewChecksumReader(src)
		_, err := io.ReadFull(cr, make([]byte, len(data)))
		require.NoError(t, err)
		assert.NoError(t, cr.VerifyTrailer(src))
	})

	t.Run("flipped", func(t *testing.T) {
		corrupt := bytes.Clone(buf.Bytes())
		corrupt[0] ^= 0x01
		src := bytes.NewReader(corrupt)
		cr := NewChecksumReader(src)
		_, err := io.ReadFull(cr, make([]byte, len(data)))
		require.NoError(t, err)
		assert.True(t, IsChecksumMismatch(cr.VerifyTrailer(src)))
	})

	t.Run("missing", func(t *testing.T) {
		src := bytes.NewReader(buf.Bytes()[:len(data)+2])
		cr := NewChecksumReader(src)
		_, err := io.ReadFull(cr, make([]byte, len(data)))
		require.NoError(t, err)
		assert.ErrorIs(t, cr.VerifyTrailer(src), ErrTruncated)
	})
}
