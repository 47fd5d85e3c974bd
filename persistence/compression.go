package persistence

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm applied after the file header.
type CompressionType uint8

const (
	// CompressionNone stores the raw section as-is.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses the LZ4 frame format (fast, good for hot data).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses zstd (better ratio, good for cold data).
	CompressionZSTD CompressionType = 2
)

// ErrUnknownCompression is returned for compression types this build cannot decode.
var ErrUnknownCompression = errors.New("unknown compression type")

// Valid reports whether c is a known compression type.
func (c CompressionType) Valid() bool {
	return c <= CompressionZSTD
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a name ("none", "lz4", "zstd") to a CompressionType.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

// NewCompressor wraps w so that bytes written are compressed with c.
// Close flushes the compressor; it does not close w.
func NewCompressor(w io.Writer, c CompressionType) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZSTD:
		// SpeedDefault (level 3) balances ratio and throughput.
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

// NewDecompressor wraps r so that reads return the bytes written through NewCompressor.
// Close releases decoder resources; it does not close r.
func NewDecompressor(r io.Reader, c CompressionType) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
