package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unsafe"
)

// Word is the set of element types written as raw native-order slices.
type Word interface {
	~uint32 | ~uint64
}

// Writer writes vector sections in native (little-endian) byte order and
// counts the bytes it hands to the underlying writer.
type Writer struct {
	w         io.Writer
	byteOrder binary.ByteOrder
	n         int64
}

// NewWriter creates a new Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:         w,
		byteOrder: binary.LittleEndian, // Native on x86/ARM
	}
}

// Write implements io.Writer so compressors can be stacked on a Writer.
func (bw *Writer) Write(p []byte) (int, error) {
	n, err := bw.w.Write(p)
	bw.n += int64(n)
	return n, err
}

// Count returns the number of bytes written so far.
func (bw *Writer) Count() int64 {
	return bw.n
}

// WriteHeader stamps magic and version into header and writes it.
func (bw *Writer) WriteHeader(header *FileHeader) error {
	header.Magic = MagicNumber
	header.Version = Version
	return binary.Write(bw, bw.byteOrder, header)
}

// WriteSectionHeader writes the (n, W, K) record of a raw section.
func (bw *Writer) WriteSectionHeader(sh SectionHeader) error {
	return binary.Write(bw, bw.byteOrder, sh)
}

// WriteUint32 writes a single uint32, used for checksum trailers.
func (bw *Writer) WriteUint32(v uint32) error {
	return binary.Write(bw, bw.byteOrder, v)
}

// WriteSlice writes s as raw bytes without copying.
// Safety: Validates alignment before unsafe conversion.
func WriteSlice[T Word](bw *Writer, s []T) error {
	if len(s) == 0 {
		return nil
	}
	if err := validateAlignment(s); err != nil {
		return err
	}

	_, err := bw.Write(sliceBytes(s))
	return err
}

// Reader reads vector sections and counts the bytes consumed.
type Reader struct {
	r         io.Reader
	byteOrder binary.ByteOrder
	n         int64
}

// NewReader creates a new Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:         r,
		byteOrder: binary.LittleEndian,
	}
}

// Read implements io.Reader so decompressors can be stacked on a Reader.
func (br *Reader) Read(p []byte) (int, error) {
	n, err := br.r.Read(p)
	br.n += int64(n)
	return n, err
}

// Count returns the number of bytes read so far.
func (br *Reader) Count() int64 {
	return br.n
}

// ReadHeader reads and validates the file header.
func (br *Reader) ReadHeader() (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(br, br.byteOrder, &header); err != nil {
		return nil, truncated(err)
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	if !header.Compression.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, header.Compression)
	}
	return &header, nil
}

// ReadSectionHeader reads and validates the (n, W, K) record of a raw section.
func (br *Reader) ReadSectionHeader() (SectionHeader, error) {
	var sh SectionHeader
	if err := binary.Read(br, br.byteOrder, &sh); err != nil {
		return SectionHeader{}, truncated(err)
	}
	if err := sh.Validate(); err != nil {
		return SectionHeader{}, err
	}
	return sh, nil
}

// ReadUint32 reads a single uint32.
func (br *Reader) ReadUint32() (uint32, error) {
	var v uint32
	if err := binary.Read(br, br.byteOrder, &v); err != nil {
		return 0, truncated(err)
	}
	return v, nil
}

// ExpectEOF fails with ErrTrailingData if any byte remains.
func (br *Reader) ExpectEOF() error {
	var one [1]byte
	n, err := io.ReadFull(br, one[:])
	if n > 0 {
		return ErrTrailingData
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ReadSliceInto fills s with exactly len(s) elements.
func ReadSliceInto[T Word](br *Reader, s []T) error {
	if len(s) == 0 {
		return nil
	}
	if _, err := io.ReadFull(br, sliceBytes(s)); err != nil {
		return truncated(err)
	}
	return nil
}

func sliceBytes[T Word](s []T) []byte {
	size := int(unsafe.Sizeof(s[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*size)
}

// truncated maps short reads to ErrTruncated and passes other errors through.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}
