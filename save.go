package hashvec

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/hashvec/blobstore"
	"github.com/hupe1980/hashvec/persistence"
)

const blobBufferSize = 256 * 1024

// Save writes v to w as a file: a 32-byte header, the raw section (compressed
// when WithCompression is set) and, unless disabled, a CRC32 trailer.
//
// It returns the number of bytes handed to w.
func (v *CompactVector[K]) Save(ctx context.Context, w io.Writer, optFns ...Option) (int64, error) {
	o := applyOptions(optFns)
	start := time.Now()

	n, err := v.save(ctx, w, &o)

	o.observeSave(ctx, o.logger, v, n, start, err)
	return n, err
}

// SaveFile writes v to path atomically: the file appears complete or not at all.
func (v *CompactVector[K]) SaveFile(ctx context.Context, path string, optFns ...Option) (int64, error) {
	o := applyOptions(optFns)
	start := time.Now()

	var n int64
	err := persistence.SaveToFile(o.fs, path, func(w io.Writer) error {
		var err error
		n, err = v.save(ctx, w, &o)
		return err
	})

	o.observeSave(ctx, o.logger.WithPath(path), v, n, start, err)
	return n, err
}

// SaveBlob writes v as the blob name. A failed save aborts the blob, leaving
// any previous blob of that name in place.
func (v *CompactVector[K]) SaveBlob(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (int64, error) {
	o := applyOptions(optFns)
	start := time.Now()

	n, err := v.saveBlob(ctx, store, name, &o)

	o.observeSave(ctx, o.logger.WithPath(name), v, n, start, err)
	return n, err
}

func (v *CompactVector[K]) saveBlob(ctx context.Context, store blobstore.BlobStore, name string, o *options) (int64, error) {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriterSize(blob, blobBufferSize)
	n, err := v.save(ctx, bw, o)
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = blob.Sync()
	}
	if err != nil {
		return n, errors.Join(err, blob.Abort(err))
	}
	return n, blob.Close()
}

func (v *CompactVector[K]) save(ctx context.Context, w io.Writer, o *options) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if o.rateLimit > 0 {
		w = persistence.NewThrottledWriter(ctx, w, o.rateLimit)
	}

	bw := persistence.NewWriter(w)
	header := &persistence.FileHeader{
		Compression: o.compression,
		KeyBits:     v.KeyBits(),
		ValueWidth:  v.Width(),
		Count:       v.Size(),
	}
	if o.checksum {
		header.Flags |= persistence.FlagChecksum
	}
	if err := bw.WriteHeader(header); err != nil {
		return bw.Count(), err
	}

	comp, err := persistence.NewCompressor(bw, o.compression)
	if err != nil {
		return bw.Count(), err
	}

	cw := persistence.NewChecksumWriter(comp)
	if err := v.writeSection(persistence.NewWriter(cw)); err != nil {
		return bw.Count(), err
	}
	if o.checksum {
		if err := cw.WriteTrailer(comp); err != nil {
			return bw.Count(), err
		}
	}
	if err := comp.Close(); err != nil {
		return bw.Count(), err
	}
	return bw.Count(), nil
}

// Load reads a vector written by Save.
//
// Every decode failure is reported as ErrCorruptFile and no vector is
// returned with it. The byte count is the number of bytes consumed from r.
func Load[K Key](ctx context.Context, r io.Reader, optFns ...Option) (*CompactVector[K], int64, error) {
	o := applyOptions(optFns)
	start := time.Now()

	v, n, err := load[K](ctx, r, -1, &o)

	o.observeLoad(ctx, o.logger, v, n, start, err)
	return v, n, err
}

// LoadFile reads a vector saved with SaveFile. The file size is checked
// against the header before the buffers are allocated.
func LoadFile[K Key](ctx context.Context, path string, optFns ...Option) (*CompactVector[K], int64, error) {
	o := applyOptions(optFns)
	start := time.Now()

	var (
		v *CompactVector[K]
		n int64
	)
	err := persistence.LoadFromFile(o.fs, path, func(r io.Reader, size int64) error {
		var err error
		v, n, err = load[K](ctx, r, size, &o)
		return err
	})
	if err != nil {
		v = nil
	}

	o.observeLoad(ctx, o.logger.WithPath(path), v, n, start, err)
	return v, n, err
}

// LoadBlob streams the blob name from store and decodes it.
func LoadBlob[K Key](ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*CompactVector[K], int64, error) {
	o := applyOptions(optFns)
	start := time.Now()

	v, n, err := loadBlob[K](ctx, store, name, &o)

	o.observeLoad(ctx, o.logger.WithPath(name), v, n, start, err)
	return v, n, err
}

func loadBlob[K Key](ctx context.Context, store blobstore.BlobStore, name string, o *options) (*CompactVector[K], int64, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer blob.Close()

	size := blob.Size()
	if size < int64(persistence.HeaderSize) {
		return nil, 0, fmt.Errorf("%w: %w: blob has %d bytes", ErrCorruptFile, persistence.ErrTruncated, size)
	}

	rc, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	return load[K](ctx, bufio.NewReaderSize(rc, blobBufferSize), size, o)
}

// load decodes one saved vector from r. size is the number of bytes
// available in r, or -1 when unknown.
func load[K Key](ctx context.Context, r io.Reader, size int64, o *options) (*CompactVector[K], int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	br := persistence.NewReader(r)
	header, err := br.ReadHeader()
	if err != nil {
		return nil, br.Count(), translateError(err)
	}
	if want := KeyBits[K](); header.KeyBits != want {
		return nil, br.Count(), fmt.Errorf("%w: key width %d, want %d", ErrCorruptFile, header.KeyBits, want)
	}

	sized := false
	if size >= 0 && header.Compression == persistence.CompressionNone {
		if err := checkStoredSize(header, size, o.strict); err != nil {
			return nil, br.Count(), err
		}
		sized = true
	}

	src := &sourceReader{r: br}
	dec, err := persistence.NewDecompressor(src, header.Compression)
	if err != nil {
		return nil, br.Count(), translateError(err)
	}
	defer dec.Close()

	if err := ctx.Err(); err != nil {
		return nil, br.Count(), err
	}

	cr := persistence.NewChecksumReader(dec)
	v, err := readSection[K](persistence.NewReader(cr), sized)
	if err != nil {
		return nil, br.Count(), bodyError(err, src.err)
	}
	if !header.Matches(v.sectionHeader()) {
		return nil, br.Count(), fmt.Errorf("%w: %w", ErrCorruptFile, persistence.ErrHeaderMismatch)
	}

	if header.HasChecksum() {
		if err := cr.VerifyTrailer(dec); err != nil {
			return nil, br.Count(), bodyError(translateError(err), src.err)
		}
	}
	if o.strict {
		if err := persistence.NewReader(dec).ExpectEOF(); err != nil {
			return nil, br.Count(), bodyError(translateError(err), src.err)
		}
	}
	return v, br.Count(), nil
}

// sourceReader records the last failure of the reader beneath a decompressor.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return n, err
}

// bodyError reports a failed section read as corruption unless the source
// itself failed with something other than a short read.
func bodyError(err, sourceErr error) error {
	if errors.Is(err, ErrCorruptFile) {
		return err
	}
	if sourceErr != nil && !errors.Is(sourceErr, io.ErrUnexpectedEOF) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCorruptFile, err)
}

// checkStoredSize compares the byte count an uncompressed file needs with
// the bytes available.
func checkStoredSize(header *persistence.FileHeader, size int64, strict bool) error {
	section := persistence.SectionHeader{
		Count:      header.Count,
		ValueWidth: header.ValueWidth,
		KeyBits:    header.KeyBits,
	}
	if err := section.Validate(); err != nil {
		return translateError(err)
	}
	sectionSize, ok := section.Size()
	if !ok {
		return fmt.Errorf("%w: %w: count %d", ErrCorruptFile, persistence.ErrInvalidSection, header.Count)
	}

	want := int64(persistence.HeaderSize) + sectionSize
	if header.HasChecksum() {
		want += persistence.TrailerSize
	}
	switch {
	case want > size:
		return fmt.Errorf("%w: %w: need %d bytes, have %d", ErrCorruptFile, persistence.ErrTruncated, want, size)
	case strict && want < size:
		return fmt.Errorf("%w: %w: %d bytes after the vector", ErrCorruptFile, persistence.ErrTrailingData, size-want)
	}
	return nil
}

// ReadHeader reads and validates the file header at the start of r.
func ReadHeader(r io.Reader) (*persistence.FileHeader, error) {
	header, err := persistence.NewReader(r).ReadHeader()
	if err != nil {
		return nil, translateError(err)
	}
	return header, nil
}

// InspectFile returns the header of a saved vector without reading its buffers.
func InspectFile(path string, optFns ...Option) (*persistence.FileHeader, error) {
	o := applyOptions(optFns)

	var header *persistence.FileHeader
	err := persistence.LoadFromFile(o.fs, path, func(r io.Reader, _ int64) error {
		var err error
		header, err = ReadHeader(r)
		return err
	})
	return header, err
}

// InspectBlob returns the header of a saved vector blob with a single ranged read.
func InspectBlob(ctx context.Context, store blobstore.BlobStore, name string) (*persistence.FileHeader, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	buf := make([]byte, persistence.HeaderSize)
	n, err := blob.ReadAt(ctx, buf, 0)
	if n < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: %w: blob has %d bytes", ErrCorruptFile, persistence.ErrTruncated, n)
		}
		return nil, err
	}
	return ReadHeader(bytes.NewReader(buf))
}

func (o *options) observeSave(ctx context.Context, l *Logger, v shape, n int64, start time.Time, err error) {
	elapsed := time.Since(start)
	o.metricsCollector.RecordSave(n, elapsed, err)
	l.WithShape(v.Size(), v.KeyBits(), v.Width()).LogSave(ctx, n, elapsed, err)
}

func (o *options) observeLoad(ctx context.Context, l *Logger, v shape, n int64, start time.Time, err error) {
	elapsed := time.Since(start)
	o.metricsCollector.RecordLoad(n, elapsed, err)
	if err != nil {
		l.LogLoad(ctx, n, elapsed, err)
		return
	}
	l.WithShape(v.Size(), v.KeyBits(), v.Width()).LogLoad(ctx, n, elapsed, nil)
}

// shape is the part of a vector the observers log.
type shape interface {
	Size() uint64
	KeyBits() uint8
	Width() uint8
}
