// Package hashvec provides a compact vector of (hash key, value) slots for
// open-addressing hash tables such as n-gram count models.
//
// Each slot pairs a 32- or 64-bit hash key with a value packed at a fixed
// bit width W (1..64). A table with n slots therefore costs n·(K+W) bits
// plus one spare word, instead of the n·(K+64) bits of a plain struct slice.
//
// # Quick Start
//
//	b, _ := hashvec.NewBuilder[uint32](5, 6) // 5 slots, 6-bit values
//	_ = b.Set(0, 0x1234, 3)
//	_ = b.Set(1, 0xABCD, 15)
//	_ = b.Set(4, 0xFFFF, 63)
//	v, _ := b.Build()
//
//	e := v.Get(1) // Entry{Key: 0xABCD, Value: 15}
//
// Slots that were never Set read back as (0, 0). WithSlotTracking and
// Builder.Unwritten report them.
//
// # Lifecycle
//
// A Builder owns the buffers while slots are written. Build hands them to an
// immutable CompactVector without copying, after which the Builder returns
// ErrFrozen. A CompactVector is safe for concurrent reads.
//
// # Persistence
//
// WriteTo and ReadFrom encode the raw section:
//
//	n   uint64   slot count
//	W   uint8    value width
//	K   uint8    key width (32 or 64)
//	keys         n·K/8 bytes
//	values       ceil(n·W/64)·8 bytes
//
// Save, SaveFile and SaveBlob wrap the section in a 32-byte header and an
// optional CRC32 trailer, with optional LZ4 or Zstandard compression:
//
//	n, err := v.SaveFile(ctx, "counts.hcv", hashvec.WithCompression(persistence.CompressionZSTD))
//	v, n, err := hashvec.LoadFile[uint32](ctx, "counts.hcv")
//
// All integers are little-endian and the format is only read on
// little-endian hosts. Every decode failure is reported as ErrCorruptFile.
//
// # Observability
//
//	logger := hashvec.NewJSONLogger(slog.LevelInfo)
//	metrics := &hashvec.BasicMetricsCollector{}
//	v, n, err := hashvec.LoadFile[uint32](ctx, "counts.hcv",
//	    hashvec.WithLogger(logger),
//	    hashvec.WithMetricsCollector(metrics),
//	)
package hashvec
