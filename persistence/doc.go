// Package persistence provides the on-disk format for hash compact vectors.
//
// A saved vector is a FileHeader followed by a raw section:
//
//	FileHeader (32 bytes)  magic, version, compression, flags, K, W, n
//	SectionHeader (10 bytes) n uint64, W uint8, K uint8
//	keys      n*K/8 bytes
//	values    ceil(n*W/64)*8 bytes
//	checksum  CRC32 of the raw section (when FlagChecksum is set)
//
// Everything after the FileHeader passes through the compressor named in the
// header. The raw section is also written on its own, without a FileHeader,
// by callers that keep (n, W, K) elsewhere.
//
// PLATFORM REQUIREMENTS:
//   - Endianness: little-endian. Slices are written in native byte order.
//   - Alignment: 4-byte for uint32 keys, 8-byte for uint64 keys and words.
//
// The unsafe slice conversions are guarded by the checks in safety.go.
package persistence
