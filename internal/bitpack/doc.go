// Package bitpack stores fixed-width unsigned fields packed back to back in a
// slice of 64-bit words.
//
// Layout:
//   - Field i occupies bits [i*w, (i+1)*w) of the little-endian bit stream.
//   - A field may straddle two words: its low bits sit in the high bits of
//     word k, its high bits in the low bits of word k+1.
//   - One extra zero word follows the data words so a straddling read of the
//     last field never indexes past the slice.
//
// A Store is not safe for concurrent writes. Once writes stop it may be read
// from any number of goroutines.
package bitpack
