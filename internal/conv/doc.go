// Package conv provides checked integer conversions.
//
// Use them where the input is untrusted: counts decoded from file headers,
// widths parsed from flags. Provably bounded values use direct casts.
package conv
