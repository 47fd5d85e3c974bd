// Package testutil provides random data generators for hashvec tests and
// benchmarks. It is intended for use in tests only.
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.Keys32(n)
//	values := rng.Values(n, 6)           // uniform in [0, 2^6)
//	counts := rng.ZipfCounts(n, 20, 1.2) // skewed like n-gram counts
//	occupied := rng.Occupancy(n, 0.7)    // 70% load factor
package testutil
