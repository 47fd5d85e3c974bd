package hashvec_test

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/hashvec"
	"github.com/hupe1980/hashvec/blobstore"
	"github.com/hupe1980/hashvec/persistence"
)

// Example demonstrates building a vector and reading slots back.
func Example() {
	b, err := hashvec.NewBuilder[uint32](5, 6)
	if err != nil {
		log.Fatal(err)
	}
	_ = b.Set(0, 0x1234, 3)
	_ = b.Set(1, 0xABCD, 15)
	_ = b.Set(4, 0xFFFF, 63)

	v, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	for i, e := range v.All() {
		fmt.Printf("%d: %#x=%d\n", i, e.Key, e.Value)
	}
	// Output:
	// 0: 0x1234=3
	// 1: 0xabcd=15
	// 2: 0x0=0
	// 3: 0x0=0
	// 4: 0xffff=63
}

// ExampleCompactVector_WriteTo demonstrates the raw section round trip.
func ExampleCompactVector_WriteTo() {
	b, _ := hashvec.NewBuilder[uint64](3, 10)
	_ = b.Set(2, 42, 1000)
	v, _ := b.Build()

	var buf bytes.Buffer
	n, err := v.WriteTo(&buf)
	if err != nil {
		log.Fatal(err)
	}

	loaded, _, err := hashvec.ReadFrom[uint64](&buf)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(n, loaded.Get(2))
	// Output: 42 {42 1000}
}

// ExampleCompactVector_SaveBlob demonstrates compressed persistence to a blob store.
func ExampleCompactVector_SaveBlob() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	b, _ := hashvec.NewBuilder[uint32](1024, 8)
	for i := range uint64(1024) {
		_ = b.Set(i, uint32(i), i%256)
	}
	v, _ := b.Build()

	if _, err := v.SaveBlob(ctx, store, "counts.hcv",
		hashvec.WithCompression(persistence.CompressionZSTD),
	); err != nil {
		log.Fatal(err)
	}

	header, err := hashvec.InspectBlob(ctx, store, "counts.hcv")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(header.Count, header.KeyBits, header.ValueWidth, header.Compression)

	loaded, _, err := hashvec.LoadBlob[uint32](ctx, store, "counts.hcv")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(loaded.Get(300))
	// Output:
	// 1024 32 8 zstd
	// {300 44}
}

// ExampleBuilder_Unwritten demonstrates finding slots that were never set.
func ExampleBuilder_Unwritten() {
	b, _ := hashvec.NewBuilder[uint32](4, 4, hashvec.WithSlotTracking())
	_ = b.Set(0, 7, 1)
	_ = b.Set(2, 9, 2)

	fmt.Println(b.Unwritten().ToArray())
	// Output: [1 3]
}
