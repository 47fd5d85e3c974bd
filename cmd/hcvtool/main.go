// Command hcvtool builds a random hash/value vector, verifies random
// access, round-trips it through a file and verifies it again.
//
//	hcvtool -n 1000000 -hash-bits 64 -value-bits 20 -compression zstd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hashvec"
	"github.com/hupe1980/hashvec/internal/conv"
	"github.com/hupe1980/hashvec/persistence"
	"github.com/hupe1980/hashvec/testutil"
)

type config struct {
	n           uint64
	hashBits    int
	valueBits   int
	out         string
	compression string
	workers     int
	rate        int64
	seed        int64
	keep        bool
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "hcvtool:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := hashvec.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	switch cfg.hashBits {
	case 32:
		return exercise[uint32](ctx, cfg, logger)
	case 64:
		return exercise[uint64](ctx, cfg, logger)
	default:
		return fmt.Errorf("-hash-bits must be 32 or 64, got %d", cfg.hashBits)
	}
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}

	fset := flag.NewFlagSet("hcvtool", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Uint64Var(&cfg.n, "n", 1_000_000, "number of slots")
	fset.IntVar(&cfg.hashBits, "hash-bits", 64, "key width in bits (32 or 64)")
	fset.IntVar(&cfg.valueBits, "value-bits", 20, "value width in bits (1..64)")
	fset.StringVar(&cfg.out, "out", filepath.Join(os.TempDir(), "hcvtool.hcv"), "output file")
	fset.StringVar(&cfg.compression, "compression", "none", "payload compression: none, lz4 or zstd")
	fset.IntVar(&cfg.workers, "workers", 4, "concurrent verification workers")
	fset.Int64Var(&cfg.rate, "rate", 0, "save rate limit in bytes per second (0 = unlimited)")
	fset.Int64Var(&cfg.seed, "seed", 4711, "random seed")
	fset.BoolVar(&cfg.keep, "keep", false, "keep the output file")
	fset.BoolVar(&cfg.verbose, "v", false, "debug logging")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fset.Args())
	}
	if cfg.valueBits < 1 || cfg.valueBits > 64 {
		return nil, fmt.Errorf("-value-bits must be in [1, 64], got %d", cfg.valueBits)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	return cfg, nil
}

func exercise[K hashvec.Key](ctx context.Context, cfg *config, logger *hashvec.Logger) error {
	compression, err := persistence.ParseCompression(cfg.compression)
	if err != nil {
		return err
	}

	metrics := &hashvec.BasicMetricsCollector{}
	opts := []hashvec.Option{
		hashvec.WithLogger(logger),
		hashvec.WithMetricsCollector(metrics),
		hashvec.WithCompression(compression),
		hashvec.WithStrict(),
	}
	if cfg.rate > 0 {
		opts = append(opts, hashvec.WithRateLimit(cfg.rate))
	}

	n, err := conv.Uint64ToInt(cfg.n)
	if err != nil {
		return err
	}
	width, err := conv.Uint64ToUint8(uint64(cfg.valueBits))
	if err != nil {
		return err
	}
	rng := testutil.NewRNG(cfg.seed)

	keys := make([]K, n)
	values := randomValues(rng, n, width)

	start := time.Now()
	b, err := hashvec.NewBuilder[K](cfg.n, width, opts...)
	if err != nil {
		return err
	}
	for i := range keys {
		keys[i] = K(rng.Uint64())
		if err := b.Set(uint64(i), keys[i], values[i]); err != nil {
			return err
		}
	}
	v, err := b.Build()
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "built vector",
		"n", v.Size(),
		"key_bits", v.KeyBits(),
		"value_bits", v.Width(),
		"key_bytes", v.KeyBytes(),
		"value_bytes", v.ValueBytes(),
		"duration", time.Since(start),
	)

	if err := verify(ctx, v, keys, values, cfg.workers); err != nil {
		return fmt.Errorf("verify built vector: %w", err)
	}
	logger.InfoContext(ctx, "verified built vector")

	written, err := v.SaveFile(ctx, cfg.out, opts...)
	if err != nil {
		return err
	}
	if !cfg.keep {
		defer os.Remove(cfg.out)
	}

	loaded, read, err := hashvec.LoadFile[K](ctx, cfg.out, opts...)
	if err != nil {
		return err
	}
	if read != written {
		return fmt.Errorf("read %d bytes, wrote %d", read, written)
	}

	if err := verify(ctx, loaded, keys, values, cfg.workers); err != nil {
		return fmt.Errorf("verify loaded vector: %w", err)
	}

	stats := metrics.GetStats()
	logger.InfoContext(ctx, "verified loaded vector",
		"path", cfg.out,
		"bytes", written,
		"bits_per_slot", float64(written*8)/float64(cfg.n),
		"save_avg", time.Duration(stats.SaveAvgNanos),
		"load_avg", time.Duration(stats.LoadAvgNanos),
	)
	return nil
}

// randomValues draws n values from [0, 2^(w-1)], which always fits in w bits.
func randomValues(rng *testutil.RNG, n int, w uint8) []uint64 {
	return rng.UpTo(n, uint64(1)<<(w-1))
}

var errMismatch = errors.New("slot mismatch")

// verify probes n random slots, split across workers by range.
func verify[K hashvec.Key](ctx context.Context, v hashvec.Lookup[K], keys []K, values []uint64, workers int) error {
	n := v.Size()
	if n != uint64(len(keys)) {
		return fmt.Errorf("%w: size %d, want %d", errMismatch, n, len(keys))
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (n + uint64(workers) - 1) / uint64(workers)
	for w := 0; w < workers; w++ {
		lo := uint64(w) * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		rng := testutil.NewRNG(int64(w) + 1)
		g.Go(func() error {
			span := int(hi - lo)
			for j := 0; j < span; j++ {
				if j&0xffff == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				i := lo + uint64(rng.Intn(span))
				e := v.Get(i)
				if e.Key != keys[i] || e.Value != values[i] {
					return fmt.Errorf("%w at %d: got (%d, %d), want (%d, %d)",
						errMismatch, i, e.Key, e.Value, keys[i], values[i])
				}
			}
			return nil
		})
	}
	return g.Wait()
}
