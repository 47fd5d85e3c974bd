package hashvec

import (
	"github.com/hupe1980/hashvec/internal/fs"
	"github.com/hupe1980/hashvec/persistence"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	compression      persistence.CompressionType
	checksum         bool
	strict           bool
	rateLimit        int64 // bytes per second, 0 = unlimited
	slotTracking     bool
	fs               fs.FileSystem
}

// Option configures builders and the save/load entry points.
//
// Options that do not apply to an operation are ignored by it, so one option
// slice can be shared between a builder and the calls that persist its vector.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		compression:      persistence.CompressionNone,
		checksum:         true,
		fs:               fs.Default,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger configures the structured logger.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for build, save and load.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hashvec.BasicMetricsCollector{}
//	n, err := v.SaveFile(ctx, "counts.hcv", hashvec.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCompression compresses everything after the file header on save.
// Loads detect the compression from the header and ignore this option.
func WithCompression(c persistence.CompressionType) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithChecksum enables or disables the CRC32 trailer on save (default: enabled).
// Loads verify a trailer whenever the header announces one.
func WithChecksum(enabled bool) Option {
	return func(o *options) {
		o.checksum = enabled
	}
}

// WithStrict makes loads reject bytes after the end of the saved vector.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithRateLimit caps save throughput at bytesPerSec.
// Values <= 0 disable the limit.
func WithRateLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.rateLimit = bytesPerSec
	}
}

// WithSlotTracking makes a Builder remember which slots were written so that
// Unwritten can report the gaps. It costs a compressed bitmap over the indices.
func WithSlotTracking() Option {
	return func(o *options) {
		o.slotTracking = true
	}
}

// withFileSystem swaps the filesystem used by SaveFile and LoadFile.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}
