package persistence

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// ThrottledWriter limits the throughput of an underlying writer.
// Writes larger than the limiter burst are split into burst-sized chunks.
type ThrottledWriter struct {
	ctx     context.Context
	w       io.Writer
	limiter *rate.Limiter
}

// NewThrottledWriter returns a writer capped at bytesPerSec.
// A non-positive rate returns w unchanged.
func NewThrottledWriter(ctx context.Context, w io.Writer, bytesPerSec int64) io.Writer {
	if bytesPerSec <= 0 {
		return w
	}
	return &ThrottledWriter{
		ctx:     ctx,
		w:       w,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec)),
	}
}

// Write implements io.Writer. It blocks until the limiter admits each chunk
// or the context is done.
func (t *ThrottledWriter) Write(p []byte) (int, error) {
	total := 0
	burst := t.limiter.Burst()
	for len(p) > 0 {
		chunk := min(len(p), burst)
		if err := t.limiter.WaitN(t.ctx, chunk); err != nil {
			return total, err
		}
		n, err := t.w.Write(p[:chunk])
		total += n
		if err != nil {
			return total, err
		}
		p = p[chunk:]
	}
	return total, nil
}
