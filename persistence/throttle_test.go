package persistence

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottledWriter(t *testing.T) {
	var buf bytes.Buffer

	// Unlimited returns the writer itself.
	assert.Same(t, &buf, NewThrottledWriter(context.Background(), &buf, 0))

	w := NewThrottledWriter(context.Background(), &buf, 1<<20)
	payload := bytes.Repeat([]byte{7}, 3<<20)

	start := time.Now()
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, buf.Bytes())
	// The first burst is free; the remaining 2MB take about two seconds.
	assert.Greater(t, time.Since(start), time.Second)
}

func TestThrottledWriter_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	w := NewThrottledWriter(ctx, &buf, 16)
	_, err := w.Write(make([]byte, 64))
	assert.ErrorIs(t, err, context.Canceled)
}
