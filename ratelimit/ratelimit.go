// Package ratelimit provides writers which throttle the number of bytes written, used to stop large log exports from
// saturating the disk/network of the host.
package ratelimit

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedWriter will use its limiter as a rate limit on the number of bytes written.
type RateLimitedWriter struct {
	ctx     context.Context
	w       io.Writer
	limiter *rate.Limiter
}

var _ io.Writer = (*RateLimitedWriter)(nil)

// NewRateLimitedWriter creates a new writer which respects "limiter" in terms of the number of bytes written.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, limiter *rate.Limiter) *RateLimitedWriter {
	return &RateLimitedWriter{ctx: ctx, w: w, limiter: limiter}
}

// NewBytesPerSecondWriter returns a writer limited to the given number of bytes per second, a non-positive limit
// returns the given writer untouched.
func NewBytesPerSecondWriter(ctx context.Context, w io.Writer, limit int) io.Writer {
	if limit <= 0 {
		return w
	}

	return NewRateLimitedWriter(ctx, w, rate.NewLimiter(rate.Limit(limit), limit))
}

// Write will write p whilst respecting the rate limit.
func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if n <= 0 {
		return n, err
	}

	if err != nil {
		return n, err
	}

	return n, waitChunked(w.ctx, w.limiter, n)
}

// waitChunked waits for n tokens in chunks of the limiter's burst size. This is because rate.Limiter will only allow
// at most its burst number of tokens to be drained at once, so if we want to wait for more than several calls to wait
// are required.
func waitChunked(ctx context.Context, limiter *rate.Limiter, n int) error {
	maxChunkSize := limiter.Burst()

	for n > 0 {
		waitFor := min(n, maxChunkSize)
		if lErr := limiter.WaitN(ctx, waitFor); lErr != nil {
			return fmt.Errorf("could not wait for limiter: %w", lErr)
		}

		n -= waitFor
	}

	return nil
}
