package forwarder

import (
	"context"
	"math/rand"
	"time"
)

const backoffJitter = 0.2

// Backoff computes the delay after consecutive failed iterations.
// Delays start once After failures happened, double from Initial and are capped at Max.
type Backoff struct {
	Initial  time.Duration
	Max      time.Duration
	After    int
	failures int
	jitter   func() float64
}

// NewBackoff creates a backoff; after values below 1 are treated as 1
func NewBackoff(initial, max time.Duration, after int) *Backoff {
	if after < 1 {
		after = 1
	}
	if max < initial {
		max = initial
	}
	return &Backoff{
		Initial: initial,
		Max:     max,
		After:   after,
		jitter:  rand.Float64,
	}
}

// Failure records a failed iteration and returns how long to wait before the next one
func (b *Backoff) Failure() time.Duration {
	b.failures++
	if b.failures < b.After || b.Initial <= 0 {
		return 0
	}

	delay := b.Initial
	for i := b.After; i < b.failures && delay < b.Max; i++ {
		delay *= 2
	}
	if delay > b.Max {
		delay = b.Max
	}

	// Symmetrical jitter, never above Max
	j := 1 + (b.jitter()*2-1)*backoffJitter
	delay = time.Duration(float64(delay) * j)
	if delay > b.Max {
		delay = b.Max
	}
	return delay
}

// Success resets the consecutive failure counter
func (b *Backoff) Success() {
	b.failures = 0
}

// Failures returns the number of consecutive failures
func (b *Backoff) Failures() int {
	return b.failures
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
