package hf

import (
	"context"
	"time"

	"lukechampine.com/frand"
)

type backoff struct {
	base time.Duration
	max  time.Duration
	cur  time.Duration
}

func newBackoff(base, max time.Duration) *backoff { return &backoff{base: base, max: max} }

// Sleep waits for the next delay or until ctx is done.
func (b *backoff) Sleep(ctx context.Context) error {
	if b.cur <= 0 {
		b.cur = b.base
	} else {
		b.cur *= 2
		if b.cur > b.max {
			b.cur = b.max
		}
	}
	// jitter ~ +/-20%
	j := 0.8 + 0.4*frand.Float64()
	t := time.NewTimer(time.Duration(float64(b.cur) * j))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Reset drops the delay back to base after a success.
func (b *backoff) Reset() { b.cur = 0 }
