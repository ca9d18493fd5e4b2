package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when every attempt completed without the predicate
// reporting success.
var ErrExhausted = errors.New("retry attempts exhausted")

// Clock abstracts delays so callers can run the loop deterministically in tests.
type Clock interface {
	// Sleep blocks for d or until ctx is cancelled, returning ctx.Err() in
	// the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on the wall clock.
type RealClock struct{}

// Sleep waits for d unless the context is cancelled first.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do invokes fn up to attempts times, sleeping delay between attempts. fn
// reports done=true to stop retrying; a non-nil error aborts immediately.
// Exhausting the budget without success returns ErrExhausted.
func Do(ctx context.Context, attempts int, delay time.Duration, clk Clock, fn func(context.Context) (done bool, err error)) error {
	if attempts < 1 {
		attempts = 1
	}
	if clk == nil {
		clk = RealClock{}
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if i < attempts-1 {
			if err := clk.Sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	return ErrExhausted
}
