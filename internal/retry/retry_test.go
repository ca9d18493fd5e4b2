package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	sleeps int
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.sleeps++
	return ctx.Err()
}

func TestDoStopsOnSuccess(t *testing.T) {
	clk := &fakeClock{}
	calls := 0
	err := Do(context.Background(), 5, time.Second, clk, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if clk.sleeps != 2 {
		t.Fatalf("expected 2 sleeps, got %d", clk.sleeps)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	clk := &fakeClock{}
	calls := 0
	err := Do(context.Background(), 3, time.Second, clk, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoAbortsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), 3, time.Second, &fakeClock{}, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, 3, time.Second, &fakeClock{}, func(context.Context) (bool, error) {
		t.Fatal("fn should not run after cancellation")
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
