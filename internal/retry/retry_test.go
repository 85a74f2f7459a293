package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNextDelay(t *testing.T) {
	base := 100 * time.Millisecond
	ceiling := time.Second

	tests := []struct {
		attempt  int
		minDelay time.Duration
		maxDelay time.Duration
	}{
		{0, 80 * time.Millisecond, 120 * time.Millisecond},   // 100ms ± 20%
		{1, 160 * time.Millisecond, 240 * time.Millisecond},  // 200ms ± 20%
		{2, 320 * time.Millisecond, 480 * time.Millisecond},  // 400ms ± 20%
		{4, 800 * time.Millisecond, 1200 * time.Millisecond}, // capped at 1s
		{-1, 80 * time.Millisecond, 120 * time.Millisecond},  // negative treated as 0
		{90, 800 * time.Millisecond, 1200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			// Run multiple times to account for jitter
			for i := 0; i < 10; i++ {
				delay := NextDelay(tt.attempt, base, ceiling)
				if delay < tt.minDelay || delay > tt.maxDelay {
					t.Errorf("NextDelay(%d) = %v, want between %v and %v",
						tt.attempt, delay, tt.minDelay, tt.maxDelay)
				}
			}
		})
	}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ReturnsLastError(t *testing.T) {
	calls := 0
	want := errors.New("still down")
	err := Do(context.Background(), Policy{Attempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return want
	})

	if !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	notFound := errors.New("not found")
	err := Do(context.Background(), DefaultPolicy(), func(ctx context.Context) error {
		calls++
		return Permanent(notFound)
	})

	if err != notFound {
		t.Errorf("expected unwrapped permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Policy{Attempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}, func(ctx context.Context) error {
		return errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPermanent_Nil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}
