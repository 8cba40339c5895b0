package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/creatorly/styletrain/internal/domain"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	var calls int
	got, err := Do(context.Background(), Policy{MaxAttempts: 3}, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	var calls int
	got, err := Do(context.Background(), Policy{MaxAttempts: 3, Delay: time.Millisecond}, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", domain.NewRetryable(domain.ErrExternalService, nil, "transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	var calls int
	permanent := domain.NewError(domain.ErrOwnershipViolation, "not yours")
	_, err := Do(context.Background(), Policy{MaxAttempts: 5, Delay: time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("expected the permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var calls int
	_, err := Do(context.Background(), Policy{MaxAttempts: 3, Delay: time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		return 0, domain.NewRetryable(domain.ErrExternalService, nil, "still down")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ContextCancellationInterruptsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, Policy{MaxAttempts: 3, Delay: time.Minute}, func(ctx context.Context) (int, error) {
			calls++
			return 0, domain.NewRetryable(domain.ErrExternalService, nil, "down")
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestDo_ExponentialBackoffGrows(t *testing.T) {
	var stamps []time.Time
	_, _ = Do(context.Background(), Policy{
		MaxAttempts: 3,
		Delay:       20 * time.Millisecond,
		Backoff:     BackoffExponential,
	}, func(ctx context.Context) (int, error) {
		stamps = append(stamps, time.Now())
		return 0, domain.NewRetryable(domain.ErrExternalService, nil, "down")
	})

	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}
	// Gaps should be roughly 20ms then 40ms.
	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	if first < 15*time.Millisecond {
		t.Errorf("first gap too short: %v", first)
	}
	if second < 35*time.Millisecond {
		t.Errorf("second gap too short: %v", second)
	}
}
