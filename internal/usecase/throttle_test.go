package usecase

import (
	"context"
	"testing"
	"time"
)

func TestLoginThrottle_RemainingAttempts(t *testing.T) {
	attempts := newStubAttemptStore()
	throttle := NewLoginThrottle(attempts, 5, 30*time.Minute)

	ctx := context.Background()
	remaining, err := throttle.RemainingAttempts(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("RemainingAttempts returned error: %v", err)
	}
	if remaining != 5 {
		t.Fatalf("expected 5 attempts before any failure, got %d", remaining)
	}

	for i := 0; i < 2; i++ {
		if _, _, _, err := throttle.RecordFailure(ctx, "ana@example.com"); err != nil {
			t.Fatalf("RecordFailure returned error: %v", err)
		}
	}

	remaining, err = throttle.RemainingAttempts(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("RemainingAttempts returned error: %v", err)
	}
	if remaining != 3 {
		t.Fatalf("expected 3 attempts after two failures, got %d", remaining)
	}

	for i := 0; i < 4; i++ {
		if _, _, _, err := throttle.RecordFailure(ctx, "ana@example.com"); err != nil {
			t.Fatalf("RecordFailure returned error: %v", err)
		}
	}

	remaining, err = throttle.RemainingAttempts(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("RemainingAttempts returned error: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected remaining floored at zero past the threshold, got %d", remaining)
	}

	if err := throttle.RecordSuccess(ctx, "ana@example.com"); err != nil {
		t.Fatalf("RecordSuccess returned error: %v", err)
	}
	remaining, err = throttle.RemainingAttempts(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("RemainingAttempts returned error: %v", err)
	}
	if remaining != 5 {
		t.Fatalf("expected full allowance after reset, got %d", remaining)
	}
}
