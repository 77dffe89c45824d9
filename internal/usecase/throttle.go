package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
)

const (
	defaultMaxFailures   = 5
	defaultLockoutPeriod = 30 * time.Minute
)

// LoginThrottle enforces the consecutive-failure lockout per email. The
// counter lives in the attempt store with the lockout duration as TTL, so a
// locked account unlocks on its own when the window passes.
type LoginThrottle struct {
	attempts    port.LoginAttemptStore
	maxFailures int
	lockout     time.Duration
}

// NewLoginThrottle constructs the throttle. Non-positive settings fall back
// to five failures and a thirty-minute lockout.
func NewLoginThrottle(attempts port.LoginAttemptStore, maxFailures int, lockout time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if lockout <= 0 {
		lockout = defaultLockoutPeriod
	}
	return &LoginThrottle{attempts: attempts, maxFailures: maxFailures, lockout: lockout}
}

// IsBlocked reports whether the email has reached the failure threshold.
func (t *LoginThrottle) IsBlocked(ctx context.Context, email string) (bool, error) {
	count, err := t.attempts.Count(ctx, email)
	if err != nil {
		return false, fmt.Errorf("count login failures: %w", err)
	}
	return count >= t.maxFailures, nil
}

// RecordFailure bumps the failure counter and reports the new count,
// whether this failure triggered the lockout, and attempts left.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) (count int, locked bool, remaining int, err error) {
	count, err = t.attempts.Increment(ctx, email)
	if err != nil {
		return 0, false, 0, fmt.Errorf("record login failure: %w", err)
	}

	remaining = t.maxFailures - count
	if remaining < 0 {
		remaining = 0
	}

	return count, count >= t.maxFailures, remaining, nil
}

// RemainingAttempts reports how many failures are left before the lockout,
// never below zero.
func (t *LoginThrottle) RemainingAttempts(ctx context.Context, email string) (int, error) {
	count, err := t.attempts.Count(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("count login failures: %w", err)
	}

	remaining := t.maxFailures - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// RecordSuccess clears the failure counter after a successful login.
func (t *LoginThrottle) RecordSuccess(ctx context.Context, email string) error {
	if err := t.attempts.Reset(ctx, email); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}

// LockoutDuration reports the configured lockout window.
func (t *LoginThrottle) LockoutDuration() time.Duration {
	return t.lockout
}

// LockoutMessage renders the lockout window for client-facing messages,
// e.g. "30 minutos".
func (t *LoginThrottle) LockoutMessage() string {
	minutes := int(t.lockout.Minutes())
	if minutes <= 1 {
		return "1 minuto"
	}
	return fmt.Sprintf("%d minutos", minutes)
}
