package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
)

const (
	defaultAttemptPrefix  = "webpet:auth:attempts"
	defaultAttemptLockout = 30 * time.Minute
)

// LoginAttemptConfig tunes the failure counter key prefix and lockout TTL.
type LoginAttemptConfig struct {
	KeyPrefix string
	Lockout   time.Duration
}

// LoginAttemptRepository tracks consecutive failed logins per email in Redis.
// The counter key expires after the lockout window, which makes the lockout
// self-clearing: a locked account unlocks when the key evaporates.
type LoginAttemptRepository struct {
	client  *red.Client
	prefix  string
	lockout time.Duration
}

// NewLoginAttemptRepository constructs the attempt counter repository.
func NewLoginAttemptRepository(client *red.Client, cfg LoginAttemptConfig) *LoginAttemptRepository {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = defaultAttemptPrefix
	}

	lockout := cfg.Lockout
	if lockout <= 0 {
		lockout = defaultAttemptLockout
	}

	return &LoginAttemptRepository{client: client, prefix: prefix, lockout: lockout}
}

// Increment bumps the failure counter atomically and refreshes the lockout
// TTL, returning the new count.
func (r *LoginAttemptRepository) Increment(ctx context.Context, email string) (int, error) {
	key := r.key(email)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.lockout)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis increment login attempts: %w", err)
	}

	return int(incr.Val()), nil
}

// Reset clears the failure counter. Resetting an absent counter is a no-op.
func (r *LoginAttemptRepository) Reset(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil {
		return fmt.Errorf("redis reset login attempts: %w", err)
	}
	return nil
}

// Count returns the current failure count, zero when no counter exists.
func (r *LoginAttemptRepository) Count(ctx context.Context, email string) (int, error) {
	raw, err := r.client.Get(ctx, r.key(email)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get login attempts: %w", err)
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse login attempt count: %w", err)
	}

	return count, nil
}

func (r *LoginAttemptRepository) key(email string) string {
	return fmt.Sprintf("%s:%s", r.prefix, strings.ToLower(strings.TrimSpace(email)))
}

var _ port.LoginAttemptStore = (*LoginAttemptRepository)(nil)
