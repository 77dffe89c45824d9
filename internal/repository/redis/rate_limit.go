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

const defaultRateLimitPrefix = "webpet:ratelimit"

// RateLimitConfig tunes the sorted-set key prefix and retention TTL.
type RateLimitConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

// RateLimitRepository records request attempts in Redis sorted sets so the
// HTTP layer can enforce sliding-window limits per client.
type RateLimitRepository struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewRateLimitRepository constructs the sliding-window attempt store.
func NewRateLimitRepository(client *red.Client, cfg RateLimitConfig) *RateLimitRepository {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = defaultRateLimitPrefix
	}

	return &RateLimitRepository{client: client, prefix: prefix, ttl: cfg.TTL}
}

// RecordAttempt stores an attempt timestamp and refreshes the key TTL.
func (r *RateLimitRepository) RecordAttempt(ctx context.Context, identifier string, at time.Time) error {
	key := r.key(identifier)
	nanos := at.UnixNano()

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, red.Z{Score: float64(nanos), Member: nanos})
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record attempt: %w", err)
	}

	return nil
}

// CountAttempts returns how many attempts fall inside the window ending at
// the reference time.
func (r *RateLimitRepository) CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	min, max, err := windowBounds(window, reference)
	if err != nil {
		return 0, err
	}

	count, err := r.client.ZCount(ctx, r.key(identifier), min, max).Result()
	if err != nil {
		return 0, fmt.Errorf("redis count attempts: %w", err)
	}

	return int(count), nil
}

// TrimWindow drops attempts that slid out of the window.
func (r *RateLimitRepository) TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error {
	min, _, err := windowBounds(window, reference)
	if err != nil {
		return err
	}

	if err := r.client.ZRemRangeByScore(ctx, r.key(identifier), "-inf", min).Err(); err != nil {
		return fmt.Errorf("redis trim window: %w", err)
	}

	return nil
}

// OldestAttempt returns the earliest attempt still inside the window, if any.
func (r *RateLimitRepository) OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	min, max, err := windowBounds(window, reference)
	if err != nil {
		return time.Time{}, false, err
	}

	values, err := r.client.ZRangeByScore(ctx, r.key(identifier), &red.ZRangeBy{
		Min:   min,
		Max:   max,
		Count: 1,
	}).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis oldest attempt: %w", err)
	}

	if len(values) == 0 {
		return time.Time{}, false, nil
	}

	nanos, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse attempt timestamp: %w", err)
	}

	return time.Unix(0, nanos), true, nil
}

func windowBounds(window time.Duration, reference time.Time) (string, string, error) {
	if window <= 0 {
		return "", "", errors.New("window must be positive")
	}

	min := strconv.FormatInt(reference.Add(-window).UnixNano(), 10)
	max := strconv.FormatInt(reference.UnixNano(), 10)
	return min, max, nil
}

func (r *RateLimitRepository) key(identifier string) string {
	return fmt.Sprintf("%s:%s", r.prefix, identifier)
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
