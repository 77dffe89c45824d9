package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/repository"
)

const (
	defaultAuthCachePrefix = "webpet:auth"

	defaultIdentityTTL = 15 * time.Minute
	defaultTokenTTL    = 2 * time.Hour
)

// AuthCacheConfig tunes key prefix and entry TTLs.
type AuthCacheConfig struct {
	KeyPrefix   string
	IdentityTTL time.Duration
	TokenTTL    time.Duration
}

// AuthCache implements port.AuthCache over Redis. Entries are disposable:
// a miss only costs a recomputation through the identity stores.
type AuthCache struct {
	client *red.Client
	prefix string
	idTTL  time.Duration
	tokTTL time.Duration
}

// NewAuthCache constructs the cache repository with the provided Redis client.
func NewAuthCache(client *red.Client, cfg AuthCacheConfig) *AuthCache {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = defaultAuthCachePrefix
	}

	idTTL := cfg.IdentityTTL
	if idTTL <= 0 {
		idTTL = defaultIdentityTTL
	}

	tokTTL := cfg.TokenTTL
	if tokTTL <= 0 {
		tokTTL = defaultTokenTTL
	}

	return &AuthCache{client: client, prefix: prefix, idTTL: idTTL, tokTTL: tokTTL}
}

// identityEnvelope carries the variant tag so the concrete type survives
// the JSON round trip.
type identityEnvelope struct {
	Role         domain.Role          `json:"role"`
	Individual   *domain.Individual   `json:"individual,omitempty"`
	Organization *domain.Organization `json:"organization,omitempty"`
	Protector    *domain.Protector    `json:"protector,omitempty"`
}

func envelopeFor(identity domain.Identity) (identityEnvelope, error) {
	switch v := identity.(type) {
	case *domain.Individual:
		return identityEnvelope{Role: domain.RoleIndividual, Individual: v}, nil
	case *domain.Organization:
		return identityEnvelope{Role: domain.RoleOrganization, Organization: v}, nil
	case *domain.Protector:
		return identityEnvelope{Role: domain.RoleProtector, Protector: v}, nil
	default:
		return identityEnvelope{}, fmt.Errorf("unsupported identity type %T", identity)
	}
}

func (e identityEnvelope) identity() (domain.Identity, error) {
	switch {
	case e.Individual != nil:
		return e.Individual, nil
	case e.Organization != nil:
		return e.Organization, nil
	case e.Protector != nil:
		return e.Protector, nil
	default:
		return nil, fmt.Errorf("empty identity envelope for role %q", e.Role)
	}
}

// GetIdentity returns the cached identity or repository.ErrCacheMiss.
func (c *AuthCache) GetIdentity(ctx context.Context, email string) (domain.Identity, error) {
	raw, err := c.client.Get(ctx, c.identityKey(email)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get identity: %w", err)
	}

	var envelope identityEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("decode identity envelope: %w", err)
	}

	return envelope.identity()
}

// CacheIdentity stores the identity under its email with the identity TTL.
func (c *AuthCache) CacheIdentity(ctx context.Context, identity domain.Identity) error {
	if identity == nil {
		return fmt.Errorf("identity is required")
	}

	envelope, err := envelopeFor(identity)
	if err != nil {
		return err
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode identity envelope: %w", err)
	}

	key := c.identityKey(identity.Base().Email)
	if err := c.client.Set(ctx, key, bytes, c.idTTL).Err(); err != nil {
		return fmt.Errorf("redis set identity: %w", err)
	}

	return nil
}

// GetToken returns the cached token or repository.ErrCacheMiss.
func (c *AuthCache) GetToken(ctx context.Context, email string) (string, error) {
	token, err := c.client.Get(ctx, c.tokenKey(email)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return "", repository.ErrCacheMiss
		}
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return token, nil
}

// CacheToken stores the issued token under the email with the token TTL.
func (c *AuthCache) CacheToken(ctx context.Context, email, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}

	if err := c.client.Set(ctx, c.tokenKey(email), token, c.tokTTL).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}

	return nil
}

// CacheSession maps a session identifier to its email with the token TTL.
func (c *AuthCache) CacheSession(ctx context.Context, sessionID, email string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	if err := c.client.Set(ctx, c.sessionKey(sessionID), email, c.tokTTL).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Extend refreshes the TTL of both the identity and token entries without
// changing their content. Missing entries are left missing.
func (c *AuthCache) Extend(ctx context.Context, email string) error {
	pipe := c.client.TxPipeline()
	pipe.Expire(ctx, c.identityKey(email), c.idTTL)
	pipe.Expire(ctx, c.tokenKey(email), c.tokTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis extend auth entries: %w", err)
	}

	return nil
}

// Evict removes the identity and token entries for the email as one
// logical unit.
func (c *AuthCache) Evict(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, c.identityKey(email), c.tokenKey(email)).Err(); err != nil {
		return fmt.Errorf("redis evict auth entries: %w", err)
	}
	return nil
}

// EvictAll removes every entry under the cache prefix.
func (c *AuthCache) EvictAll(ctx context.Context) error {
	var cursor uint64
	pattern := c.prefix + ":*"

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan auth entries: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis evict all auth entries: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *AuthCache) identityKey(email string) string {
	return fmt.Sprintf("%s:identity:%s", c.prefix, strings.ToLower(strings.TrimSpace(email)))
}

func (c *AuthCache) tokenKey(email string) string {
	return fmt.Sprintf("%s:token:%s", c.prefix, strings.ToLower(strings.TrimSpace(email)))
}

func (c *AuthCache) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", c.prefix, sessionID)
}

var _ port.AuthCache = (*AuthCache)(nil)
