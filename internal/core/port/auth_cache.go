package port

import (
	"context"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
)

// AuthCache is the disposable fast path in front of the identity stores.
// Entries are advisory acceleration only; the durable stores stay authoritative.
type AuthCache interface {
	GetIdentity(ctx context.Context, email string) (domain.Identity, error)
	CacheIdentity(ctx context.Context, identity domain.Identity) error
	GetToken(ctx context.Context, email string) (string, error)
	CacheToken(ctx context.Context, email, token string) error
	CacheSession(ctx context.Context, sessionID, email string) error
	Extend(ctx context.Context, email string) error
	Evict(ctx context.Context, email string) error
	EvictAll(ctx context.Context) error
}

// LoginAttemptStore tracks consecutive failed logins per email.
// Increments and resets must be atomic per key.
type LoginAttemptStore interface {
	Increment(ctx context.Context, email string) (int, error)
	Reset(ctx context.Context, email string) error
	Count(ctx context.Context, email string) (int, error)
}
