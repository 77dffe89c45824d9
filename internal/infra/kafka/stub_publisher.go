package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured, typically in development.
type StubPublisher struct {
	log *zap.Logger
}

// NewStubPublisher constructs a log-only event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{log: log}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.log.Info("stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishIdentityRegistered logs auth.identity.registered events.
func (p *StubPublisher) PublishIdentityRegistered(_ context.Context, event domain.IdentityRegisteredEvent) error {
	p.logEvent(eventIdentityRegistered, event.RegisteredAt, map[string]any{
		"identity_id": event.IdentityID,
		"role":        string(event.Role),
	})
	return nil
}

// PublishLoginSucceeded logs auth.login.succeeded events.
func (p *StubPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	p.logEvent(eventLoginSucceeded, event.OccurredAt, map[string]any{
		"identity_id": event.IdentityID,
		"from_cache":  event.FromCache,
	})
	return nil
}

// PublishLoginFailed logs auth.login.failed events.
func (p *StubPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	p.logEvent(eventLoginFailed, event.OccurredAt, map[string]any{
		"remaining_attempts": event.RemainingAttempts,
	})
	return nil
}

// PublishAccountLocked logs auth.account.locked events.
func (p *StubPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	p.logEvent(eventAccountLocked, event.LockedAt, map[string]any{
		"unlocks_at":           event.UnlocksAt,
		"consecutive_failures": event.Consecutive,
	})
	return nil
}

// PublishPasswordChanged logs auth.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent(eventPasswordChanged, event.ChangedAt, map[string]any{
		"identity_id": event.IdentityID,
	})
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
