package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/config"
)

const schemaVersion = "1.0"

// Authentication event types. The producer prefixes them with the
// configured topic prefix.
const (
	eventIdentityRegistered = "auth.identity.registered"
	eventLoginSucceeded     = "auth.login.succeeded"
	eventLoginFailed        = "auth.login.failed"
	eventAccountLocked      = "auth.account.locked"
	eventPasswordChanged    = "auth.password.changed"
)

// EventPublisher implements port.EventPublisher over Kafka.
type EventPublisher struct {
	producer *Producer
	appCfg   config.AppSettings
	log      *zap.Logger
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, log: log}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   eventID,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishIdentityRegistered publishes auth.identity.registered events.
func (p *EventPublisher) PublishIdentityRegistered(ctx context.Context, event domain.IdentityRegisteredEvent) error {
	payload := struct {
		IdentityID   string    `json:"identity_id"`
		Email        string    `json:"email"`
		Role         string    `json:"role"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		IdentityID:   event.IdentityID,
		Email:        event.Email,
		Role:         string(event.Role),
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventIdentityRegistered, event.RegisteredAt, payload)
}

// PublishLoginSucceeded publishes auth.login.succeeded events.
func (p *EventPublisher) PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error {
	payload := struct {
		IdentityID string    `json:"identity_id"`
		Email      string    `json:"email"`
		FromCache  bool      `json:"from_cache"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		IdentityID: event.IdentityID,
		Email:      event.Email,
		FromCache:  event.FromCache,
		OccurredAt: event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventLoginSucceeded, event.OccurredAt, payload)
}

// PublishLoginFailed publishes auth.login.failed events.
func (p *EventPublisher) PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error {
	payload := struct {
		Email             string    `json:"email"`
		RemainingAttempts int       `json:"remaining_attempts"`
		OccurredAt        time.Time `json:"occurred_at"`
	}{
		Email:             event.Email,
		RemainingAttempts: event.RemainingAttempts,
		OccurredAt:        event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventLoginFailed, event.OccurredAt, payload)
}

// PublishAccountLocked publishes auth.account.locked events.
func (p *EventPublisher) PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error {
	payload := struct {
		Email       string    `json:"email"`
		LockedAt    time.Time `json:"locked_at"`
		UnlocksAt   time.Time `json:"unlocks_at"`
		Consecutive int       `json:"consecutive_failures"`
	}{
		Email:       event.Email,
		LockedAt:    event.LockedAt.UTC(),
		UnlocksAt:   event.UnlocksAt.UTC(),
		Consecutive: event.Consecutive,
	}

	return p.publish(ctx, event.EventID, eventAccountLocked, event.LockedAt, payload)
}

// PublishPasswordChanged publishes auth.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		IdentityID string    `json:"identity_id"`
		ChangedAt  time.Time `json:"changed_at"`
	}{
		IdentityID: event.IdentityID,
		ChangedAt:  event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventPasswordChanged, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
