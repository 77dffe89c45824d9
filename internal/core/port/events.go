package port

import (
	"context"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
)

// EventPublisher emits authentication domain events to the message bus.
type EventPublisher interface {
	PublishIdentityRegistered(ctx context.Context, event domain.IdentityRegisteredEvent) error
	PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error
	PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error
	PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
}
