package port

import (
	"context"
	"time"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
)

// IndividualRepository exposes persistence behavior for individual accounts.
type IndividualRepository interface {
	Create(ctx context.Context, individual domain.Individual) error
	GetByEmail(ctx context.Context, email string) (*domain.Individual, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
}

// OrganizationRepository exposes persistence behavior for organization accounts.
type OrganizationRepository interface {
	Create(ctx context.Context, org domain.Organization) error
	GetByEmail(ctx context.Context, email string) (*domain.Organization, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
}

// ProtectorRepository exposes persistence behavior for protector accounts.
type ProtectorRepository interface {
	Create(ctx context.Context, protector domain.Protector) error
	GetByEmail(ctx context.Context, email string) (*domain.Protector, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
}

// PasswordHistoryRepository stores recent password hashes per identity.
type PasswordHistoryRepository interface {
	ListRecent(ctx context.Context, identityID string, limit int) ([]domain.PasswordHistoryEntry, error)
	Add(ctx context.Context, entry domain.PasswordHistoryEntry) error
	TrimOldest(ctx context.Context, identityID string, keep int) error
}

// SessionRepository persists login sessions so logout can revoke them.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	ListActiveByIdentity(ctx context.Context, identityID string) ([]domain.Session, error)
	RevokeByIdentity(ctx context.Context, identityID string, at time.Time) error
}
