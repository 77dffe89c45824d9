package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/repository"
)

// IdentityResolver locates an identity by email across the three variant
// stores. Lookup order is fixed: individuals, then organizations, then
// protectors. Email uniqueness spans all three, so at most one store holds
// a given address.
type IdentityResolver struct {
	individuals   port.IndividualRepository
	organizations port.OrganizationRepository
	protectors    port.ProtectorRepository
}

// NewIdentityResolver constructs a resolver over the three variant stores.
func NewIdentityResolver(
	individuals port.IndividualRepository,
	organizations port.OrganizationRepository,
	protectors port.ProtectorRepository,
) *IdentityResolver {
	return &IdentityResolver{
		individuals:   individuals,
		organizations: organizations,
		protectors:    protectors,
	}
}

// FindByEmail returns the identity registered under the email, or
// repository.ErrNotFound when no store holds it.
func (r *IdentityResolver) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	individual, err := r.individuals.GetByEmail(ctx, email)
	if err == nil {
		return individual, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup individual: %w", err)
	}

	org, err := r.organizations.GetByEmail(ctx, email)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup organization: %w", err)
	}

	protector, err := r.protectors.GetByEmail(ctx, email)
	if err == nil {
		return protector, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup protector: %w", err)
	}

	return nil, repository.ErrNotFound
}

// ExistsByEmail reports whether any variant store holds the email.
func (r *IdentityResolver) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := r.individuals.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check individual email: %w", err)
	}
	if exists {
		return true, nil
	}

	exists, err = r.organizations.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check organization email: %w", err)
	}
	if exists {
		return true, nil
	}

	exists, err = r.protectors.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check protector email: %w", err)
	}

	return exists, nil
}

// SetActive toggles the active flag on whichever store holds the identity.
func (r *IdentityResolver) SetActive(ctx context.Context, identity domain.Identity, active bool) error {
	base := identity.Base()
	switch identity.(type) {
	case *domain.Individual:
		return r.individuals.SetActive(ctx, base.ID, active)
	case *domain.Organization:
		return r.organizations.SetActive(ctx, base.ID, active)
	case *domain.Protector:
		return r.protectors.SetActive(ctx, base.ID, active)
	default:
		return fmt.Errorf("unsupported identity type %T", identity)
	}
}

// UpdatePassword writes the new hash to whichever store holds the identity.
func (r *IdentityResolver) UpdatePassword(ctx context.Context, identity domain.Identity, passwordHash string, changedAt time.Time) error {
	base := identity.Base()
	switch identity.(type) {
	case *domain.Individual:
		return r.individuals.UpdatePassword(ctx, base.ID, passwordHash, changedAt)
	case *domain.Organization:
		return r.organizations.UpdatePassword(ctx, base.ID, passwordHash, changedAt)
	case *domain.Protector:
		return r.protectors.UpdatePassword(ctx, base.ID, passwordHash, changedAt)
	default:
		return fmt.Errorf("unsupported identity type %T", identity)
	}
}
