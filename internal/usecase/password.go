package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/logger"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/security"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/repository"
)

// PasswordService changes account passwords with reuse prevention over the
// recent password history.
type PasswordService struct {
	resolver  *IdentityResolver
	history   port.PasswordHistoryRepository
	passwords *security.PasswordValidator
	cache     port.AuthCache
	events    port.EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewPasswordService constructs a PasswordService instance.
func NewPasswordService(
	resolver *IdentityResolver,
	history port.PasswordHistoryRepository,
	passwords *security.PasswordValidator,
	cache port.AuthCache,
	events port.EventPublisher,
	log *zap.Logger,
) *PasswordService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordService{
		resolver:  resolver,
		history:   history,
		passwords: passwords,
		cache:     cache,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *PasswordService) WithClock(clock func() time.Time) *PasswordService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// ChangePassword verifies the current password, enforces the policy and
// reuse window, and persists the new hash. Cached entries for the account
// are evicted so outstanding tokens stop resolving through the cache.
func (s *PasswordService) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	email = normalizeEmail(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if currentPassword == "" {
		return &ValidationError{Field: "currentPassword", Message: "current password is required"}
	}
	if newPassword == "" {
		return &ValidationError{Field: "newPassword", Message: "new password is required"}
	}

	identity, err := s.resolver.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	base := identity.Base()
	if !base.Active {
		return ErrInactiveAccount
	}

	ok, err := security.VerifyPassword(currentPassword, base.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify current password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := s.passwords.Validate(newPassword); err != nil {
		return &ValidationError{Field: "newPassword", Message: err.Error()}
	}

	reused, err := s.isRecentlyUsed(ctx, base.ID, newPassword)
	if err != nil {
		return err
	}
	if reused {
		return &BusinessError{
			Code:    CodePasswordReused,
			Message: fmt.Sprintf("password matches one of the last %d passwords", domain.PasswordHistoryDepth),
		}
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	changedAt := s.now().UTC()
	if err := s.resolver.UpdatePassword(ctx, identity, hash, changedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.recordPassword(ctx, base.ID, hash, changedAt); err != nil {
		s.log.Warn("record password history failed", zap.Error(err))
	}

	if err := s.cache.Evict(ctx, email); err != nil {
		s.log.Warn("evict cache entries failed", zap.Error(err))
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:    uuid.NewString(),
			IdentityID: base.ID,
			ChangedAt:  changedAt,
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.log.Warn("publish password changed event failed", zap.Error(err))
		}
	}

	s.log.Info("password changed", zap.String("email", logger.MaskEmail(email)))
	return nil
}

// isRecentlyUsed checks the candidate against the recent history hashes.
// Hashes are salted, so each entry needs a full verification pass.
func (s *PasswordService) isRecentlyUsed(ctx context.Context, identityID, candidate string) (bool, error) {
	entries, err := s.history.ListRecent(ctx, identityID, domain.PasswordHistoryDepth)
	if err != nil {
		return false, fmt.Errorf("list password history: %w", err)
	}

	for _, entry := range entries {
		match, err := security.VerifyPassword(candidate, entry.PasswordHash)
		if err != nil {
			return false, fmt.Errorf("verify history entry: %w", err)
		}
		if match {
			return true, nil
		}
	}

	return false, nil
}

func (s *PasswordService) recordPassword(ctx context.Context, identityID, hash string, setAt time.Time) error {
	entry := domain.PasswordHistoryEntry{
		ID:           uuid.NewString(),
		IdentityID:   identityID,
		PasswordHash: hash,
		SetAt:        setAt,
	}
	if err := s.history.Add(ctx, entry); err != nil {
		return err
	}
	return s.history.TrimOldest(ctx, identityID, domain.PasswordHistoryDepth)
}
