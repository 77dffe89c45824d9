package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/logger"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/security"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/repository"
)

// TokenTypeBearer is the token type reported to clients.
const TokenTypeBearer = "Bearer"

// LoginResult carries everything the transport layer returns on success.
type LoginResult struct {
	IdentityID  string
	DisplayName string
	Email       string
	Role        domain.Role
	Token       string
	TokenType   string
	FromCache   bool
}

// AuthService coordinates login, logout, and account activation flows.
type AuthService struct {
	resolver *IdentityResolver
	throttle *LoginThrottle
	cache    port.AuthCache
	sessions port.SessionRepository
	tokens   *security.TokenService
	events   port.EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	resolver *IdentityResolver,
	throttle *LoginThrottle,
	cache port.AuthCache,
	sessions port.SessionRepository,
	tokens *security.TokenService,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		resolver: resolver,
		throttle: throttle,
		cache:    cache,
		sessions: sessions,
		tokens:   tokens,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Login authenticates the email and password and issues a bearer token.
// The lockout check runs before any credential work, so a locked account
// answers the same way whether or not the password is correct.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "email is required"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "password is required"}
	}

	blocked, err := s.throttle.IsBlocked(ctx, email)
	if err != nil {
		return nil, err
	}
	if blocked {
		s.log.Warn("login attempt on locked account", zap.String("email", logger.MaskEmail(email)))
		return nil, &AccountLockedError{Duration: s.throttle.LockoutMessage()}
	}

	if result, ok := s.loginFromCache(ctx, email, password); ok {
		return result, nil
	}

	identity, err := s.resolver.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.handleFailure(ctx, email)
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(password, identity.Base().PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, s.handleFailure(ctx, email)
	}

	// Account state is checked only after the credentials verified, so a
	// wrong password never reveals whether the account is deactivated.
	if !identity.Base().Active {
		return nil, ErrInactiveAccount
	}

	return s.completeLogin(ctx, identity, false)
}

// loginFromCache serves a login from cached identity and token. The
// password is still verified against the cached hash; the cache only
// spares the durable-store round trips.
func (s *AuthService) loginFromCache(ctx context.Context, email, password string) (*LoginResult, bool) {
	identity, err := s.cache.GetIdentity(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.log.Warn("identity cache read failed", zap.Error(err))
		}
		return nil, false
	}

	if !identity.Base().Active {
		return nil, false
	}

	ok, err := security.VerifyPassword(password, identity.Base().PasswordHash)
	if err != nil || !ok {
		return nil, false
	}

	token, err := s.cache.GetToken(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.log.Warn("token cache read failed", zap.Error(err))
		}
		return nil, false
	}

	if subject := s.tokens.Validate(token); subject != email {
		return nil, false
	}

	if err := s.cache.Extend(ctx, email); err != nil {
		s.log.Warn("extend cache entries failed", zap.Error(err))
	}
	if err := s.throttle.RecordSuccess(ctx, email); err != nil {
		s.log.Warn("reset failure counter failed", zap.Error(err))
	}

	s.publishLoginSucceeded(ctx, identity, true)

	return &LoginResult{
		IdentityID:  identity.Base().ID,
		DisplayName: identity.DisplayName(),
		Email:       email,
		Role:        identity.Base().Role,
		Token:       token,
		TokenType:   TokenTypeBearer,
		FromCache:   true,
	}, true
}

func (s *AuthService) completeLogin(ctx context.Context, identity domain.Identity, fromCache bool) (*LoginResult, error) {
	base := identity.Base()

	if err := s.throttle.RecordSuccess(ctx, base.Email); err != nil {
		s.log.Warn("reset failure counter failed", zap.Error(err))
	}

	token, err := s.tokens.Generate(base.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.cache.CacheIdentity(ctx, identity); err != nil {
		s.log.Warn("cache identity failed", zap.Error(err))
	}
	if err := s.cache.CacheToken(ctx, base.Email, token); err != nil {
		s.log.Warn("cache token failed", zap.Error(err))
	}

	now := s.now().UTC()
	session := domain.Session{
		ID:         uuid.NewString(),
		IdentityID: base.ID,
		Email:      base.Email,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.cache.CacheSession(ctx, session.ID, base.Email); err != nil {
		s.log.Warn("cache session failed", zap.Error(err))
	}

	s.publishLoginSucceeded(ctx, identity, fromCache)
	s.log.Info("login succeeded",
		zap.String("email", logger.MaskEmail(base.Email)),
		zap.String("role", string(base.Role)),
	)

	return &LoginResult{
		IdentityID:  base.ID,
		DisplayName: identity.DisplayName(),
		Email:       base.Email,
		Role:        base.Role,
		Token:       token,
		TokenType:   TokenTypeBearer,
		FromCache:   fromCache,
	}, nil
}

// handleFailure records the failed attempt and maps it to the client-facing
// error: locked when this failure crossed the threshold, otherwise invalid
// credentials with the attempts left.
func (s *AuthService) handleFailure(ctx context.Context, email string) error {
	count, locked, remaining, err := s.throttle.RecordFailure(ctx, email)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if locked {
		s.publishEvent(ctx, func(ctx context.Context) error {
			return s.events.PublishAccountLocked(ctx, domain.AccountLockedEvent{
				EventID:     uuid.NewString(),
				Email:       email,
				LockedAt:    now,
				UnlocksAt:   now.Add(s.throttle.LockoutDuration()),
				Consecutive: count,
			})
		})
		s.log.Warn("account locked",
			zap.String("email", logger.MaskEmail(email)),
			zap.Int("consecutive_failures", count),
		)
		return &AccountLockedError{Duration: s.throttle.LockoutMessage()}
	}

	s.publishEvent(ctx, func(ctx context.Context) error {
		return s.events.PublishLoginFailed(ctx, domain.LoginFailedEvent{
			EventID:           uuid.NewString(),
			Email:             email,
			RemainingAttempts: remaining,
			OccurredAt:        now,
		})
	})
	s.log.Info("login failed",
		zap.String("email", logger.MaskEmail(email)),
		zap.Int("remaining_attempts", remaining),
	)

	return &AuthenticationError{Remaining: remaining}
}

// Logout invalidates the presented token: cached entries are evicted and
// every active session of the identity is revoked.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	email := s.tokens.Validate(token)
	if email == "" {
		return ErrInvalidToken
	}

	if err := s.cache.Evict(ctx, email); err != nil {
		s.log.Warn("evict cache entries failed", zap.Error(err))
	}

	identity, err := s.resolver.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.sessions.RevokeByIdentity(ctx, identity.Base().ID, s.now().UTC()); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.log.Info("logout completed", zap.String("email", logger.MaskEmail(email)))
	return nil
}

// Deactivate disables the account and drops its cached entries, so the
// next login is answered from the durable store.
func (s *AuthService) Deactivate(ctx context.Context, email string) error {
	return s.setActive(ctx, email, false)
}

// Reactivate re-enables a previously deactivated account.
func (s *AuthService) Reactivate(ctx context.Context, email string) error {
	return s.setActive(ctx, email, true)
}

func (s *AuthService) setActive(ctx context.Context, email string, active bool) error {
	email = normalizeEmail(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}

	identity, err := s.resolver.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return err
	}

	if err := s.resolver.SetActive(ctx, identity, active); err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	if err := s.cache.Evict(ctx, email); err != nil {
		s.log.Warn("evict cache entries failed", zap.Error(err))
	}

	if !active {
		if err := s.sessions.RevokeByIdentity(ctx, identity.Base().ID, s.now().UTC()); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
	}

	return nil
}

func (s *AuthService) publishLoginSucceeded(ctx context.Context, identity domain.Identity, fromCache bool) {
	s.publishEvent(ctx, func(ctx context.Context) error {
		return s.events.PublishLoginSucceeded(ctx, domain.LoginSucceededEvent{
			EventID:    uuid.NewString(),
			IdentityID: identity.Base().ID,
			Email:      identity.Base().Email,
			FromCache:  fromCache,
			OccurredAt: s.now().UTC(),
		})
	})
}

// publishEvent fires an event without letting broker trouble fail the
// request. Events are observability, not state.
func (s *AuthService) publishEvent(ctx context.Context, publish func(context.Context) error) {
	if s.events == nil {
		return
	}
	if err := publish(ctx); err != nil {
		s.log.Warn("publish event failed", zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
