package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
)

type authFixture struct {
	service     *AuthService
	individuals *stubIndividualRepo
	attempts    *stubAttemptStore
	cache       *stubAuthCache
	sessions    *stubSessionRepo
	publisher   *stubPublisher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	individuals := newStubIndividualRepo()
	organizations := newStubOrganizationRepo()
	protectors := newStubProtectorRepo()
	attempts := newStubAttemptStore()
	cache := newStubAuthCache()
	sessions := &stubSessionRepo{}
	publisher := &stubPublisher{}

	resolver := NewIdentityResolver(individuals, organizations, protectors)
	throttle := NewLoginThrottle(attempts, 5, 30*time.Minute)
	service := NewAuthService(resolver, throttle, cache, sessions, newTestTokenService(), publisher, zaptest.NewLogger(t))

	return &authFixture{
		service:     service,
		individuals: individuals,
		attempts:    attempts,
		cache:       cache,
		sessions:    sessions,
		publisher:   publisher,
	}
}

func (f *authFixture) seedIndividual(t *testing.T, email, password string, active bool) *domain.Individual {
	t.Helper()

	individual := &domain.Individual{
		IdentityBase: domain.IdentityBase{
			ID:           "ind-" + email,
			Email:        email,
			PasswordHash: mustHash(password),
			Role:         domain.RoleIndividual,
			Active:       active,
		},
		Name: "Ana",
	}
	f.individuals.byEmail[email] = individual
	return individual
}

func TestAuthService_LoginSuccess(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedIndividual(t, "ana@example.com", "Correct1!", true)

	result, err := fixture.service.Login(context.Background(), "Ana@Example.com ", "Correct1!")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if result.DisplayName != "Ana" {
		t.Fatalf("expected display name Ana, got %s", result.DisplayName)
	}
	if result.TokenType != TokenTypeBearer {
		t.Fatalf("expected token type Bearer, got %s", result.TokenType)
	}
	if result.FromCache {
		t.Fatalf("expected durable-store login, got cache hit")
	}
	if subject := newTestTokenService().Validate(result.Token); subject != "ana@example.com" {
		t.Fatalf("expected token subject ana@example.com, got %q", subject)
	}

	if len(fixture.sessions.sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(fixture.sessions.sessions))
	}
	if len(fixture.publisher.succeeded) != 1 {
		t.Fatalf("expected one login succeeded event, got %d", len(fixture.publisher.succeeded))
	}
}

func TestAuthService_LoginInvalidPassword(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedIndividual(t, "ana@example.com", "Correct1!", true)

	_, err := fixture.service.Login(context.Background(), "ana@example.com", "Wrong1!!")

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if authErr.Remaining != 4 {
		t.Fatalf("expected 4 remaining attempts, got %d", authErr.Remaining)
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected error to match ErrInvalidCredentials")
	}
	if len(fixture.publisher.failed) != 1 {
		t.Fatalf("expected one login failed event, got %d", len(fixture.publisher.failed))
	}
}

func TestAuthService_LockoutAfterFiveFailures(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedIndividual(t, "ana@example.com", "Correct1!", true)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if _, err := fixture.service.Login(ctx, "ana@example.com", "Wrong1!!"); err == nil {
			t.Fatalf("expected failure on attempt %d", i+1)
		}
	}

	_, err := fixture.service.Login(ctx, "ana@example.com", "Wrong1!!")
	var lockedErr *AccountLockedError
	if !errors.As(err, &lockedErr) {
		t.Fatalf("expected AccountLockedError on fifth failure, got %v", err)
	}
	if lockedErr.Duration != "30 minutos" {
		t.Fatalf("expected lockout duration 30 minutos, got %s", lockedErr.Duration)
	}
	if len(fixture.publisher.locked) != 1 {
		t.Fatalf("expected one account locked event, got %d", len(fixture.publisher.locked))
	}

	// correct password does not bypass the lockout
	_, err = fixture.service.Login(ctx, "ana@example.com", "Correct1!")
	if !errors.As(err, &lockedErr) {
		t.Fatalf("expected locked error with correct password, got %v", err)
	}
}

func TestAuthService_SuccessResetsCounter(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedIndividual(t, "ana@example.com", "Correct1!", true)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = fixture.service.Login(ctx, "ana@example.com", "Wrong1!!")
	}

	if _, err := fixture.service.Login(ctx, "ana@example.com", "Correct1!"); err != nil {
		t.Fatalf("expected login to succeed below threshold, got %v", err)
	}

	count, err := fixture.attempts.Count(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected counter reset after success, got %d", count)
	}
}

func TestAuthService_InactiveAccount(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedIndividual(t, "ana@example.com", "Correct1!", false)

	_, err := fixture.service.Login(context.Background(), "ana@example.com", "Correct1!")
	if !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestAuthService_InactiveNotRevealedOnWrongPassword(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedIndividual(t, "ana@example.com", "Correct1!", false)

	_, err := fixture.service.Login(context.Background(), "ana@example.com", "Wrong1!!")

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("wrong password must not reveal the account is deactivated")
	}

	count, _ := fixture.attempts.Count(context.Background(), "ana@example.com")
	if count != 1 {
		t.Fatalf("expected one recorded failure, got %d", count)
	}
}

func TestAuthService_UnknownEmailCountsFailure(t *testing.T) {
	fixture := newAuthFixture(t)

	_, err := fixture.service.Login(context.Background(), "ghost@example.com", "Whatever1!")
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError for unknown email, got %v", err)
	}

	count, _ := fixture.attempts.Count(context.Background(), "ghost@example.com")
	if count != 1 {
		t.Fatalf("expected one recorded failure, got %d", count)
	}
}

func TestAuthService_LoginFromCache(t *testing.T) {
	fixture := newAuthFixture(t)
	individual := fixture.seedIndividual(t, "ana@example.com", "Correct1!", true)

	ctx := context.Background()
	token, err := newTestTokenService().Generate("ana@example.com")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if err := fixture.cache.CacheIdentity(ctx, individual); err != nil {
		t.Fatalf("CacheIdentity returned error: %v", err)
	}
	if err := fixture.cache.CacheToken(ctx, "ana@example.com", token); err != nil {
		t.Fatalf("CacheToken returned error: %v", err)
	}

	result, err := fixture.service.Login(ctx, "ana@example.com", "Correct1!")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if !result.FromCache {
		t.Fatalf("expected cache-served login")
	}
	if result.Token != token {
		t.Fatalf("expected cached token to be reused")
	}
	if len(fixture.sessions.sessions) != 0 {
		t.Fatalf("cache-served login must not create new sessions, got %d", len(fixture.sessions.sessions))
	}
	if len(fixture.publisher.succeeded) != 1 || !fixture.publisher.succeeded[0].FromCache {
		t.Fatalf("expected a cache-flagged login succeeded event")
	}
}

func TestAuthService_CachedWrongPasswordFallsThrough(t *testing.T) {
	fixture := newAuthFixture(t)
	individual := fixture.seedIndividual(t, "ana@example.com", "Correct1!", true)

	ctx := context.Background()
	if err := fixture.cache.CacheIdentity(ctx, individual); err != nil {
		t.Fatalf("CacheIdentity returned error: %v", err)
	}

	_, err := fixture.service.Login(ctx, "ana@example.com", "Wrong1!!")
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedIndividual(t, "ana@example.com", "Correct1!", true)

	ctx := context.Background()
	result, err := fixture.service.Login(ctx, "ana@example.com", "Correct1!")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := fixture.service.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	if len(fixture.cache.evicted) == 0 || fixture.cache.evicted[0] != "ana@example.com" {
		t.Fatalf("expected cache eviction for ana@example.com, got %v", fixture.cache.evicted)
	}
	active, _ := fixture.sessions.ListActiveByIdentity(ctx, result.IdentityID)
	if len(active) != 0 {
		t.Fatalf("expected all sessions revoked, got %d active", len(active))
	}
}

func TestAuthService_LogoutInvalidToken(t *testing.T) {
	fixture := newAuthFixture(t)

	if err := fixture.service.Logout(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_DeactivateEvictsAndRevokes(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedIndividual(t, "ana@example.com", "Correct1!", true)

	ctx := context.Background()
	result, err := fixture.service.Login(ctx, "ana@example.com", "Correct1!")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := fixture.service.Deactivate(ctx, "ana@example.com"); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	if _, err := fixture.service.Login(ctx, "ana@example.com", "Correct1!"); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount after deactivation, got %v", err)
	}
	active, _ := fixture.sessions.ListActiveByIdentity(ctx, result.IdentityID)
	if len(active) != 0 {
		t.Fatalf("expected sessions revoked on deactivation")
	}

	if err := fixture.service.Reactivate(ctx, "ana@example.com"); err != nil {
		t.Fatalf("Reactivate returned error: %v", err)
	}
	if _, err := fixture.service.Login(ctx, "ana@example.com", "Correct1!"); err != nil {
		t.Fatalf("expected login after reactivation, got %v", err)
	}
}
