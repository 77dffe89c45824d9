package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/security"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/repository"
)

const testSecret = "test-secret-test-secret-test-secret-test-secret-test-secret-1234"

func newTestTokenService() *security.TokenService {
	svc, err := security.NewTokenService(security.TokenServiceConfig{
		Secret: testSecret,
		Issuer: "web-pet-test",
		TTL:    2 * time.Hour,
	})
	if err != nil {
		panic(err)
	}
	return svc
}

func mustHash(password string) string {
	hash, err := security.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}

type stubIndividualRepo struct {
	byEmail map[string]*domain.Individual
	created []domain.Individual
}

func newStubIndividualRepo() *stubIndividualRepo {
	return &stubIndividualRepo{byEmail: make(map[string]*domain.Individual)}
}

func (r *stubIndividualRepo) Create(_ context.Context, individual domain.Individual) error {
	if _, exists := r.byEmail[individual.Email]; exists {
		return repository.ErrDuplicate
	}
	r.created = append(r.created, individual)
	copied := individual
	r.byEmail[individual.Email] = &copied
	return nil
}

func (r *stubIndividualRepo) GetByEmail(_ context.Context, email string) (*domain.Individual, error) {
	individual, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return individual, nil
}

func (r *stubIndividualRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (r *stubIndividualRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, individual := range r.byEmail {
		if individual.ID == id {
			individual.Active = active
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *stubIndividualRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	for _, individual := range r.byEmail {
		if individual.ID == id {
			individual.PasswordHash = passwordHash
			individual.UpdatedAt = changedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

type stubOrganizationRepo struct {
	byEmail map[string]*domain.Organization
	byCNPJ  map[string]struct{}
}

func newStubOrganizationRepo() *stubOrganizationRepo {
	return &stubOrganizationRepo{
		byEmail: make(map[string]*domain.Organization),
		byCNPJ:  make(map[string]struct{}),
	}
}

func (r *stubOrganizationRepo) Create(_ context.Context, org domain.Organization) error {
	if _, exists := r.byEmail[org.Email]; exists {
		return repository.ErrDuplicate
	}
	copied := org
	r.byEmail[org.Email] = &copied
	r.byCNPJ[org.CNPJ] = struct{}{}
	return nil
}

func (r *stubOrganizationRepo) GetByEmail(_ context.Context, email string) (*domain.Organization, error) {
	org, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return org, nil
}

func (r *stubOrganizationRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (r *stubOrganizationRepo) ExistsByCNPJ(_ context.Context, cnpj string) (bool, error) {
	_, ok := r.byCNPJ[cnpj]
	return ok, nil
}

func (r *stubOrganizationRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, org := range r.byEmail {
		if org.ID == id {
			org.Active = active
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *stubOrganizationRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	for _, org := range r.byEmail {
		if org.ID == id {
			org.PasswordHash = passwordHash
			org.UpdatedAt = changedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

type stubProtectorRepo struct {
	byEmail map[string]*domain.Protector
	byCPF   map[string]struct{}
}

func newStubProtectorRepo() *stubProtectorRepo {
	return &stubProtectorRepo{
		byEmail: make(map[string]*domain.Protector),
		byCPF:   make(map[string]struct{}),
	}
}

func (r *stubProtectorRepo) Create(_ context.Context, protector domain.Protector) error {
	if _, exists := r.byEmail[protector.Email]; exists {
		return repository.ErrDuplicate
	}
	copied := protector
	r.byEmail[protector.Email] = &copied
	r.byCPF[protector.CPF] = struct{}{}
	return nil
}

func (r *stubProtectorRepo) GetByEmail(_ context.Context, email string) (*domain.Protector, error) {
	protector, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return protector, nil
}

func (r *stubProtectorRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (r *stubProtectorRepo) ExistsByCPF(_ context.Context, cpf string) (bool, error) {
	_, ok := r.byCPF[cpf]
	return ok, nil
}

func (r *stubProtectorRepo) SetActive(_ context.Context, id string, active bool) error {
	for _, protector := range r.byEmail {
		if protector.ID == id {
			protector.Active = active
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *stubProtectorRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	for _, protector := range r.byEmail {
		if protector.ID == id {
			protector.PasswordHash = passwordHash
			protector.UpdatedAt = changedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

type stubAttemptStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func newStubAttemptStore() *stubAttemptStore {
	return &stubAttemptStore{counts: make(map[string]int)}
}

func (s *stubAttemptStore) Increment(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[email]++
	return s.counts[email], nil
}

func (s *stubAttemptStore) Reset(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, email)
	return nil
}

func (s *stubAttemptStore) Count(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[email], nil
}

type stubAuthCache struct {
	mu         sync.Mutex
	identities map[string]domain.Identity
	tokens     map[string]string
	sessions   map[string]string
	evicted    []string
}

func newStubAuthCache() *stubAuthCache {
	return &stubAuthCache{
		identities: make(map[string]domain.Identity),
		tokens:     make(map[string]string),
		sessions:   make(map[string]string),
	}
}

func (c *stubAuthCache) GetIdentity(_ context.Context, email string) (domain.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	identity, ok := c.identities[email]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return identity, nil
}

func (c *stubAuthCache) CacheIdentity(_ context.Context, identity domain.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identities[identity.Base().Email] = identity
	return nil
}

func (c *stubAuthCache) GetToken(_ context.Context, email string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token, ok := c.tokens[email]
	if !ok {
		return "", repository.ErrCacheMiss
	}
	return token, nil
}

func (c *stubAuthCache) CacheToken(_ context.Context, email, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[email] = token
	return nil
}

func (c *stubAuthCache) CacheSession(_ context.Context, sessionID, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[sessionID] = email
	return nil
}

func (c *stubAuthCache) Extend(_ context.Context, _ string) error { return nil }

func (c *stubAuthCache) Evict(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.identities, email)
	delete(c.tokens, email)
	c.evicted = append(c.evicted, email)
	return nil
}

func (c *stubAuthCache) EvictAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identities = make(map[string]domain.Identity)
	c.tokens = make(map[string]string)
	c.sessions = make(map[string]string)
	return nil
}

type stubSessionRepo struct {
	mu       sync.Mutex
	sessions []domain.Session
	revoked  []string
}

func (r *stubSessionRepo) Create(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, session)
	return nil
}

func (r *stubSessionRepo) ListActiveByIdentity(_ context.Context, identityID string) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	active := make([]domain.Session, 0)
	for _, session := range r.sessions {
		if session.IdentityID == identityID && session.RevokedAt == nil {
			active = append(active, session)
		}
	}
	return active, nil
}

func (r *stubSessionRepo) RevokeByIdentity(_ context.Context, identityID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked = append(r.revoked, identityID)
	for i := range r.sessions {
		if r.sessions[i].IdentityID == identityID && r.sessions[i].RevokedAt == nil {
			revokedAt := at
			r.sessions[i].RevokedAt = &revokedAt
		}
	}
	return nil
}

type stubHistoryRepo struct {
	mu      sync.Mutex
	entries map[string][]domain.PasswordHistoryEntry
}

func newStubHistoryRepo() *stubHistoryRepo {
	return &stubHistoryRepo{entries: make(map[string][]domain.PasswordHistoryEntry)}
}

func (r *stubHistoryRepo) ListRecent(_ context.Context, identityID string, limit int) ([]domain.PasswordHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[identityID]
	// entries are appended oldest first; recent means the tail
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]domain.PasswordHistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (r *stubHistoryRepo) Add(_ context.Context, entry domain.PasswordHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.IdentityID] = append(r.entries[entry.IdentityID], entry)
	return nil
}

func (r *stubHistoryRepo) TrimOldest(_ context.Context, identityID string, keep int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[identityID]
	if keep > 0 && len(entries) > keep {
		r.entries[identityID] = entries[len(entries)-keep:]
	}
	return nil
}

type stubPublisher struct {
	mu         sync.Mutex
	registered []domain.IdentityRegisteredEvent
	succeeded  []domain.LoginSucceededEvent
	failed     []domain.LoginFailedEvent
	locked     []domain.AccountLockedEvent
	changed    []domain.PasswordChangedEvent
}

func (p *stubPublisher) PublishIdentityRegistered(_ context.Context, event domain.IdentityRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *stubPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.succeeded = append(p.succeeded, event)
	return nil
}

func (p *stubPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, event)
	return nil
}

func (p *stubPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locked = append(p.locked, event)
	return nil
}

func (p *stubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, event)
	return nil
}
