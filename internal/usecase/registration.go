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

// RegisterIndividualInput carries the fields for an individual signup.
type RegisterIndividualInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// RegisterOrganizationInput carries the fields for an organization signup.
type RegisterOrganizationInput struct {
	OrgName  string
	CNPJ     string
	Email    string
	Password string
	Phone    string
}

// RegisterProtectorInput carries the fields for a protector signup.
type RegisterProtectorInput struct {
	FullName string
	CPF      string
	Email    string
	Password string
	Phone    string
}

// RegistrationResult is returned after a successful signup. The account is
// logged in immediately: the token is ready to use.
type RegistrationResult struct {
	IdentityID    string
	DisplayName   string
	Email         string
	Role          domain.Role
	Token         string
	TokenType     string
	StrengthScore int
}

// RegistrationService handles signup for the three identity variants.
type RegistrationService struct {
	resolver      *IdentityResolver
	individuals   port.IndividualRepository
	organizations port.OrganizationRepository
	protectors    port.ProtectorRepository
	history       port.PasswordHistoryRepository
	emails        *security.EmailValidator
	passwords     *security.PasswordValidator
	tokens        *security.TokenService
	cache         port.AuthCache
	events        port.EventPublisher
	log           *zap.Logger
	now           func() time.Time
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(
	resolver *IdentityResolver,
	individuals port.IndividualRepository,
	organizations port.OrganizationRepository,
	protectors port.ProtectorRepository,
	history port.PasswordHistoryRepository,
	emails *security.EmailValidator,
	passwords *security.PasswordValidator,
	tokens *security.TokenService,
	cache port.AuthCache,
	events port.EventPublisher,
	log *zap.Logger,
) *RegistrationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		resolver:      resolver,
		individuals:   individuals,
		organizations: organizations,
		protectors:    protectors,
		history:       history,
		emails:        emails,
		passwords:     passwords,
		tokens:        tokens,
		cache:         cache,
		events:        events,
		log:           log,
		now:           time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *RegistrationService) WithClock(clock func() time.Time) *RegistrationService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// RegisterIndividual creates an individual account.
func (s *RegistrationService) RegisterIndividual(ctx context.Context, input RegisterIndividualInput) (*RegistrationResult, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	email, err := s.validateCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	individual := domain.Individual{
		IdentityBase: domain.IdentityBase{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			Phone:        strings.TrimSpace(input.Phone),
			Role:         domain.RoleIndividual,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		Name: strings.TrimSpace(input.Name),
	}

	if err := s.individuals.Create(ctx, individual); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &BusinessError{Code: CodeEmailExists, Message: "email is already registered"}
		}
		return nil, fmt.Errorf("create individual: %w", err)
	}

	return s.finishRegistration(ctx, &individual, input.Password)
}

// RegisterOrganization creates an organization account.
func (s *RegistrationService) RegisterOrganization(ctx context.Context, input RegisterOrganizationInput) (*RegistrationResult, error) {
	if strings.TrimSpace(input.OrgName) == "" {
		return nil, &ValidationError{Field: "orgName", Message: "organization name is required"}
	}

	cnpj := digitsOnly(input.CNPJ)
	if len(cnpj) != 14 {
		return nil, &ValidationError{Field: "cnpj", Message: "cnpj must have 14 digits"}
	}

	email, err := s.validateCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	taken, err := s.organizations.ExistsByCNPJ(ctx, cnpj)
	if err != nil {
		return nil, fmt.Errorf("check cnpj: %w", err)
	}
	if taken {
		return nil, &BusinessError{Code: CodeCNPJExists, Message: "cnpj is already registered"}
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	org := domain.Organization{
		IdentityBase: domain.IdentityBase{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			Phone:        strings.TrimSpace(input.Phone),
			Role:         domain.RoleOrganization,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		OrgName: strings.TrimSpace(input.OrgName),
		CNPJ:    cnpj,
	}

	if err := s.organizations.Create(ctx, org); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &BusinessError{Code: CodeEmailExists, Message: "email is already registered"}
		}
		return nil, fmt.Errorf("create organization: %w", err)
	}

	return s.finishRegistration(ctx, &org, input.Password)
}

// RegisterProtector creates a protector account.
func (s *RegistrationService) RegisterProtector(ctx context.Context, input RegisterProtectorInput) (*RegistrationResult, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, &ValidationError{Field: "fullName", Message: "full name is required"}
	}

	cpf := digitsOnly(input.CPF)
	if len(cpf) != 11 {
		return nil, &ValidationError{Field: "cpf", Message: "cpf must have 11 digits"}
	}

	email, err := s.validateCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	taken, err := s.protectors.ExistsByCPF(ctx, cpf)
	if err != nil {
		return nil, fmt.Errorf("check cpf: %w", err)
	}
	if taken {
		return nil, &BusinessError{Code: CodeCPFExists, Message: "cpf is already registered"}
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	protector := domain.Protector{
		IdentityBase: domain.IdentityBase{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			Phone:        strings.TrimSpace(input.Phone),
			Role:         domain.RoleProtector,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		FullName: strings.TrimSpace(input.FullName),
		CPF:      cpf,
	}

	if err := s.protectors.Create(ctx, protector); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &BusinessError{Code: CodeEmailExists, Message: "email is already registered"}
		}
		return nil, fmt.Errorf("create protector: %w", err)
	}

	return s.finishRegistration(ctx, &protector, input.Password)
}

// validateCredentials runs the shared email and password checks and the
// cross-variant uniqueness probe, returning the normalized email.
func (s *RegistrationService) validateCredentials(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", &ValidationError{Field: "email", Message: "email is required"}
	}
	if !s.emails.IsValid(ctx, email) {
		return "", &ValidationError{Field: "email", Message: "email is not valid"}
	}

	if password == "" {
		return "", &ValidationError{Field: "password", Message: "password is required"}
	}
	if err := s.passwords.Validate(password); err != nil {
		return "", &ValidationError{Field: "password", Message: err.Error()}
	}

	taken, err := s.resolver.ExistsByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", &BusinessError{Code: CodeEmailExists, Message: "email is already registered"}
	}

	return email, nil
}

// finishRegistration records the initial password in the history, issues
// the first token, warms the cache, and publishes the registered event.
func (s *RegistrationService) finishRegistration(ctx context.Context, identity domain.Identity, password string) (*RegistrationResult, error) {
	base := identity.Base()

	entry := domain.PasswordHistoryEntry{
		ID:           uuid.NewString(),
		IdentityID:   base.ID,
		PasswordHash: base.PasswordHash,
		SetAt:        base.CreatedAt,
	}
	if err := s.history.Add(ctx, entry); err != nil {
		s.log.Warn("record initial password failed", zap.Error(err))
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

	if s.events != nil {
		event := domain.IdentityRegisteredEvent{
			EventID:      uuid.NewString(),
			IdentityID:   base.ID,
			Email:        base.Email,
			Role:         base.Role,
			RegisteredAt: base.CreatedAt,
		}
		if err := s.events.PublishIdentityRegistered(ctx, event); err != nil {
			s.log.Warn("publish registered event failed", zap.Error(err))
		}
	}

	s.log.Info("identity registered",
		zap.String("email", logger.MaskEmail(base.Email)),
		zap.String("role", string(base.Role)),
	)

	return &RegistrationResult{
		IdentityID:    base.ID,
		DisplayName:   identity.DisplayName(),
		Email:         base.Email,
		Role:          base.Role,
		Token:         token,
		TokenType:     TokenTypeBearer,
		StrengthScore: security.StrengthScore(password, base.Email),
	}, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
