package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// minSecretLength is the minimum accepted signing secret size.
	minSecretLength = 64
	// insecureDefaultSecret is the placeholder secret shipped in example
	// configuration. Running with it is refused at startup.
	insecureDefaultSecret = "12345678901234567890123456789012345678901234567890123456789012345678900987654321"

	defaultTokenTTL = 2 * time.Hour
)

var (
	// ErrSecretMissing indicates no signing secret was supplied.
	ErrSecretMissing = errors.New("jwt: signing secret is required")
	// ErrSecretTooShort indicates the signing secret is below the minimum length.
	ErrSecretTooShort = errors.New("jwt: signing secret must be at least 64 characters")
	// ErrSecretInsecureDefault indicates the signing secret equals the known insecure default.
	ErrSecretInsecureDefault = errors.New("jwt: signing secret equals the insecure default")
)

// ValidateSigningSecret enforces the startup constraints on the signing secret.
func ValidateSigningSecret(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrSecretMissing
	}
	if secret == insecureDefaultSecret {
		return ErrSecretInsecureDefault
	}
	if len(secret) < minSecretLength {
		return ErrSecretTooShort
	}
	return nil
}

// TokenServiceConfig configures issuance parameters.
type TokenServiceConfig struct {
	Secret   string
	Issuer   string
	TTL      time.Duration
	Location *time.Location
}

// TokenService issues and verifies HMAC-SHA256 signed bearer tokens.
// Tokens are stateless; validation needs only the shared secret.
type TokenService struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	location *time.Location
	now      func() time.Time
}

// NewTokenService constructs a TokenService, failing fast on secret violations.
func NewTokenService(cfg TokenServiceConfig) (*TokenService, error) {
	if err := ValidateSigningSecret(cfg.Secret); err != nil {
		return nil, err
	}

	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		return nil, fmt.Errorf("jwt: issuer is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   issuer,
		ttl:      ttl,
		location: loc,
		now:      time.Now,
	}, nil
}

// WithClock overrides the internal clock, used in tests.
func (s *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// TTL reports the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate issues a signed token for the subject email.
func (s *TokenService) Generate(subjectEmail string) (string, error) {
	subjectEmail = strings.TrimSpace(subjectEmail)
	if subjectEmail == "" {
		return "", fmt.Errorf("jwt: subject email is required")
	}

	now := s.now().In(s.location)
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subjectEmail,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Validate verifies signature, issuer, and expiry, returning the subject
// email. Any failure, including malformed input, yields the empty string.
func (s *TokenService) Validate(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || parsed == nil || !parsed.Valid {
		return ""
	}

	return strings.TrimSpace(claims.Subject)
}
