package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "unit-test-signing-secret-0123456789-0123456789-0123456789-0123456789"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	svc, err := NewTokenService(TokenServiceConfig{
		Secret: testSecret,
		Issuer: "web-pet-test",
		TTL:    2 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Generate("ana@petmail.com.br")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	if subject := svc.Validate(token); subject != "ana@petmail.com.br" {
		t.Fatalf("Validate subject = %q, want ana@petmail.com.br", subject)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Generate("ana@petmail.com.br")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Flip one character of the signature segment.
	last := token[len(token)-1]
	replacement := byte('a')
	if last == replacement {
		replacement = 'b'
	}
	tampered := token[:len(token)-1] + string(replacement)

	if subject := svc.Validate(tampered); subject != "" {
		t.Fatalf("Validate(tampered) = %q, want empty", subject)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := newTestTokenService(t)

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return issued })

	token, err := svc.Generate("ana@petmail.com.br")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	svc.WithClock(func() time.Time { return issued.Add(time.Hour) })
	if subject := svc.Validate(token); subject != "ana@petmail.com.br" {
		t.Fatalf("token should still be valid after 1h, got subject %q", subject)
	}

	svc.WithClock(func() time.Time { return issued.Add(2*time.Hour + time.Minute) })
	if subject := svc.Validate(token); subject != "" {
		t.Fatalf("Validate(expired) = %q, want empty", subject)
	}
}

func TestValidateRejectsForeignIssuer(t *testing.T) {
	other, err := NewTokenService(TokenServiceConfig{
		Secret: testSecret,
		Issuer: "some-other-service",
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := other.Generate("ana@petmail.com.br")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	svc := newTestTokenService(t)
	if subject := svc.Validate(token); subject != "" {
		t.Fatalf("Validate(foreign issuer) = %q, want empty", subject)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	for _, token := range []string{"", "   ", "not.a.token", "a.b"} {
		if subject := svc.Validate(token); subject != "" {
			t.Errorf("Validate(%q) = %q, want empty", token, subject)
		}
	}
}

func TestGenerateRequiresSubject(t *testing.T) {
	svc := newTestTokenService(t)

	if _, err := svc.Generate("  "); err == nil {
		t.Fatal("expected error for blank subject")
	}
}

func TestValidateSigningSecret(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		want   error
	}{
		{name: "missing", secret: "", want: ErrSecretMissing},
		{name: "whitespace only", secret: "   ", want: ErrSecretMissing},
		{name: "too short", secret: strings.Repeat("x", 63), want: ErrSecretTooShort},
		{name: "insecure default", secret: insecureDefaultSecret, want: ErrSecretInsecureDefault},
		{name: "acceptable", secret: strings.Repeat("x", 64), want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSigningSecret(tc.secret)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ValidateSigningSecret = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNewTokenServiceDefaults(t *testing.T) {
	svc, err := NewTokenService(TokenServiceConfig{
		Secret: testSecret,
		Issuer: "web-pet-test",
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	if svc.TTL() != 2*time.Hour {
		t.Fatalf("default TTL = %v, want 2h", svc.TTL())
	}
}
