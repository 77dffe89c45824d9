package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates the email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account exists but is deactivated.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrInvalidToken indicates the presented bearer token failed validation.
	ErrInvalidToken = errors.New("invalid token")
)

// Stable business error codes surfaced to clients.
const (
	CodeEmailExists    = "USER_EMAIL_EXISTS"
	CodeCNPJExists     = "ORGANIZATION_CNPJ_EXISTS"
	CodeCPFExists      = "PROTECTOR_CPF_EXISTS"
	CodePasswordReused = "PASSWORD_RECENTLY_USED"
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements error for ValidationError.
func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BusinessError reports a domain rule conflict with a stable code.
type BusinessError struct {
	Code    string
	Message string
}

// Error implements error for BusinessError.
func (e *BusinessError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// AuthenticationError wraps a failed credential check together with the
// number of attempts left before the account locks.
type AuthenticationError struct {
	Remaining int
}

// Error implements error for AuthenticationError.
func (e *AuthenticationError) Error() string {
	return ErrInvalidCredentials.Error()
}

// Unwrap lets errors.Is match ErrInvalidCredentials.
func (e *AuthenticationError) Unwrap() error {
	return ErrInvalidCredentials
}

// AccountLockedError indicates the email is under lockout. Duration is a
// human-readable window, e.g. "30 minutos".
type AccountLockedError struct {
	Duration string
}

// Error implements error for AccountLockedError.
func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account temporarily locked, try again in %s", e.Duration)
}
