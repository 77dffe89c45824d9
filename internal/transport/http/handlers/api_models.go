package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/transport/http/middleware"
)

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Token       string `json:"token"`
	TokenType   string `json:"tokenType"`
}

// RegisterIndividualRequest is the payload for POST /auth/register/individual.
type RegisterIndividualRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// RegisterOrganizationRequest is the payload for POST /auth/register/organization.
type RegisterOrganizationRequest struct {
	OrgName  string `json:"orgName"`
	CNPJ     string `json:"cnpj"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// RegisterProtectorRequest is the payload for POST /auth/register/protector.
type RegisterProtectorRequest struct {
	FullName string `json:"fullName"`
	CPF      string `json:"cpf"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// RegistrationResponse is returned on a successful signup.
type RegistrationResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Token         string `json:"token"`
	TokenType     string `json:"tokenType"`
	StrengthScore int    `json:"strengthScore"`
}

// ChangePasswordRequest is the payload for POST /auth/password/change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness status.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"startedAt"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ErrorResponse is the common error payload.
type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"traceId,omitempty"`
}

// LockedResponse is the payload returned while an account is locked out.
// The message embeds the human-readable lockout duration.
type LockedResponse struct {
	Message         string `json:"message"`
	Locked          bool   `json:"locked"`
	LockoutDuration string `json:"lockoutDuration"`
	TraceID         string `json:"traceId,omitempty"`
}

// UnauthorizedResponse carries the remaining attempts before lockout, both
// embedded in the message and as a structured field.
type UnauthorizedResponse struct {
	Message           string `json:"message"`
	RemainingAttempts *int   `json:"remainingAttempts,omitempty"`
	TraceID           string `json:"traceId,omitempty"`
}

// NewErrorResponse builds an ErrorResponse with the request's trace ID.
func NewErrorResponse(c *gin.Context, message string) ErrorResponse {
	return ErrorResponse{
		Message: message,
		TraceID: middleware.GetTraceID(c),
	}
}
