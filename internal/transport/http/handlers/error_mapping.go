package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/repository"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/transport/http/middleware"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/usecase"
)

// respondError translates usecase errors into the HTTP error taxonomy:
// validation 400, authentication 401, inactive 403, business conflicts 409,
// locked accounts 429, anything unexpected 500.
func respondError(c *gin.Context, err error) {
	traceID := middleware.GetTraceID(c)

	var valErr *usecase.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: valErr.Message,
			Field:   valErr.Field,
			TraceID: traceID,
		})
		return
	}

	var lockedErr *usecase.AccountLockedError
	if errors.As(err, &lockedErr) {
		c.JSON(http.StatusTooManyRequests, LockedResponse{
			Message:         fmt.Sprintf("account temporarily locked; try again in %s", lockedErr.Duration),
			Locked:          true,
			LockoutDuration: lockedErr.Duration,
			TraceID:         traceID,
		})
		return
	}

	var authErr *usecase.AuthenticationError
	if errors.As(err, &authErr) {
		remaining := authErr.Remaining
		c.JSON(http.StatusUnauthorized, UnauthorizedResponse{
			Message:           fmt.Sprintf("invalid email or password; %d attempts remaining", remaining),
			RemainingAttempts: &remaining,
			TraceID:           traceID,
		})
		return
	}

	var bizErr *usecase.BusinessError
	if errors.As(err, &bizErr) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: bizErr.Message,
			Code:    bizErr.Code,
			TraceID: traceID,
		})
		return
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials), errors.Is(err, usecase.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "invalid credentials", TraceID: traceID})
	case errors.Is(err, usecase.ErrInactiveAccount):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "account is not active", TraceID: traceID})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "not found", TraceID: traceID})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error", TraceID: traceID})
	}
}
