package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/transport/http/middleware"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/usecase"
)

// PasswordHandler exposes the password change endpoint.
type PasswordHandler struct {
	passwords *usecase.PasswordService
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(passwords *usecase.PasswordService) *PasswordHandler {
	return &PasswordHandler{passwords: passwords}
}

// RegisterRoutes binds the password routes behind the identity gate.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/password/change", middleware.RequireIdentity(), h.changePassword)
}

func (h *PasswordHandler) changePassword(c *gin.Context) {
	email, ok := middleware.AuthenticatedEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password change payload"))
		return
	}

	if err := h.passwords.ChangePassword(c.Request.Context(), email, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}
