package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/transport/http/middleware"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/usecase"
)

// AuthHandler exposes login and logout endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds the authentication routes, applying optional
// middleware ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	chain = append(chain, h.login)
	r.POST("/login", chain...)

	r.POST("/logout", middleware.RequireIdentity(), h.logout)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		DisplayName: result.DisplayName,
		Email:       result.Email,
		Role:        string(result.Role),
		Token:       result.Token,
		TokenType:   result.TokenType,
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
