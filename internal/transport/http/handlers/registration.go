package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/usecase"
)

// RegistrationHandler exposes the signup endpoints for the three variants.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterRoutes binds the signup routes, applying optional middleware
// ahead of each handler.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup, registerMiddlewares ...gin.HandlerFunc) {
	group := r.Group("/register", registerMiddlewares...)
	group.POST("/individual", h.registerIndividual)
	group.POST("/organization", h.registerOrganization)
	group.POST("/protector", h.registerProtector)
}

func (h *RegistrationHandler) registerIndividual(c *gin.Context) {
	var req RegisterIndividualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.RegisterIndividual(c.Request.Context(), usecase.RegisterIndividualInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registrationResponse(result))
}

func (h *RegistrationHandler) registerOrganization(c *gin.Context) {
	var req RegisterOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.RegisterOrganization(c.Request.Context(), usecase.RegisterOrganizationInput{
		OrgName:  req.OrgName,
		CNPJ:     req.CNPJ,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registrationResponse(result))
}

func (h *RegistrationHandler) registerProtector(c *gin.Context) {
	var req RegisterProtectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.RegisterProtector(c.Request.Context(), usecase.RegisterProtectorInput{
		FullName: req.FullName,
		CPF:      req.CPF,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registrationResponse(result))
}

func registrationResponse(result *usecase.RegistrationResult) RegistrationResponse {
	return RegistrationResponse{
		ID:            result.IdentityID,
		DisplayName:   result.DisplayName,
		Email:         result.Email,
		Role:          string(result.Role),
		Token:         result.Token,
		TokenType:     result.TokenType,
		StrengthScore: result.StrengthScore,
	}
}
