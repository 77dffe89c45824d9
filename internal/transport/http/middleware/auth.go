package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appLogger "github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/logger"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/security"
)

// Authenticate resolves the bearer token on the request, if any. A missing
// or malformed header leaves the request anonymous; a present but invalid
// token is logged for audit and also falls through as anonymous. Handlers
// that need an identity gate on RequireIdentity.
func Authenticate(tokens *security.TokenService, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		email := tokens.Validate(token)
		if email == "" {
			log.Warn("rejected bearer token",
				zap.String("trace_id", GetTraceID(c)),
				zap.String("client_ip", appLogger.MaskIP(c.ClientIP())),
			)
			c.Next()
			return
		}

		c.Set(EmailKey, email)
		c.Set(TokenKey, token)

		c.Next()
	}
}

// RequireIdentity aborts with 401 unless Authenticate resolved an email.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := AuthenticatedEmail(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "authentication required",
				"traceId": GetTraceID(c),
			})
			return
		}
		c.Next()
	}
}

// AuthenticatedEmail returns the email resolved from the bearer token.
func AuthenticatedEmail(c *gin.Context) (string, bool) {
	value, exists := c.Get(EmailKey)
	if !exists {
		return "", false
	}
	email, ok := value.(string)
	return email, ok && email != ""
}

// BearerToken returns the raw token resolved by Authenticate.
func BearerToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(TokenKey)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok && token != ""
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
