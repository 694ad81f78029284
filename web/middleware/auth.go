package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sensorlab/doorwatch/web/service"
)

// Context keys populated by TokenAuth for downstream handlers.
const (
	CtxUserId   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// TokenAuth validates the bearer token and re-verifies the principal
// against the credential store. The role placed into the context comes
// from the store, not from the token payload: a stale token cannot keep
// privileges its account has lost, and tokens of deleted accounts stop
// working immediately even though the token itself is unrevocable.
func TokenAuth(authService *service.AuthService, userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authentication credentials"})
			return
		}
		// Refresh tokens only buy new access tokens, never API access.
		if claims.IsRefreshToken() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authentication credentials"})
			return
		}

		user, err := userService.GetUser(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authentication credentials"})
			return
		}

		c.Set(CtxUserId, user.Id)
		c.Set(CtxUsername, user.Username)
		c.Set(CtxRole, string(user.Role))
		c.Next()
	}
}

// extractBearer returns the token from an "Authorization: Bearer" header.
func extractBearer(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
