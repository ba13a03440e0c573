// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/voidreamer/simple-budget/internal/auth"
)

// Context keys set by the middleware chain.
const (
	KeyUserID = "user_id"
	KeyEmail  = "email"
)

type AuthMiddleware struct {
	tokenService *auth.TokenService
}

func NewAuthMiddleware(ts *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenService: ts}
}

// RequireAuth verifies the bearer token and stores the caller identity
// in the gin context. Missing or invalid credentials are a 401 with a
// WWW-Authenticate challenge.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		identity, err := m.tokenService.Verify(tokenStr)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(KeyUserID, identity.UserID)
		c.Set(KeyEmail, identity.Email)
		c.Next()
	}
}

// UserID returns the authenticated user id placed by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(KeyUserID)
}

// Email returns the verified email claim, possibly empty.
func Email(c *gin.Context) string {
	return c.GetString(KeyEmail)
}
