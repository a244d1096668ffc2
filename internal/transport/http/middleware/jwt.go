package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vortexkeep/internal/pkg/jwtutil"
	"vortexkeep/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextEmailKey    = "email"
)

// Identity is the token payload bound to the request after verification.
type Identity struct {
	UserID   uint
	Username string
	Email    string
}

// AuthJWT guards privileged routes. A missing or malformed Authorization
// header is 401; a token that is present but fails verification is 403.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "Authentication token required")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, "Authentication token required")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Authentication token required")
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusForbidden, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextEmailKey, claims.Email)
		c.Next()
	}
}

// IdentityFromContext returns the identity AuthJWT bound to the request.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	userIDAny, exists := c.Get(ContextUserIDKey)
	if !exists {
		return Identity{}, false
	}
	userID, ok := userIDAny.(uint)
	if !ok || userID == 0 {
		return Identity{}, false
	}

	identity := Identity{UserID: userID}
	if username, ok := c.Get(ContextUsernameKey); ok {
		identity.Username, _ = username.(string)
	}
	if email, ok := c.Get(ContextEmailKey); ok {
		identity.Email, _ = email.(string)
	}
	return identity, true
}
