package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "auth.user_id"

// RevocationStore answers whether a token id has been logged out.
type RevocationStore interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Middleware resolves the caller from a bearer token in the Authorization
// header, falling back to the "token" cookie, and stores the user id in the
// gin context. A nil store skips the revocation check.
func Middleware(tokens *TokenManager, store RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		if store != nil {
			revoked, err := store.IsTokenRevoked(c.Request.Context(), claims.JTI)
			if err == nil && revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token revoked"})
				return
			}
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// UserID returns the authenticated user id placed by Middleware.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// SetUserID is a test helper for handlers that expect an authenticated caller.
func SetUserID(c *gin.Context, id int64) {
	c.Set(userIDKey, id)
}
