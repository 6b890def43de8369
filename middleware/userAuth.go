package middleware

import (
	"net/http"
	"strings"

	"staybook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

// JWTAuthUserMiddleware requires a valid bearer token and stores its subject
// under UserIDKey. An empty secret disables authentication.
func JWTAuthUserMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if !strings.HasPrefix(authHeader, "Bearer ") || tokenString == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Insufficient authorization")
			return
		}

		userID, err := utils.ExtractIDFromToken(key, tokenString)
		if err != nil {
			zap.L().Debug("rejected bearer token", zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Insufficient authorization")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// AuthorizeUser reports whether the caller may act for userID. When
// authentication is disabled every caller may. On refusal the request is
// aborted with 403.
func AuthorizeUser(c *gin.Context, userID string) bool {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return true
	}
	if subject, _ := v.(string); subject == userID {
		return true
	}
	utils.JSONError(c, http.StatusForbidden, "Forbidden", "token does not belong to this user")
	return false
}
