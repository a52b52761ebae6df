// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"realm-gateway/internal/pkg/response"
	"realm-gateway/internal/pkg/token"
)

const (
	// SessionCookieName carries the signed session token.
	SessionCookieName = "session"

	ctxSessionID = "session_id"
	ctxUserID    = "user_id"
)

type AuthMiddleware struct {
	tokens *token.Service
}

func NewAuthMiddleware(tokens *token.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Auth validates the session token and attaches the session identity to
// the request context. The token itself is the source of truth within
// its expiry window; no store lookup happens here.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "unauthenticated")
			return
		}

		claims, err := m.tokens.Verify(tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid session: "+err.Error())
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid session: "+err.Error())
			return
		}

		c.Set(ctxSessionID, claims.SessionID)
		c.Set(ctxUserID, userID)

		c.Next()
	}
}

// extractToken pulls the session token from the "session" cookie, falling
// back to a bearer Authorization header. Cookie takes precedence.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Request.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	auth := c.GetHeader("Authorization")
	if auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}

// GetSessionID gets the verified session id from the request context.
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get(ctxSessionID)
	if !exists {
		return "", false
	}

	id, ok := sessionID.(string)
	return id, ok
}

// GetUserID gets the authenticated user id from the request context.
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(int64)
	return id, ok
}
