// internal/interfaces/http/middleware/session.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookieName = "session_id"
	sessionCookieAge  = 60 * 60 * 24 * 30 // 30 days
	sessionContextKey = "session_id"
)

// Session assigns every visitor a session cookie. Carts and applied
// coupons are keyed by this ID, so it must exist before any handler runs.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
			c.SetCookie(sessionCookieName, sessionID, sessionCookieAge, "/", "", false, true)
		}
		c.Set(sessionContextKey, sessionID)
		c.Next()
	}
}

// GetSessionID extracts the visitor session ID from gin context
func GetSessionID(c *gin.Context) string {
	if sessionID, exists := c.Get(sessionContextKey); exists {
		return sessionID.(string)
	}
	return ""
}
