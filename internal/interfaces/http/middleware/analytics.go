// internal/interfaces/http/middleware/analytics.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/analytics"
)

// Paths that never count as storefront traffic
var untrackedPrefixes = []string{
	"/api/v1/admin",
	"/admin",
	"/static",
	"/media",
	"/health",
	"/ready",
}

// VisitTracker records successful GET page views after the response is
// written. Recording happens in a goroutine so tracking latency and
// failures never touch the request path.
func VisitTracker(service *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet || c.Writer.Status() != http.StatusOK {
			return
		}
		path := c.Request.URL.Path
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(path, prefix) {
				return
			}
		}

		ip := c.ClientIP()
		userAgent := c.Request.UserAgent()
		referer := c.Request.Referer()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			service.Record(ctx, path, ip, userAgent, referer)
		}()
	}
}
