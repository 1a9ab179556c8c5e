package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reelgrid/reelgrid/pkg/logger"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// CronAuth guards the scheduler endpoint with a shared bearer secret,
// compared in constant time. An unset secret rejects all requests.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))

		if secret == "" || token == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			logger.Named("middleware").Warn("Unauthorized cron request",
				zap.String("path", c.Request.URL.Path),
				zap.String("remoteAddr", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Next()
	}
}

func extractBearer(header string) string {
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimPrefix(header, bearerPrefix)
	}
	return ""
}
