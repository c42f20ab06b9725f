package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CronSecretMiddleware محافظت مسیر cron با secret اشتراکی.
// فراخوانی بدون secret درست هیچ side effect ندارد.
func CronSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		expected := "Bearer " + secret
		if secret == "" || subtle.ConstantTimeCompare([]byte(authHeader), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
