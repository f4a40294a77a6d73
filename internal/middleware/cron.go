package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CronSecretHeader carries the shared secret of the external scheduler.
const CronSecretHeader = "X-Cron-Secret"

// CronSecret guards scheduler endpoints. An empty secret disables them.
func CronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			abort(c, http.StatusServiceUnavailable, "CRON_DISABLED", "cron trigger is not configured")
			return
		}
		got := c.GetHeader(CronSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid cron secret")
			return
		}
		c.Next()
	}
}
