package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/fleetcore/fleetcore/internal/config"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/gin-gonic/gin"
)

// CronAuthMiddleware guards the reconciler's HTTP trigger with the shared
// cron secret. Constant-time comparison; the endpoint is internet-reachable.
func CronAuthMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || cfg.Cron.Secret == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Cron.Secret)) != 1 {
			c.Error(ierr.NewError("invalid cron credentials").
				WithHint("A valid bearer token is required").
				Mark(ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		c.Next()
	}
}
