package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleetcore/fleetcore/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupCronRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.GetDefaultConfig()
	cfg.Cron.Secret = secret

	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/cron/reconcile", CronAuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestCronAuthAcceptsMatchingToken(t *testing.T) {
	r := setupCronRouter("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/cron/reconcile", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCronAuthRejectsWith401(t *testing.T) {
	r := setupCronRouter("s3cret")

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic s3cret",
		"wrong token":    "Bearer nope",
	}

	for name, auth := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/cron/reconcile", nil)
			if auth != "" {
				req.Header.Set("Authorization", auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCronAuthRejectsWhenSecretUnset(t *testing.T) {
	r := setupCronRouter("")

	req := httptest.NewRequest(http.MethodPost, "/cron/reconcile", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
