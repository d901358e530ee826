package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lead-agent/prospect/models"
)

// ctxAPIKey is the gin context key carrying the authenticated API key.
// The rate limiter reads it to bucket requests per key instead of per IP.
const ctxAPIKey = "api_key"

// Auth guards the API with a static key list. Clients present the key as
// X-API-Key or as a bearer token. With no keys configured every request
// passes; single-tenant and local deployments run open.
func Auth(apiKeys []string) gin.HandlerFunc {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}
	if len(validKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := clientKey(c.Request)
		if key == "" {
			reject(c, http.StatusUnauthorized, models.ErrCodeUnauthorized,
				"missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}
		if _, ok := validKeys[key]; !ok {
			slog.Warn("rejected request with unknown API key",
				"path", c.Request.URL.Path,
				"key", maskKey(key),
				"ip", c.ClientIP())
			reject(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "invalid API key")
			return
		}
		c.Set(ctxAPIKey, key)
		c.Next()
	}
}

// clientKey reads the API key from the request, preferring X-API-Key over
// the Authorization bearer token.
func clientKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// maskKey keeps the last four characters of a key for log correlation.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// reject aborts the request with the API's standard error envelope.
func reject(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ScrapeResult{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
