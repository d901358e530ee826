package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/models"
	"golang.org/x/time/rate"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = time.Hour
)

// visitorLimiters holds one token bucket per caller identity. Buckets idle
// for limiterIdleTTL are dropped by a periodic sweep so the map stays
// bounded under churny clients.
type visitorLimiters struct {
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	visitors map[string]*visitor
}

type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func (v *visitorLimiters) allow(identity string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	vis, ok := v.visitors[identity]
	if !ok {
		vis = &visitor{bucket: rate.NewLimiter(v.rps, v.burst)}
		v.visitors[identity] = vis
	}
	vis.lastSeen = time.Now()
	return vis.bucket.Allow()
}

func (v *visitorLimiters) sweep() {
	cutoff := time.Now().Add(-limiterIdleTTL)
	v.mu.Lock()
	defer v.mu.Unlock()
	for identity, vis := range v.visitors {
		if vis.lastSeen.Before(cutoff) {
			delete(v.visitors, identity)
		}
	}
}

// RateLimit applies per-caller token-bucket throttling. The caller identity
// is the authenticated API key when Auth ran before this middleware, the
// client IP otherwise.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiters := &visitorLimiters{
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		visitors: make(map[string]*visitor),
	}

	go func() {
		ticker := time.NewTicker(limiterSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			limiters.sweep()
		}
	}()

	return func(c *gin.Context) {
		identity := c.ClientIP()
		if key, ok := c.Get(ctxAPIKey); ok {
			identity = key.(string)
		}

		if !limiters.allow(identity) {
			slog.Debug("request throttled",
				"path", c.Request.URL.Path,
				"identity", maskKey(identity))
			reject(c, http.StatusTooManyRequests, models.ErrCodeRateLimited,
				"rate limit exceeded, please slow down")
			return
		}
		c.Next()
	}
}
