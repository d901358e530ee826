package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lead-agent/prospect/engine"
)

// HealthResponse is the GET /api/v1/health payload.
type HealthResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	RenderAvailable bool   `json:"render_available"`
	ActivePages     int    `json:"active_pages"`
	MaxPages        int    `json:"max_pages"`
	Version         string `json:"version"`
}

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when the rendering engine is unavailable (fetch-only
// operation) or when more than 80% of the page pool is active.
func Health(render *engine.RenderEngine, maxPages int, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:   "healthy",
			Uptime:   time.Since(startTime).Round(time.Second).String(),
			MaxPages: maxPages,
			Version:  "0.1.0",
		}

		if render != nil {
			resp.RenderAvailable = render.Available()
			resp.ActivePages = render.ActivePages()
		}
		if !resp.RenderAvailable {
			resp.Status = "degraded"
		}
		if maxPages > 0 && resp.ActivePages > int(float64(maxPages)*0.8) {
			resp.Status = "degraded"
		}

		c.JSON(http.StatusOK, resp)
	}
}
