package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lead-agent/prospect/api/handler"
	"github.com/lead-agent/prospect/api/middleware"
	"github.com/lead-agent/prospect/cache"
	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/engine"
	"github.com/lead-agent/prospect/pipeline"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(p *pipeline.Pipeline, render *engine.RenderEngine, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(render, cfg.Browser.MaxPages, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Scrape
	protected.POST("/scrape", handler.Scrape(p, cc))
	protected.POST("/scrape/batch", handler.ScrapeBatch(p))

	// Contact extraction
	protected.POST("/contacts", handler.Contacts(p))

	// Content gathering for downstream extraction
	protected.POST("/extract", handler.Extract(p))

	return r
}
