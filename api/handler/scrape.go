package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lead-agent/prospect/cache"
	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/pipeline"
)

// ScrapeRequest is the POST /api/v1/scrape payload: a URL plus the scrape
// options, flattened into one JSON object.
type ScrapeRequest struct {
	URL string `json:"url" binding:"required"`
	models.ScrapeOptions
}

// Scrape returns a handler for POST /api/v1/scrape.
//
// The cache is consulted only when the request opts in via
// cache_max_age_ms; the pipeline itself never caches.
func Scrape(p *pipeline.Pipeline, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResult(models.ErrCodeInvalidInput, err.Error()))
			return
		}
		opts := req.ScrapeOptions

		var cacheKey string
		if cc != nil && opts.CacheMaxAgeMs > 0 {
			cacheKey = cache.Key(req.URL, &opts)
			maxAge := time.Duration(opts.CacheMaxAgeMs) * time.Millisecond
			if cached, hit := cc.Get(cacheKey, maxAge); hit {
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		res := p.Scrape(c.Request.Context(), req.URL, &opts)
		if !res.Success {
			c.JSON(statusForCode(res.Error.Code), res)
			return
		}

		if cacheKey != "" {
			cc.Set(cacheKey, res)
		}
		c.JSON(http.StatusOK, res)
	}
}

func errorResult(code, message string) models.ScrapeResult {
	return models.ScrapeResult{
		Success: false,
		Error:   &models.ErrorDetail{Code: code, Message: message},
	}
}

// statusForCode translates error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput, models.ErrCodeInvalidURL:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
