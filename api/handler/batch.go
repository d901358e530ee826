package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/pipeline"
)

// maxBatchURLs caps one batch request; larger jobs should be split by the
// caller.
const maxBatchURLs = 50

// BatchScrapeRequest is the POST /api/v1/scrape/batch payload. The options
// apply to every URL in the batch.
type BatchScrapeRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
	models.ScrapeOptions
}

// BatchScrapeResponse mirrors the request order: Results[i] belongs to
// URLs[i].
type BatchScrapeResponse struct {
	Success   bool                   `json:"success"`
	Total     int                    `json:"total"`
	Succeeded int                    `json:"succeeded"`
	Results   []*models.ScrapeResult `json:"results"`
}

// ScrapeBatch returns a handler for POST /api/v1/scrape/batch.
func ScrapeBatch(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BatchScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResult(models.ErrCodeInvalidInput, err.Error()))
			return
		}
		if len(req.URLs) > maxBatchURLs {
			c.JSON(http.StatusBadRequest, errorResult(models.ErrCodeInvalidInput,
				fmt.Sprintf("too many URLs: %d (max %d)", len(req.URLs), maxBatchURLs)))
			return
		}

		opts := req.ScrapeOptions
		results := p.ScrapeMany(c.Request.Context(), req.URLs, &opts)

		succeeded := 0
		for _, r := range results {
			if r.Success {
				succeeded++
			}
		}

		c.JSON(http.StatusOK, BatchScrapeResponse{
			Success:   true,
			Total:     len(results),
			Succeeded: succeeded,
			Results:   results,
		})
	}
}
