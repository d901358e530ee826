package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/pipeline"
)

// ExtractRequest is the POST /api/v1/extract payload: URLs whose markdown
// the caller wants to feed into their own downstream extraction.
type ExtractRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
	models.ScrapeOptions
}

// ExtractResponse mirrors the request order: Pages[i] belongs to URLs[i].
type ExtractResponse struct {
	Success bool                   `json:"success"`
	Pages   []pipeline.PageContent `json:"pages"`
}

// Extract returns a handler for POST /api/v1/extract.
func Extract(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExtractRequest
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
		pages := p.GatherContent(c.Request.Context(), req.URLs, &opts)

		c.JSON(http.StatusOK, ExtractResponse{Success: true, Pages: pages})
	}
}
