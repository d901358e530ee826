package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/pipeline"
)

// ContactsRequest is the POST /api/v1/contacts payload.
type ContactsRequest struct {
	URL string `json:"url" binding:"required"`
	models.ScrapeOptions
}

// Contacts returns a handler for POST /api/v1/contacts: the full
// scrape-and-extract flow against one business website.
//
// The flow itself never errors hard; a failed run comes back as a 502 with
// the run's own error message, not as a bare HTTP error.
func Contacts(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ContactsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResult(models.ErrCodeInvalidInput, err.Error()))
			return
		}

		opts := req.ScrapeOptions
		res := p.ScrapeAndExtractContacts(c.Request.Context(), req.URL, &opts)

		status := http.StatusOK
		if !res.Success {
			status = http.StatusBadGateway
		}
		c.JSON(status, res)
	}
}
