// Package handler contains the controller logic for HTTP requests.
package handler

import (
	"net/http"
	"time"

	"bridge-go/internal/model"
	"bridge-go/internal/service"
	"bridge-go/pkg/events"
	"bridge-go/pkg/kafka"
	"bridge-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SearchHandler serves the resource search endpoint.
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler creates a new SearchHandler instance.
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles a resource search request. The response shape is the same
// whether the ranking model or the keyword fallback produced the results;
// only the provider field tells them apart.
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Search: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid request payload: query is required",
		})
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), req)
	if err != nil {
		log.Errorf("Search: failed to search services: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "search is temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, result)

	// Analytics is best effort and must never affect the response.
	if err := kafka.ProduceSearchEvent(events.SearchEvent{
		Query:       req.Query,
		Category:    req.Category,
		Provider:    result.Provider,
		ResultCount: result.Count,
		OccurredAt:  time.Now(),
	}); err != nil {
		log.Warnf("Search: failed to publish analytics event: %v", err)
	}
}
