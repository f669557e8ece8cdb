package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventgate/internal/logger"
	"eventgate/internal/models"
)

// Events handlers

// ListEvents - GET /api/v1/events
// Public listing; only published events are visible.
func (h *Handlers) ListEvents(c *gin.Context) {
	h.listEvents(c, true)
}

// AdminListEvents - GET /api/v1/admin/events
func (h *Handlers) AdminListEvents(c *gin.Context) {
	h.listEvents(c, false)
}

func (h *Handlers) listEvents(c *gin.Context, publishedOnly bool) {
	search := c.Query("search")
	page, perPage, ok := pagination(c)
	if !ok {
		return
	}

	// Only the unfiltered public listing is cached; searches and admin views
	// always hit the source.
	shouldCache := publishedOnly && search == "" && h.valkeyClient != nil
	cacheKey := fmt.Sprintf("%d:%d", page, perPage)

	if shouldCache {
		rawJSON, err := h.valkeyClient.GetEventsListRaw(c.Request.Context(), cacheKey)
		if err == nil && rawJSON != nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	response, err := h.services.Events.List(c.Request.Context(), models.ListEventsQuery{
		Search:        search,
		PublishedOnly: publishedOnly,
		Page:          page,
		PerPage:       perPage,
	})
	if err != nil {
		h.handleServiceError(c, err, "Failed to list events")
		return
	}

	if shouldCache {
		if rawJSON, err := json.Marshal(response); err == nil {
			if err := h.valkeyClient.SetEventsListRaw(c.Request.Context(), cacheKey, rawJSON); err != nil {
				logger.WithContext(c.Request.Context()).Warn("Failed to cache events list", "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetEvent - GET /api/v1/events/:id
// Unpublished events are invisible to the public.
func (h *Handlers) GetEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get event")
		return
	}
	if !event.IsPublished {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// AdminGetEvent - GET /api/v1/admin/events/:id
func (h *Handlers) AdminGetEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// CreateEvent - POST /api/v1/admin/events
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Events.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// UpdateEvent - PATCH /api/v1/admin/events/:id
func (h *Handlers) UpdateEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Events.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent - DELETE /api/v1/admin/events/:id
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Events.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete event")
		return
	}

	c.Status(http.StatusNoContent)
}
