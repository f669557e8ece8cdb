package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventgate/internal/models"
)

// Registrations handlers

// CreateRegistration - POST /api/v1/events/:id/tickets/:ticketID/registrations
// The public endpoint that sells a seat.
func (h *Handlers) CreateRegistration(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := paramID(c, "ticketID")
	if !ok {
		return
	}

	var req models.CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.services.Registrations.Register(c.Request.Context(), eventID, ticketID, &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create registration")
		return
	}

	c.JSON(http.StatusCreated, reg)
}

// ListRegistrations - GET /api/v1/admin/registrations
func (h *Handlers) ListRegistrations(c *gin.Context) {
	page, perPage, ok := pagination(c)
	if !ok {
		return
	}

	q := models.ListRegistrationsQuery{
		Status:  c.Query("status"),
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	}
	if eventIDStr := c.Query("event_id"); eventIDStr != "" {
		eventID, err := strconv.ParseInt(eventIDStr, 10, 64)
		if err != nil || eventID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
			return
		}
		q.EventID = &eventID
	}

	response, err := h.services.Registrations.List(c.Request.Context(), q)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list registrations")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetRegistration - GET /api/v1/admin/registrations/:id
// Returns the registration with its event and ticket.
func (h *Handlers) GetRegistration(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	details, err := h.services.Registrations.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get registration")
		return
	}

	c.JSON(http.StatusOK, details)
}

// UpdateRegistration - PATCH /api/v1/admin/registrations/:id
func (h *Handlers) UpdateRegistration(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.services.Registrations.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update registration")
		return
	}

	c.JSON(http.StatusOK, reg)
}

// DeleteRegistration - DELETE /api/v1/admin/registrations/:id
// Releases the seat when the registration was confirmed.
func (h *Handlers) DeleteRegistration(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Registrations.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete registration")
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckInRegistration - POST /api/v1/admin/registrations/:id/checkin
func (h *Handlers) CheckInRegistration(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.services.Registrations.CheckInByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to check in registration")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckInByReference - POST /api/v1/admin/checkin
// Resolves a scanned QR payload reference or a manually typed code.
func (h *Handlers) CheckInByReference(c *gin.Context) {
	var req models.CheckInByReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Registrations.CheckInByReference(c.Request.Context(), req.Reference)
	if err != nil {
		h.handleServiceError(c, err, "Failed to check in registration")
		return
	}

	c.JSON(http.StatusOK, resp)
}
