package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventgate/internal/models"
)

// Tickets handlers

// ListEventTickets - GET /api/v1/events/:id/tickets
// Public view; inactive ticket categories are hidden.
func (h *Handlers) ListEventTickets(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	tickets, err := h.services.Tickets.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list tickets")
		return
	}

	visible := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.IsActive {
			visible = append(visible, t)
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": visible})
}

// AdminListEventTickets - GET /api/v1/admin/events/:id/tickets
func (h *Handlers) AdminListEventTickets(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	tickets, err := h.services.Tickets.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list tickets")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tickets})
}

// CreateTicket - POST /api/v1/admin/events/:id/tickets
func (h *Handlers) CreateTicket(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Tickets.Create(c.Request.Context(), eventID, &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create ticket")
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// UpdateTicket - PATCH /api/v1/admin/events/:id/tickets/:ticketID
func (h *Handlers) UpdateTicket(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := paramID(c, "ticketID")
	if !ok {
		return
	}

	var req models.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Tickets.Update(c.Request.Context(), eventID, ticketID, &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update ticket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// DeleteTicket - DELETE /api/v1/admin/events/:id/tickets/:ticketID
func (h *Handlers) DeleteTicket(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := paramID(c, "ticketID")
	if !ok {
		return
	}

	if err := h.services.Tickets.Delete(c.Request.Context(), eventID, ticketID); err != nil {
		h.handleServiceError(c, err, "Failed to delete ticket")
		return
	}

	c.Status(http.StatusNoContent)
}
