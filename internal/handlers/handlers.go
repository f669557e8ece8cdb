package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventgate/internal/apperrors"
	"eventgate/internal/cache"
	"eventgate/internal/logger"
	"eventgate/internal/service"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// handleServiceError maps service errors onto HTTP responses. Validation and
// sold-out failures are the client's problem (422), missing rows are 404,
// everything else is a logged 500.
func (h *Handlers) handleServiceError(c *gin.Context, err error, msg string) {
	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Msg})
	case errors.Is(err, apperrors.ErrSoldOut):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Ticket is sold out"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		logger.WithContext(c.Request.Context()).Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// paramID parses a positive integer path parameter, replying 400 itself on
// bad input.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// pagination parses page/per_page query parameters with bounds.
func pagination(c *gin.Context) (page, perPage int, ok bool) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return 0, 0, false
	}
	if perPage < 1 || perPage > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "per_page must be between 1 and 100"})
		return 0, 0, false
	}
	return page, perPage, true
}
