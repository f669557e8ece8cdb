package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest - payload for creating an event.
type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Slug        string     `json:"slug" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	Venue       *string    `json:"venue" binding:"omitempty,max=255"`
	Address     *string    `json:"address" binding:"omitempty,max=255"`
	City        *string    `json:"city" binding:"omitempty,max=255"`
	Country     *string    `json:"country" binding:"omitempty,max=255"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity" binding:"omitempty,min=0"`
	IsPublished bool       `json:"is_published"`
	CoverPath   *string    `json:"cover_path" binding:"omitempty,max=1024"`
}

// UpdateEventRequest - payload for partially updating an event. Nil fields are
// left unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Slug        *string    `json:"slug" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	Venue       *string    `json:"venue" binding:"omitempty,max=255"`
	Address     *string    `json:"address" binding:"omitempty,max=255"`
	City        *string    `json:"city" binding:"omitempty,max=255"`
	Country     *string    `json:"country" binding:"omitempty,max=255"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity" binding:"omitempty,min=0"`
	IsPublished *bool      `json:"is_published"`
	CoverPath   *string    `json:"cover_path" binding:"omitempty,max=1024"`
}

// ListEventsQuery - query parameters for listing events.
type ListEventsQuery struct {
	Search        string
	PublishedOnly bool
	Page          int
	PerPage       int
}

// CreateTicketRequest - payload for creating a ticket type under an event.
type CreateTicketRequest struct {
	Type     string          `json:"type" binding:"required,max=255"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Quantity int             `json:"quantity" binding:"min=0"`
	IsActive *bool           `json:"is_active"`
}

// UpdateTicketRequest - payload for partially updating a ticket.
type UpdateTicketRequest struct {
	Type     *string          `json:"type" binding:"omitempty,max=255"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity" binding:"omitempty,min=0"`
	IsActive *bool            `json:"is_active"`
}

// CreateRegistrationRequest - attendee details submitted at registration.
type CreateRegistrationRequest struct {
	FirstName string `json:"first_name" binding:"required,max=255"`
	LastName  string `json:"last_name" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email,max=255"`
}

// UpdateRegistrationRequest - admin payload for editing a registration.
type UpdateRegistrationRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=255"`
	LastName  *string `json:"last_name" binding:"omitempty,max=255"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	Status    *string `json:"status" binding:"omitempty,oneof=pending confirmed cancelled refunded"`
}

// ListRegistrationsQuery - admin filters for listing registrations.
type ListRegistrationsQuery struct {
	EventID *int64
	Status  string
	Search  string
	Page    int
	PerPage int
}

// CheckInByReferenceRequest - public check-in payload.
type CheckInByReferenceRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// CheckInResponse - result of a check-in attempt. AlreadyCheckedIn is true
// when the registration had been checked in before this call.
type CheckInResponse struct {
	Message          string        `json:"message"`
	AlreadyCheckedIn bool          `json:"-"`
	Registration     *Registration `json:"registration,omitempty"`
}

// Page wraps a paginated collection.
type Page[T any] struct {
	Data    []T   `json:"data"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}
