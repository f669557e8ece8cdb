package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Registration statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

// User represents an admin/API user.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Event represents an event attendees can register for.
type Event struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Description *string    `json:"description" db:"description"`
	Venue       *string    `json:"venue" db:"venue"`
	Address     *string    `json:"address" db:"address"`
	City        *string    `json:"city" db:"city"`
	Country     *string    `json:"country" db:"country"`
	StartsAt    time.Time  `json:"starts_at" db:"starts_at"`
	EndsAt      *time.Time `json:"ends_at" db:"ends_at"`
	Capacity    *int       `json:"capacity" db:"capacity"`
	IsPublished bool       `json:"is_published" db:"is_published"`
	CoverPath   *string    `json:"cover_path" db:"cover_path"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	Tickets []Ticket `json:"tickets,omitempty"` // Not from DB, filled separately
}

// Ticket is a purchasable category for an event with finite capacity.
// Invariant: 0 <= Sold <= Quantity, enforced by the registrations repository
// which only mutates Sold inside the same transaction as the availability
// check.
type Ticket struct {
	ID        int64           `json:"id" db:"id"`
	EventID   int64           `json:"event_id" db:"event_id"`
	Type      string          `json:"type" db:"type"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Sold      int             `json:"sold" db:"sold"`
	IsActive  bool            `json:"is_active" db:"is_active"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Remaining returns the unsold capacity.
func (t *Ticket) Remaining() int {
	return t.Quantity - t.Sold
}

// Registration is a confirmed claim on one ticket by one attendee.
type Registration struct {
	ID          int64      `json:"id" db:"id"`
	EventID     int64      `json:"event_id" db:"event_id"`
	TicketID    int64      `json:"ticket_id" db:"ticket_id"`
	UserID      *int64     `json:"user_id" db:"user_id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	Email       string     `json:"email" db:"email"`
	Status      string     `json:"status" db:"status"`
	Reference   string     `json:"reference" db:"reference"`
	CheckedInAt *time.Time `json:"checked_in_at" db:"checked_in_at"`
	QRCodePath  *string    `json:"qr_code_path" db:"qr_code_path"`
	InvoicePath *string    `json:"invoice_path" db:"invoice_path"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// AttendeeName returns the attendee's full name.
func (r *Registration) AttendeeName() string {
	return r.FirstName + " " + r.LastName
}

// RegistrationDetails is a registration joined with its event and ticket, as
// needed by the invoice pipeline and check-in responses.
type RegistrationDetails struct {
	Registration Registration `json:"registration"`
	Event        Event        `json:"event"`
	Ticket       Ticket       `json:"ticket"`
}
