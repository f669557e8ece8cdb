package models

import "time"

// NATS subjects.
const (
	SubjectRegistrationConfirmed = "registration.confirmed"
	SubjectRegistrationDeleted   = "registration.deleted"
	SubjectRegistrationCheckedIn = "registration.checkedin"
)

// RegistrationConfirmedEvent asks the worker to run the invoice pipeline for a
// newly committed registration. Delivery is at-least-once; the pipeline is
// idempotent by reference-derived artifact paths.
type RegistrationConfirmedEvent struct {
	RegistrationID int64     `json:"registration_id"`
	Reference      string    `json:"reference"`
	Timestamp      time.Time `json:"timestamp"`
}

// RegistrationDeletedEvent is published after an admin delete, for analytics
// and cache consumers.
type RegistrationDeletedEvent struct {
	RegistrationID int64     `json:"registration_id"`
	EventID        int64     `json:"event_id"`
	TicketID       int64     `json:"ticket_id"`
	WasConfirmed   bool      `json:"was_confirmed"`
	Timestamp      time.Time `json:"timestamp"`
}

// RegistrationCheckedInEvent is published on a successful first check-in.
type RegistrationCheckedInEvent struct {
	RegistrationID int64     `json:"registration_id"`
	Reference      string    `json:"reference"`
	Timestamp      time.Time `json:"timestamp"`
}
