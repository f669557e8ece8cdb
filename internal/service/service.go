package service

import (
	"eventgate/internal/messaging"
	"eventgate/internal/repository"
	"eventgate/internal/search"
)

// Services aggregates the business logic layer.
type Services struct {
	Events        *EventService
	Tickets       *TicketService
	Registrations *RegistrationService
}

// NewServices wires services to repositories and infrastructure. The search
// index may be nil when Elasticsearch is disabled.
func NewServices(repos *repository.Repositories, nats *messaging.NATSClient, index *search.EventIndex) *Services {
	return &Services{
		Events:        NewEventService(repos.Events, repos.Tickets, index),
		Tickets:       NewTicketService(repos.Events, repos.Tickets),
		Registrations: NewRegistrationService(repos.Events, repos.Tickets, repos.Registrations, nats),
	}
}
