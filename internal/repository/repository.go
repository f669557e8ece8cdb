package repository

import (
	"eventgate/internal/database"
)

type Repositories struct {
	Events        *EventRepository
	Tickets       *TicketRepository
	Registrations *RegistrationRepository
	Users         *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:        NewEventRepository(db),
		Tickets:       NewTicketRepository(db),
		Registrations: NewRegistrationRepository(db),
		Users:         NewUserRepository(db),
	}
}
