package service

import (
	"context"

	"eventgate/internal/apperrors"
	"eventgate/internal/models"
	"eventgate/internal/repository"
)

type TicketService struct {
	events  *repository.EventRepository
	tickets *repository.TicketRepository
}

func NewTicketService(events *repository.EventRepository, tickets *repository.TicketRepository) *TicketService {
	return &TicketService{events: events, tickets: tickets}
}

func (s *TicketService) Create(ctx context.Context, eventID int64, req *models.CreateTicketRequest) (*models.Ticket, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.ErrNotFound
	}

	ticket := &models.Ticket{
		EventID:  event.ID,
		Type:     req.Type,
		Price:    req.Price,
		Quantity: req.Quantity,
		IsActive: true,
	}
	if req.IsActive != nil {
		ticket.IsActive = *req.IsActive
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.ErrNotFound
	}
	return s.tickets.ListByEvent(ctx, event.ID)
}

// Get returns a ticket, checking it belongs to the given event.
func (s *TicketService) Get(ctx context.Context, eventID, ticketID int64) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.EventID != eventID {
		return nil, apperrors.ErrNotFound
	}
	return ticket, nil
}

// Update edits ticket attributes. The sold counter is owned by the
// registration flow and cannot be set here. Lowering quantity below sold is
// rejected by the database check constraint.
func (s *TicketService) Update(ctx context.Context, eventID, ticketID int64, req *models.UpdateTicketRequest) (*models.Ticket, error) {
	ticket, err := s.Get(ctx, eventID, ticketID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		ticket.Type = *req.Type
	}
	if req.Price != nil {
		ticket.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < ticket.Sold {
			return nil, apperrors.Validationf("quantity %d is below the %d tickets already sold", *req.Quantity, ticket.Sold)
		}
		ticket.Quantity = *req.Quantity
	}
	if req.IsActive != nil {
		ticket.IsActive = *req.IsActive
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) Delete(ctx context.Context, eventID, ticketID int64) error {
	if _, err := s.Get(ctx, eventID, ticketID); err != nil {
		return err
	}
	return s.tickets.Delete(ctx, ticketID)
}
