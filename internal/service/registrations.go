package service

import (
	"context"
	"errors"
	"time"

	"eventgate/internal/apperrors"
	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/monitoring"
	"eventgate/internal/reference"
)

// maxReferenceAttempts bounds regeneration when a freshly drawn reference
// collides with an existing row. With a 32^10 code space collisions are
// effectively theoretical; the bound exists so a broken random source cannot
// spin forever.
const maxReferenceAttempts = 5

// EventGetter and TicketGetter are the read slices of the event and ticket
// repositories the registration flow needs.
type EventGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

type TicketGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
}

// RegistrationStore is the persistence surface of the registration flow.
// *repository.RegistrationRepository implements it.
type RegistrationStore interface {
	CreateConfirmed(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id int64) (*models.Registration, error)
	GetByReference(ctx context.Context, ref string) (*models.Registration, error)
	GetDetails(ctx context.Context, id int64) (*models.RegistrationDetails, error)
	List(ctx context.Context, q models.ListRegistrationsQuery) ([]models.Registration, int64, error)
	Update(ctx context.Context, reg *models.Registration) error
	Delete(ctx context.Context, id int64) (*models.Registration, error)
	MarkCheckedIn(ctx context.Context, id int64) (*time.Time, bool, error)
}

// Publisher enqueues domain events for the worker.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type RegistrationService struct {
	events  EventGetter
	tickets TicketGetter
	regs    RegistrationStore
	queue   Publisher
}

func NewRegistrationService(events EventGetter, tickets TicketGetter, regs RegistrationStore, queue Publisher) *RegistrationService {
	return &RegistrationService{
		events:  events,
		tickets: tickets,
		regs:    regs,
		queue:   queue,
	}
}

// Register creates a confirmed registration for a ticket. Capacity is
// enforced inside the repository transaction; this layer validates the
// ticket, generates the reference and enqueues the invoice pipeline.
func (s *RegistrationService) Register(ctx context.Context, eventID, ticketID int64, req *models.CreateRegistrationRequest) (*models.Registration, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.ErrNotFound
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.EventID != event.ID {
		return nil, apperrors.ErrNotFound
	}
	if !ticket.IsActive {
		return nil, apperrors.Validationf("ticket %d is not open for registration", ticket.ID)
	}

	reg := &models.Registration{
		EventID:   event.ID,
		TicketID:  ticket.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Status:    models.StatusConfirmed,
	}

	for attempt := 1; ; attempt++ {
		ref, err := reference.New()
		if err != nil {
			return nil, err
		}
		reg.Reference = ref

		err = s.regs.CreateConfirmed(ctx, reg)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrSoldOut) {
			monitoring.SoldOutRejected()
			return nil, err
		}
		if errors.Is(err, apperrors.ErrReferenceTaken) && attempt < maxReferenceAttempts {
			logger.WithContext(ctx).Warn("Reference collision, regenerating",
				"reference", ref,
				"attempt", attempt)
			continue
		}
		return nil, err
	}

	monitoring.RegistrationCreated()

	// The registration is committed; a lost message is repaired later by the
	// worker's repair job, so a publish failure is logged, not returned.
	if err := s.queue.Publish(models.SubjectRegistrationConfirmed, models.RegistrationConfirmedEvent{
		RegistrationID: reg.ID,
		Reference:      reg.Reference,
		Timestamp:      time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish registration.confirmed",
			"registration_id", reg.ID,
			"error", err)
	}

	logger.WithContext(ctx).Info("Registration created",
		"registration_id", reg.ID,
		"event_id", reg.EventID,
		"ticket_id", reg.TicketID,
		"reference", reg.Reference)

	return reg, nil
}

func (s *RegistrationService) List(ctx context.Context, q models.ListRegistrationsQuery) (*models.Page[models.Registration], error) {
	regs, total, err := s.regs.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.Registration]{
		Data:    regs,
		Page:    q.Page,
		PerPage: q.PerPage,
		Total:   total,
	}, nil
}

// Get returns a registration together with its event and ticket.
func (s *RegistrationService) Get(ctx context.Context, id int64) (*models.RegistrationDetails, error) {
	details, err := s.regs.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, apperrors.ErrNotFound
	}
	return details, nil
}

// Update edits attendee details or status. Status transitions do not touch
// sold counters; only deletion reconciles them.
func (s *RegistrationService) Update(ctx context.Context, id int64, req *models.UpdateRegistrationRequest) (*models.Registration, error) {
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperrors.ErrNotFound
	}

	if req.FirstName != nil {
		reg.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		reg.LastName = *req.LastName
	}
	if req.Email != nil {
		reg.Email = *req.Email
	}
	if req.Status != nil {
		reg.Status = *req.Status
	}

	if err := s.regs.Update(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Delete removes a registration. The repository releases the ticket seat in
// the same transaction when the registration was confirmed.
func (s *RegistrationService) Delete(ctx context.Context, id int64) error {
	reg, err := s.regs.Delete(ctx, id)
	if err != nil {
		return err
	}

	if err := s.queue.Publish(models.SubjectRegistrationDeleted, models.RegistrationDeletedEvent{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		TicketID:       reg.TicketID,
		WasConfirmed:   reg.Status == models.StatusConfirmed,
		Timestamp:      time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish registration.deleted",
			"registration_id", reg.ID,
			"error", err)
	}

	logger.WithContext(ctx).Info("Registration deleted",
		"registration_id", reg.ID,
		"reference", reg.Reference,
		"status", reg.Status)

	return nil
}

// CheckInByID marks a registration as checked in. Check-in is idempotent and
// forward-only: a second attempt reports the fact without changing state.
func (s *RegistrationService) CheckInByID(ctx context.Context, id int64) (*models.CheckInResponse, error) {
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		monitoring.CheckIn("not_found")
		return nil, apperrors.ErrNotFound
	}
	return s.checkIn(ctx, reg)
}

// CheckInByReference resolves a scanned or typed reference code and checks
// the registration in. Lookup is case-insensitive.
func (s *RegistrationService) CheckInByReference(ctx context.Context, ref string) (*models.CheckInResponse, error) {
	reg, err := s.regs.GetByReference(ctx, reference.Normalize(ref))
	if err != nil {
		return nil, err
	}
	if reg == nil {
		monitoring.CheckIn("not_found")
		return nil, apperrors.ErrNotFound
	}
	return s.checkIn(ctx, reg)
}

func (s *RegistrationService) checkIn(ctx context.Context, reg *models.Registration) (*models.CheckInResponse, error) {
	if reg.CheckedInAt != nil {
		monitoring.CheckIn("already_checked_in")
		return &models.CheckInResponse{
			Message:          "Already checked in",
			AlreadyCheckedIn: true,
			Registration:     reg,
		}, nil
	}

	checkedInAt, updated, err := s.regs.MarkCheckedIn(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost the race against a concurrent check-in; re-read for the
		// original timestamp.
		fresh, err := s.regs.GetByID(ctx, reg.ID)
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			monitoring.CheckIn("not_found")
			return nil, apperrors.ErrNotFound
		}
		monitoring.CheckIn("already_checked_in")
		return &models.CheckInResponse{
			Message:          "Already checked in",
			AlreadyCheckedIn: true,
			Registration:     fresh,
		}, nil
	}

	reg.CheckedInAt = checkedInAt
	monitoring.CheckIn("checked_in")

	if err := s.queue.Publish(models.SubjectRegistrationCheckedIn, models.RegistrationCheckedInEvent{
		RegistrationID: reg.ID,
		Reference:      reg.Reference,
		Timestamp:      time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish registration.checked_in",
			"registration_id", reg.ID,
			"error", err)
	}

	logger.WithContext(ctx).Info("Registration checked in",
		"registration_id", reg.ID,
		"reference", reg.Reference)

	return &models.CheckInResponse{
		Message:      "Checked in",
		Registration: reg,
	}, nil
}
