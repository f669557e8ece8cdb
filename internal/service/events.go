package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"eventgate/internal/apperrors"
	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/repository"
	"eventgate/internal/search"
)

type EventService struct {
	events  *repository.EventRepository
	tickets *repository.TicketRepository
	index   *search.EventIndex
}

func NewEventService(events *repository.EventRepository, tickets *repository.TicketRepository, index *search.EventIndex) *EventService {
	return &EventService{
		events:  events,
		tickets: tickets,
		index:   index,
	}
}

func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	event := &models.Event{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Venue:       req.Venue,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		IsPublished: req.IsPublished,
		CoverPath:   req.CoverPath,
	}
	if event.Slug == "" {
		event.Slug = generateSlug(event.Title)
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.reindex(ctx, event)
	return event, nil
}

// List returns a page of events. A non-empty search term goes through
// Elasticsearch when available; any index failure falls back to SQL so
// browsing never depends on the cluster being up.
func (s *EventService) List(ctx context.Context, q models.ListEventsQuery) (*models.Page[models.Event], error) {
	if q.Search != "" && s.index != nil {
		events, total, err := s.index.Search(ctx, q)
		if err == nil {
			return &models.Page[models.Event]{
				Data:    events,
				Page:    q.Page,
				PerPage: q.PerPage,
				Total:   total,
			}, nil
		}
		logger.WithContext(ctx).Warn("Search index unavailable, falling back to SQL",
			"error", err)
	}

	events, total, err := s.events.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.Event]{
		Data:    events,
		Page:    q.Page,
		PerPage: q.PerPage,
		Total:   total,
	}, nil
}

// Get returns an event with its ticket categories attached.
func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.ErrNotFound
	}

	tickets, err := s.tickets.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.Tickets = tickets
	return event, nil
}

func (s *EventService) Update(ctx context.Context, id int64, req *models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.ErrNotFound
	}

	if req.Title != nil {
		event.Title = *req.Title
		if req.Slug == nil {
			event.Slug = generateSlug(event.Title)
		}
	}
	if req.Slug != nil {
		event.Slug = *req.Slug
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.Venue != nil {
		event.Venue = req.Venue
	}
	if req.Address != nil {
		event.Address = req.Address
	}
	if req.City != nil {
		event.City = req.City
	}
	if req.Country != nil {
		event.Country = req.Country
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}
	if req.Capacity != nil {
		event.Capacity = req.Capacity
	}
	if req.IsPublished != nil {
		event.IsPublished = *req.IsPublished
	}
	if req.CoverPath != nil {
		event.CoverPath = req.CoverPath
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	s.reindex(ctx, event)
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteEvent(ctx, id); err != nil {
			logger.WithContext(ctx).Error("Failed to remove event from search index",
				"event_id", id,
				"error", err)
		}
	}
	return nil
}

// reindex pushes the event to the search index. Index failures are logged,
// never surfaced; the database already holds the committed state.
func (s *EventService) reindex(ctx context.Context, event *models.Event) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexEvent(ctx, event); err != nil {
		logger.WithContext(ctx).Error("Failed to index event",
			"event_id", event.ID,
			"error", err)
	}
}

// generateSlug derives a URL slug from a title, with a random suffix so two
// events with the same title never fight over the unique constraint.
func generateSlug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	if slug == "" {
		return suffix
	}
	return fmt.Sprintf("%s-%s", slug, suffix)
}
