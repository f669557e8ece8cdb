package repository

import (
	"context"
	"database/sql"
	"fmt"

	"eventgate/internal/apperrors"
	"eventgate/internal/database"
	"eventgate/internal/models"
)

const eventColumns = `id, title, slug, description, venue, address, city, country,
	       starts_at, ends_at, capacity, is_published, cover_path, created_at, updated_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, slug, description, venue, address, city, country,
		                    starts_at, ends_at, capacity, is_published, cover_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Slug,
		event.Description,
		event.Venue,
		event.Address,
		event.City,
		event.Country,
		event.StartsAt,
		event.EndsAt,
		event.Capacity,
		event.IsPublished,
		event.CoverPath,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if isUniqueViolation(err, "events_slug_key") {
		return apperrors.Validationf("slug %q is already in use", event.Slug)
	}
	return err
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	err := scanEvent(r.db.QueryRowContext(ctx, query, id), event)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

// List returns events matching the filters, soonest-starting last, plus the
// total match count. Search falls back to ILIKE over the text columns; when
// Elasticsearch is configured the service layer uses the search index instead.
func (r *EventRepository) List(ctx context.Context, q models.ListEventsQuery) ([]models.Event, int64, error) {
	where := " WHERE 1=1"
	var args []interface{}
	argIndex := 1

	if q.PublishedOnly {
		where += " AND is_published = TRUE"
	}
	if q.Search != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d OR city ILIKE $%d OR country ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex)
		args = append(args, "%"+q.Search+"%")
		argIndex++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM events` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where + ` ORDER BY starts_at DESC`
	if q.Page > 0 && q.PerPage > 0 {
		offset := (q.Page - 1) * q.PerPage
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, q.PerPage, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}

	return events, total, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, slug = $2, description = $3, venue = $4, address = $5,
		    city = $6, country = $7, starts_at = $8, ends_at = $9, capacity = $10,
		    is_published = $11, cover_path = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Slug,
		event.Description,
		event.Venue,
		event.Address,
		event.City,
		event.Country,
		event.StartsAt,
		event.EndsAt,
		event.Capacity,
		event.IsPublished,
		event.CoverPath,
		event.ID,
	).Scan(&event.UpdatedAt)

	if isUniqueViolation(err, "events_slug_key") {
		return apperrors.Validationf("slug %q is already in use", event.Slug)
	}
	return err
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanEvent(row rowScanner, event *models.Event) error {
	return row.Scan(
		&event.ID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.Venue,
		&event.Address,
		&event.City,
		&event.Country,
		&event.StartsAt,
		&event.EndsAt,
		&event.Capacity,
		&event.IsPublished,
		&event.CoverPath,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}
