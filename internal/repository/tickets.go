package repository

import (
	"context"
	"database/sql"

	"eventgate/internal/apperrors"
	"eventgate/internal/database"
	"eventgate/internal/models"
)

const ticketColumns = `id, event_id, type, price, quantity, sold, is_active, created_at, updated_at`

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (event_id, type, price, quantity, sold, is_active)
		VALUES ($1, $2, $3, $4, 0, $5)
		RETURNING id, sold, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		ticket.EventID,
		ticket.Type,
		ticket.Price,
		ticket.Quantity,
		ticket.IsActive,
	).Scan(&ticket.ID, &ticket.Sold, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	err := scanTicket(r.db.QueryRowContext(ctx, query, id), ticket)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ticket, err
}

// ListByEvent returns an event's tickets ordered by price, cheapest first.
func (r *TicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 ORDER BY price ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}

// Update mutates the administrative fields. The sold counter is only ever
// touched by the registrations repository, inside its own transactions.
func (r *TicketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	query := `
		UPDATE tickets
		SET type = $1, price = $2, quantity = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`

	return r.db.QueryRowContext(ctx, query,
		ticket.Type,
		ticket.Price,
		ticket.Quantity,
		ticket.IsActive,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
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

func scanTicket(row rowScanner, ticket *models.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.Type,
		&ticket.Price,
		&ticket.Quantity,
		&ticket.Sold,
		&ticket.IsActive,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}
