package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventgate/internal/apperrors"
	"eventgate/internal/database"
	"eventgate/internal/models"
)

const registrationColumns = `id, event_id, ticket_id, user_id, first_name, last_name, email,
	       status, reference, checked_in_at, qr_code_path, invoice_path, created_at, updated_at`

type RegistrationRepository struct {
	db *database.DB
}

func NewRegistrationRepository(db *database.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// CreateConfirmed performs the whole sale in one transaction: it locks the
// ticket row, re-reads the counters under the lock, rejects when capacity is
// exhausted, inserts the registration and increments sold. Either everything
// commits or nothing does.
//
// Returns apperrors.ErrSoldOut when sold >= quantity at commit time and
// apperrors.ErrReferenceTaken when the reference collides with an existing
// registration; the caller regenerates and retries the latter.
func (r *RegistrationRepository) CreateConfirmed(ctx context.Context, reg *models.Registration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Counters must come from inside the transaction, never from a snapshot
	// the caller fetched earlier.
	var quantity, sold int
	lockQuery := `SELECT quantity, sold FROM tickets WHERE id = $1 AND event_id = $2 FOR UPDATE`
	err = tx.QueryRowContext(ctx, lockQuery, reg.TicketID, reg.EventID).Scan(&quantity, &sold)
	if err == sql.ErrNoRows {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock ticket row: %w", err)
	}

	if sold >= quantity {
		return apperrors.ErrSoldOut
	}

	insertQuery := `
		INSERT INTO registrations (event_id, ticket_id, user_id, first_name, last_name, email, status, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, insertQuery,
		reg.EventID,
		reg.TicketID,
		reg.UserID,
		reg.FirstName,
		reg.LastName,
		reg.Email,
		reg.Status,
		reg.Reference,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "registrations_reference_key") {
			return apperrors.ErrReferenceTaken
		}
		return fmt.Errorf("failed to insert registration: %w", err)
	}

	incrementQuery := `UPDATE tickets SET sold = sold + 1, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, incrementQuery, reg.TicketID); err != nil {
		return fmt.Errorf("failed to increment sold counter: %w", err)
	}

	return tx.Commit()
}

// Delete removes a registration. When the registration was confirmed, the
// ticket's sold counter is decremented (never below zero) inside the same
// transaction, under a row lock on the ticket.
func (r *RegistrationRepository) Delete(ctx context.Context, id int64) (*models.Registration, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	reg := &models.Registration{}
	selectQuery := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1 FOR UPDATE`
	err = scanRegistration(tx.QueryRowContext(ctx, selectQuery, id), reg)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}

	if reg.Status == models.StatusConfirmed {
		var sold int
		lockQuery := `SELECT sold FROM tickets WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRowContext(ctx, lockQuery, reg.TicketID).Scan(&sold); err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to lock ticket row: %w", err)
		}
		if sold > 0 {
			decrementQuery := `UPDATE tickets SET sold = sold - 1, updated_at = NOW() WHERE id = $1`
			if _, err := tx.ExecContext(ctx, decrementQuery, reg.TicketID); err != nil {
				return nil, fmt.Errorf("failed to decrement sold counter: %w", err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*models.Registration, error) {
	reg := &models.Registration{}
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	err := scanRegistration(r.db.QueryRowContext(ctx, query, id), reg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return reg, err
}

// GetByReference looks up a registration by its public code. The caller is
// responsible for normalizing case beforehand.
func (r *RegistrationRepository) GetByReference(ctx context.Context, ref string) (*models.Registration, error) {
	reg := &models.Registration{}
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE reference = $1`

	err := scanRegistration(r.db.QueryRowContext(ctx, query, ref), reg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return reg, err
}

// GetDetails loads a registration joined with its event and ticket.
func (r *RegistrationRepository) GetDetails(ctx context.Context, id int64) (*models.RegistrationDetails, error) {
	query := `
		SELECT r.id, r.event_id, r.ticket_id, r.user_id, r.first_name, r.last_name, r.email,
		       r.status, r.reference, r.checked_in_at, r.qr_code_path, r.invoice_path, r.created_at, r.updated_at,
		       e.id, e.title, e.slug, e.description, e.venue, e.address, e.city, e.country,
		       e.starts_at, e.ends_at, e.capacity, e.is_published, e.cover_path, e.created_at, e.updated_at,
		       t.id, t.event_id, t.type, t.price, t.quantity, t.sold, t.is_active, t.created_at, t.updated_at
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		JOIN tickets t ON t.id = r.ticket_id
		WHERE r.id = $1`

	d := &models.RegistrationDetails{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.Registration.ID,
		&d.Registration.EventID,
		&d.Registration.TicketID,
		&d.Registration.UserID,
		&d.Registration.FirstName,
		&d.Registration.LastName,
		&d.Registration.Email,
		&d.Registration.Status,
		&d.Registration.Reference,
		&d.Registration.CheckedInAt,
		&d.Registration.QRCodePath,
		&d.Registration.InvoicePath,
		&d.Registration.CreatedAt,
		&d.Registration.UpdatedAt,
		&d.Event.ID,
		&d.Event.Title,
		&d.Event.Slug,
		&d.Event.Description,
		&d.Event.Venue,
		&d.Event.Address,
		&d.Event.City,
		&d.Event.Country,
		&d.Event.StartsAt,
		&d.Event.EndsAt,
		&d.Event.Capacity,
		&d.Event.IsPublished,
		&d.Event.CoverPath,
		&d.Event.CreatedAt,
		&d.Event.UpdatedAt,
		&d.Ticket.ID,
		&d.Ticket.EventID,
		&d.Ticket.Type,
		&d.Ticket.Price,
		&d.Ticket.Quantity,
		&d.Ticket.Sold,
		&d.Ticket.IsActive,
		&d.Ticket.CreatedAt,
		&d.Ticket.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// List returns registrations matching the admin filters, newest first, plus
// the total match count for pagination.
func (r *RegistrationRepository) List(ctx context.Context, q models.ListRegistrationsQuery) ([]models.Registration, int64, error) {
	where := " WHERE 1=1"
	var args []interface{}
	argIndex := 1

	if q.EventID != nil {
		where += fmt.Sprintf(" AND event_id = $%d", argIndex)
		args = append(args, *q.EventID)
		argIndex++
	}
	if q.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, q.Status)
		argIndex++
	}
	if q.Search != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR reference ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex)
		args = append(args, "%"+q.Search+"%")
		argIndex++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM registrations` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	query := `SELECT ` + registrationColumns + ` FROM registrations` + where + ` ORDER BY created_at DESC`
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

	var regs []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, 0, err
		}
		regs = append(regs, reg)
	}

	return regs, total, rows.Err()
}

func (r *RegistrationRepository) Update(ctx context.Context, reg *models.Registration) error {
	query := `
		UPDATE registrations
		SET first_name = $1, last_name = $2, email = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`

	return r.db.QueryRowContext(ctx, query,
		reg.FirstName,
		reg.LastName,
		reg.Email,
		reg.Status,
		reg.ID,
	).Scan(&reg.UpdatedAt)
}

// MarkCheckedIn sets checked_in_at if and only if it was not set before.
// Returns the timestamp and false when someone else won the race.
func (r *RegistrationRepository) MarkCheckedIn(ctx context.Context, id int64) (*time.Time, bool, error) {
	query := `
		UPDATE registrations
		SET checked_in_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND checked_in_at IS NULL
		RETURNING checked_in_at`

	var checkedInAt time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&checkedInAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &checkedInAt, true, nil
}

// SetArtifactPaths records where the invoice pipeline persisted the QR and
// invoice artifacts.
func (r *RegistrationRepository) SetArtifactPaths(ctx context.Context, id int64, qrPath, invoicePath string) error {
	query := `
		UPDATE registrations
		SET qr_code_path = $1, invoice_path = $2, updated_at = NOW()
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, qrPath, invoicePath, id)
	return err
}

// FindMissingInvoices returns confirmed registrations older than the cutoff
// that still lack generated artifacts. Used by the worker's repair job to
// recover from lost queue messages.
func (r *RegistrationRepository) FindMissingInvoices(ctx context.Context, olderThan time.Time) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE status = 'confirmed'
		  AND (qr_code_path IS NULL OR invoice_path IS NULL)
		  AND created_at < $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRegistration(row rowScanner, reg *models.Registration) error {
	return row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.TicketID,
		&reg.UserID,
		&reg.FirstName,
		&reg.LastName,
		&reg.Email,
		&reg.Status,
		&reg.Reference,
		&reg.CheckedInAt,
		&reg.QRCodePath,
		&reg.InvoicePath,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && pqErr.Constraint == constraint
}
