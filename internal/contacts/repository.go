// Package contacts provides contact person management.
package contacts

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a contact does not exist or is soft-deleted.
var ErrNotFound = errors.New("contact not found")

// Contact is a person attached to an account and optionally to deals.
type Contact struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	AccountID *uuid.UUID `json:"accountId,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Repository persists contacts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the contact repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const contactColumns = `id, first_name, last_name, email, phone, account_id, deleted_at, created_at, updated_at`

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.AccountID, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	if err != nil {
		return Contact{}, err
	}
	return c, nil
}

// CreateContactParams holds the fields for a new contact.
type CreateContactParams struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	AccountID *uuid.UUID
}

// Create inserts a new contact. It accepts a Querier so lead conversion can
// create the contact inside its transaction.
func (r *Repository) Create(ctx context.Context, q db.Querier, params CreateContactParams) (Contact, error) {
	if q == nil {
		q = r.pool
	}
	return scanContact(q.QueryRow(ctx, `
		INSERT INTO contacts (first_name, last_name, email, phone, account_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contactColumns,
		params.FirstName, params.LastName, params.Email, params.Phone, params.AccountID,
	))
}

// FindActive returns one non-deleted contact.
func (r *Repository) FindActive(ctx context.Context, q db.Querier, id uuid.UUID) (Contact, error) {
	if q == nil {
		q = r.pool
	}
	return scanContact(q.QueryRow(ctx, `
		SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND deleted_at IS NULL
	`, id))
}

// List returns non-deleted contacts, optionally filtered by account.
func (r *Repository) List(ctx context.Context, accountID *uuid.UUID, limit int) ([]Contact, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE deleted_at IS NULL
		  AND ($1::uuid IS NULL OR account_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Contact, 0)
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.AccountID, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// UpdateContactParams holds partial contact edits; nil fields stay untouched.
type UpdateContactParams struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	AccountID *uuid.UUID
}

// Update applies partial edits to a non-deleted contact.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateContactParams) (Contact, error) {
	return scanContact(r.pool.QueryRow(ctx, `
		UPDATE contacts SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			phone = COALESCE($5, phone),
			account_id = COALESCE($6, account_id),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+contactColumns,
		id, params.FirstName, params.LastName, params.Email, params.Phone, params.AccountID,
	))
}

// SoftDelete marks a contact deleted.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
