// Package leads provides inbound lead management and conversion.
package leads

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lead does not exist or is soft-deleted.
var ErrNotFound = errors.New("lead not found")

// Status is a lead's qualification state.
type Status string

const (
	StatusNew          Status = "NEW"
	StatusContacted    Status = "CONTACTED"
	StatusQualified    Status = "QUALIFIED"
	StatusConverted    Status = "CONVERTED"
	StatusDisqualified Status = "DISQUALIFIED"
)

// Lead is an unqualified prospect before conversion into account + contact.
type Lead struct {
	ID                     uuid.UUID  `json:"id"`
	FirstName              string     `json:"firstName"`
	LastName               string     `json:"lastName"`
	Email                  *string    `json:"email,omitempty"`
	Phone                  *string    `json:"phone,omitempty"`
	Company                *string    `json:"company,omitempty"`
	Source                 *string    `json:"source,omitempty"`
	Status                 Status     `json:"status"`
	OwnerID                uuid.UUID  `json:"ownerId"`
	ConvertedAccountID     *uuid.UUID `json:"convertedAccountId,omitempty"`
	ConvertedContactID     *uuid.UUID `json:"convertedContactId,omitempty"`
	ConvertedOpportunityID *uuid.UUID `json:"convertedOpportunityId,omitempty"`
	DeletedAt              *time.Time `json:"deletedAt,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

// Repository persists leads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the lead repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InTx runs fn inside a single transaction, rolling back on any error.
func (r *Repository) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const leadColumns = `id, first_name, last_name, email, phone, company, source, status, owner_id,
	converted_account_id, converted_contact_id, converted_opportunity_id, deleted_at, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Company, &l.Source,
		&l.Status, &l.OwnerID, &l.ConvertedAccountID, &l.ConvertedContactID, &l.ConvertedOpportunityID,
		&l.DeletedAt, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return l, nil
}

// CreateLeadParams holds the fields for a new lead.
type CreateLeadParams struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Company   *string
	Source    *string
	Status    Status
	OwnerID   uuid.UUID
}

// Create inserts a new lead.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (first_name, last_name, email, phone, company, source, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+leadColumns,
		params.FirstName, params.LastName, params.Email, params.Phone,
		params.Company, params.Source, params.Status, params.OwnerID,
	))
}

// FindActive returns one non-deleted lead.
func (r *Repository) FindActive(ctx context.Context, q db.Querier, id uuid.UUID) (Lead, error) {
	if q == nil {
		q = r.pool
	}
	return scanLead(q.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1 AND deleted_at IS NULL
	`, id))
}

// ListFilter narrows lead queries.
type ListFilter struct {
	Status  *Status
	OwnerID *uuid.UUID
	Limit   int
}

// List returns non-deleted leads, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Lead, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE deleted_at IS NULL
		  AND ($1::text IS NULL OR status = $1)
		  AND ($2::uuid IS NULL OR owner_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, filter.Status, filter.OwnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		var l Lead
		if err := rows.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Company, &l.Source,
			&l.Status, &l.OwnerID, &l.ConvertedAccountID, &l.ConvertedContactID, &l.ConvertedOpportunityID,
			&l.DeletedAt, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// UpdateLeadParams holds partial lead edits; nil fields stay untouched.
type UpdateLeadParams struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Company   *string
	Source    *string
	Status    *Status
}

// Update applies partial edits to a non-deleted lead.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			phone = COALESCE($5, phone),
			company = COALESCE($6, company),
			source = COALESCE($7, source),
			status = COALESCE($8, status),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, params.FirstName, params.LastName, params.Email, params.Phone,
		params.Company, params.Source, params.Status,
	))
}

// MarkConverted flips the lead to CONVERTED and records what it became. It
// runs on the conversion transaction's Querier.
func (r *Repository) MarkConverted(ctx context.Context, q db.Querier, id, accountID, contactID uuid.UUID) (Lead, error) {
	if q == nil {
		q = r.pool
	}
	return scanLead(q.QueryRow(ctx, `
		UPDATE leads SET
			status = $2,
			converted_account_id = $3,
			converted_contact_id = $4,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, StatusConverted, accountID, contactID,
	))
}

// SetConvertedOpportunity links the deal created from this lead.
func (r *Repository) SetConvertedOpportunity(ctx context.Context, id, opportunityID uuid.UUID) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET converted_opportunity_id = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, opportunityID,
	))
}

// SoftDelete marks a lead deleted.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
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
