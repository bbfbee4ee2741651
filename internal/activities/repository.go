// Package activities provides activity logging: calls, emails, meetings, and
// notes attached to accounts, contacts, and opportunities.
package activities

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an activity does not exist.
var ErrNotFound = errors.New("activity not found")

// Type identifies the kind of activity.
type Type string

const (
	TypeCall    Type = "CALL"
	TypeEmail   Type = "EMAIL"
	TypeMeeting Type = "MEETING"
	TypeNote    Type = "NOTE"
)

// Activity is one logged touchpoint.
type Activity struct {
	ID            uuid.UUID  `json:"id"`
	Type          Type       `json:"type"`
	Subject       string     `json:"subject"`
	Description   *string    `json:"description,omitempty"`
	OccurredAt    time.Time  `json:"occurredAt"`
	OwnerID       uuid.UUID  `json:"ownerId"`
	AccountID     *uuid.UUID `json:"accountId,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	ContactID     *uuid.UUID `json:"contactId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Repository persists activities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the activity repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const activityColumns = `id, type, subject, description, occurred_at, owner_id, account_id, opportunity_id, contact_id, created_at, updated_at`

func scanActivity(row pgx.Row) (Activity, error) {
	var a Activity
	err := row.Scan(&a.ID, &a.Type, &a.Subject, &a.Description, &a.OccurredAt,
		&a.OwnerID, &a.AccountID, &a.OpportunityID, &a.ContactID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Activity{}, ErrNotFound
	}
	if err != nil {
		return Activity{}, err
	}
	return a, nil
}

// CreateActivityParams holds the fields for a new activity.
type CreateActivityParams struct {
	Type          Type
	Subject       string
	Description   *string
	OccurredAt    time.Time
	OwnerID       uuid.UUID
	AccountID     *uuid.UUID
	OpportunityID *uuid.UUID
	ContactID     *uuid.UUID
}

// Create inserts a new activity. It accepts a Querier so stage-change
// automation can create the note inside the engine's transaction.
func (r *Repository) Create(ctx context.Context, q db.Querier, params CreateActivityParams) (Activity, error) {
	if q == nil {
		q = r.pool
	}
	return scanActivity(q.QueryRow(ctx, `
		INSERT INTO activities (type, subject, description, occurred_at, owner_id, account_id, opportunity_id, contact_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+activityColumns,
		params.Type, params.Subject, params.Description, params.OccurredAt,
		params.OwnerID, params.AccountID, params.OpportunityID, params.ContactID,
	))
}

// GetByID returns one activity.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Activity, error) {
	return scanActivity(r.pool.QueryRow(ctx, `
		SELECT `+activityColumns+` FROM activities WHERE id = $1
	`, id))
}

// ListFilter narrows activity queries.
type ListFilter struct {
	OpportunityID *uuid.UUID
	AccountID     *uuid.UUID
	Limit         int
}

// List returns activities newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Activity, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+activityColumns+` FROM activities
		WHERE ($1::uuid IS NULL OR opportunity_id = $1)
		  AND ($2::uuid IS NULL OR account_id = $2)
		ORDER BY occurred_at DESC
		LIMIT $3
	`, filter.OpportunityID, filter.AccountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.Subject, &a.Description, &a.OccurredAt,
			&a.OwnerID, &a.AccountID, &a.OpportunityID, &a.ContactID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// Delete removes an activity.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
