// Package tasks provides follow-up task management.
package tasks

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

// Status is a task's lifecycle state.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Priority ranks a task's urgency.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Task is one follow-up item assigned to a user.
type Task struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	Status        Status     `json:"status"`
	Priority      Priority   `json:"priority"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	OwnerID       uuid.UUID  `json:"ownerId"`
	AccountID     *uuid.UUID `json:"accountId,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	ContactID     *uuid.UUID `json:"contactId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Repository persists tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the task repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, title, description, status, priority, due_date, owner_id, account_id, opportunity_id, contact_id, created_at, updated_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
		&t.OwnerID, &t.AccountID, &t.OpportunityID, &t.ContactID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

// CreateTaskParams holds the fields for a new task.
type CreateTaskParams struct {
	Title         string
	Description   *string
	Status        Status
	Priority      Priority
	DueDate       *time.Time
	OwnerID       uuid.UUID
	AccountID     *uuid.UUID
	OpportunityID *uuid.UUID
	ContactID     *uuid.UUID
}

// Create inserts a new task. It accepts a Querier so stage-change automation
// can create the follow-up inside the engine's transaction.
func (r *Repository) Create(ctx context.Context, q db.Querier, params CreateTaskParams) (Task, error) {
	if q == nil {
		q = r.pool
	}
	return scanTask(q.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, priority, due_date, owner_id, account_id, opportunity_id, contact_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+taskColumns,
		params.Title, params.Description, params.Status, params.Priority, params.DueDate,
		params.OwnerID, params.AccountID, params.OpportunityID, params.ContactID,
	))
}

// GetByID returns one task.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, id))
}

// ListFilter narrows task queries.
type ListFilter struct {
	OpportunityID *uuid.UUID
	OwnerID       *uuid.UUID
	Status        *Status
	Limit         int
}

// List returns tasks ordered by due date, soonest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE ($1::uuid IS NULL OR opportunity_id = $1)
		  AND ($2::uuid IS NULL OR owner_id = $2)
		  AND ($3::text IS NULL OR status = $3)
		ORDER BY due_date ASC NULLS LAST, created_at DESC
		LIMIT $4
	`, filter.OpportunityID, filter.OwnerID, filter.Status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
			&t.OwnerID, &t.AccountID, &t.OpportunityID, &t.ContactID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// UpdateTaskParams holds partial task edits; nil fields stay untouched.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
}

// Update applies partial edits to a task.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			status = COALESCE($4, status),
			priority = COALESCE($5, priority),
			due_date = COALESCE($6, due_date),
			updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		id, params.Title, params.Description, params.Status, params.Priority, params.DueDate,
	))
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
