// Package repository persists opportunities and provides the transactional
// unit of work the lifecycle engine runs inside.
package repository

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/internal/opportunities/domain"
	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an opportunity does not exist or is soft-deleted.
var ErrNotFound = errors.New("opportunity not found")

// Opportunity is one deal moving through the pipeline.
type Opportunity struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	AccountID         uuid.UUID        `json:"accountId"`
	OwnerID           uuid.UUID        `json:"ownerId"`
	StageID           uuid.UUID        `json:"stageId"`
	ContactID         *uuid.UUID       `json:"contactId,omitempty"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	Currency          string           `json:"currency"`
	Probability       *int             `json:"probability,omitempty"`
	Status            domain.Status    `json:"status"`
	ExpectedCloseDate *time.Time       `json:"expectedCloseDate,omitempty"`
	Description       *string          `json:"description,omitempty"`
	LostReason        *string          `json:"lostReason,omitempty"`
	DeletedAt         *time.Time       `json:"deletedAt,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// AccountSummary is the joined account slice of a read model.
type AccountSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// OwnerSummary is the joined owner slice of a read model.
type OwnerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// StageSummary is the joined stage slice of a read model.
type StageSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Probability int       `json:"probability"`
	IsWon       bool      `json:"isWon"`
	IsLost      bool      `json:"isLost"`
}

// ContactSummary is the joined contact slice of a read model.
type ContactSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     *string   `json:"email,omitempty"`
}

// Joined is an opportunity with its references resolved, the read-after-write
// shape returned to callers.
type Joined struct {
	Opportunity
	Account AccountSummary  `json:"account"`
	Owner   OwnerSummary    `json:"owner"`
	Stage   StageSummary    `json:"stage"`
	Contact *ContactSummary `json:"contact,omitempty"`
}

// Repository persists opportunities.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the opportunity repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InTx runs fn inside a single transaction, rolling back on any error. The
// engine wraps persist, automation, and audit in one call so a stage change is
// never visible without its activity, task, and audit entry.
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

// amount is selected as text and parsed, so money never passes through a
// binary float.
const opportunityColumns = `id, name, account_id, owner_id, stage_id, contact_id, amount::text, currency,
	probability, status, expected_close_date, description, lost_reason, deleted_at, created_at, updated_at`

func scanOpportunity(row pgx.Row) (Opportunity, error) {
	var (
		o      Opportunity
		amount *string
	)
	err := row.Scan(&o.ID, &o.Name, &o.AccountID, &o.OwnerID, &o.StageID, &o.ContactID,
		&amount, &o.Currency, &o.Probability, &o.Status, &o.ExpectedCloseDate,
		&o.Description, &o.LostReason, &o.DeletedAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Opportunity{}, ErrNotFound
	}
	if err != nil {
		return Opportunity{}, err
	}
	if amount != nil {
		parsed, err := decimal.NewFromString(*amount)
		if err != nil {
			return Opportunity{}, err
		}
		o.Amount = &parsed
	}
	return o, nil
}

func amountArg(amount *decimal.Decimal) *string {
	if amount == nil {
		return nil
	}
	s := amount.String()
	return &s
}

// CreateParams holds the fields for a new opportunity, already validated and
// defaulted by the engine.
type CreateParams struct {
	Name              string
	AccountID         uuid.UUID
	OwnerID           uuid.UUID
	StageID           uuid.UUID
	ContactID         *uuid.UUID
	Amount            *decimal.Decimal
	Currency          string
	Probability       *int
	Status            domain.Status
	ExpectedCloseDate *time.Time
	Description       *string
}

// Create inserts a new opportunity on the given Querier.
func (r *Repository) Create(ctx context.Context, q db.Querier, params CreateParams) (Opportunity, error) {
	if q == nil {
		q = r.pool
	}
	return scanOpportunity(q.QueryRow(ctx, `
		INSERT INTO opportunities (name, account_id, owner_id, stage_id, contact_id, amount, currency,
			probability, status, expected_close_date, description)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11)
		RETURNING `+opportunityColumns,
		params.Name, params.AccountID, params.OwnerID, params.StageID, params.ContactID,
		amountArg(params.Amount), params.Currency, params.Probability, params.Status,
		params.ExpectedCloseDate, params.Description,
	))
}

// FindActive returns one non-deleted opportunity.
func (r *Repository) FindActive(ctx context.Context, q db.Querier, id uuid.UUID) (Opportunity, error) {
	if q == nil {
		q = r.pool
	}
	return scanOpportunity(q.QueryRow(ctx, `
		SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1 AND deleted_at IS NULL
	`, id))
}

// UpdateParams is the full post-merge row state. The engine merges the partial
// payload against the loaded row before calling Update, so every column is
// written; partial semantics live upstream where absent and null can still be
// told apart.
type UpdateParams struct {
	Name              string
	AccountID         uuid.UUID
	OwnerID           uuid.UUID
	StageID           uuid.UUID
	ContactID         *uuid.UUID
	Amount            *decimal.Decimal
	Currency          string
	Probability       *int
	Status            domain.Status
	ExpectedCloseDate *time.Time
	Description       *string
	LostReason        *string
}

// Update rewrites a non-deleted opportunity on the given Querier.
func (r *Repository) Update(ctx context.Context, q db.Querier, id uuid.UUID, params UpdateParams) (Opportunity, error) {
	if q == nil {
		q = r.pool
	}
	return scanOpportunity(q.QueryRow(ctx, `
		UPDATE opportunities SET
			name = $2,
			account_id = $3,
			owner_id = $4,
			stage_id = $5,
			contact_id = $6,
			amount = $7::numeric,
			currency = $8,
			probability = $9,
			status = $10,
			expected_close_date = $11,
			description = $12,
			lost_reason = $13,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+opportunityColumns,
		id, params.Name, params.AccountID, params.OwnerID, params.StageID, params.ContactID,
		amountArg(params.Amount), params.Currency, params.Probability, params.Status,
		params.ExpectedCloseDate, params.Description, params.LostReason,
	))
}

// SoftDelete marks an opportunity deleted and archives its status. Dependent
// activities, tasks, and audit entries are left untouched.
func (r *Repository) SoftDelete(ctx context.Context, q db.Querier, id uuid.UUID) error {
	if q == nil {
		q = r.pool
	}
	tag, err := q.Exec(ctx, `
		UPDATE opportunities SET deleted_at = now(), status = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, domain.StatusArchived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const joinedQuery = `
	SELECT o.id, o.name, o.account_id, o.owner_id, o.stage_id, o.contact_id, o.amount::text, o.currency,
		o.probability, o.status, o.expected_close_date, o.description, o.lost_reason,
		o.deleted_at, o.created_at, o.updated_at,
		a.name,
		u.name, u.email,
		s.name, s.probability, s.is_won, s.is_lost,
		c.first_name, c.last_name, c.email
	FROM opportunities o
	JOIN accounts a ON a.id = o.account_id
	JOIN users u ON u.id = o.owner_id
	JOIN pipeline_stages s ON s.id = o.stage_id
	LEFT JOIN contacts c ON c.id = o.contact_id`

func scanJoined(row pgx.Row) (Joined, error) {
	var (
		j            Joined
		amount       *string
		contactFirst *string
		contactLast  *string
		contactEmail *string
	)
	err := row.Scan(&j.ID, &j.Name, &j.AccountID, &j.OwnerID, &j.StageID, &j.ContactID,
		&amount, &j.Currency, &j.Probability, &j.Status, &j.ExpectedCloseDate,
		&j.Description, &j.LostReason, &j.DeletedAt, &j.CreatedAt, &j.UpdatedAt,
		&j.Account.Name,
		&j.Owner.Name, &j.Owner.Email,
		&j.Stage.Name, &j.Stage.Probability, &j.Stage.IsWon, &j.Stage.IsLost,
		&contactFirst, &contactLast, &contactEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return Joined{}, ErrNotFound
	}
	if err != nil {
		return Joined{}, err
	}

	if amount != nil {
		parsed, err := decimal.NewFromString(*amount)
		if err != nil {
			return Joined{}, err
		}
		j.Amount = &parsed
	}
	j.Account.ID = j.AccountID
	j.Owner.ID = j.OwnerID
	j.Stage.ID = j.StageID
	if j.ContactID != nil {
		contact := ContactSummary{ID: *j.ContactID, Email: contactEmail}
		if contactFirst != nil {
			contact.FirstName = *contactFirst
		}
		if contactLast != nil {
			contact.LastName = *contactLast
		}
		j.Contact = &contact
	}
	return j, nil
}

// GetJoined returns one non-deleted opportunity with account, owner, stage,
// and contact resolved.
func (r *Repository) GetJoined(ctx context.Context, q db.Querier, id uuid.UUID) (Joined, error) {
	if q == nil {
		q = r.pool
	}
	return scanJoined(q.QueryRow(ctx, joinedQuery+`
		WHERE o.id = $1 AND o.deleted_at IS NULL
	`, id))
}

// ListFilter narrows opportunity queries.
type ListFilter struct {
	AccountID *uuid.UUID
	OwnerID   *uuid.UUID
	StageID   *uuid.UUID
	Status    *domain.Status
	Limit     int
}

// List returns non-deleted opportunities with references resolved, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Joined, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, joinedQuery+`
		WHERE o.deleted_at IS NULL
		  AND ($1::uuid IS NULL OR o.account_id = $1)
		  AND ($2::uuid IS NULL OR o.owner_id = $2)
		  AND ($3::uuid IS NULL OR o.stage_id = $3)
		  AND ($4::text IS NULL OR o.status = $4)
		ORDER BY o.created_at DESC
		LIMIT $5
	`, filter.AccountID, filter.OwnerID, filter.StageID, filter.Status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Joined, 0)
	for rows.Next() {
		j, err := scanJoined(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, j)
	}
	return items, rows.Err()
}
