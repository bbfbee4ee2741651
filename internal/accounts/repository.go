// Package accounts provides company account management.
package accounts

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an account does not exist or is soft-deleted.
var ErrNotFound = errors.New("account not found")

// Account is a company a deal is done with.
type Account struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Industry  *string    `json:"industry,omitempty"`
	Website   *string    `json:"website,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Repository persists accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the account repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, name, industry, website, phone, deleted_at, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Industry, &a.Website, &a.Phone, &a.DeletedAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// CreateAccountParams holds the fields for a new account.
type CreateAccountParams struct {
	Name     string
	Industry *string
	Website  *string
	Phone    *string
}

// Create inserts a new account. It accepts a Querier so lead conversion can
// create the account inside its transaction.
func (r *Repository) Create(ctx context.Context, q db.Querier, params CreateAccountParams) (Account, error) {
	if q == nil {
		q = r.pool
	}
	return scanAccount(q.QueryRow(ctx, `
		INSERT INTO accounts (name, industry, website, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		params.Name, params.Industry, params.Website, params.Phone,
	))
}

// FindActive returns one non-deleted account. It accepts a Querier so lookups
// can run inside a caller's transaction.
func (r *Repository) FindActive(ctx context.Context, q db.Querier, id uuid.UUID) (Account, error) {
	if q == nil {
		q = r.pool
	}
	return scanAccount(q.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND deleted_at IS NULL
	`, id))
}

// List returns non-deleted accounts, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Account, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Account, 0)
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Industry, &a.Website, &a.Phone, &a.DeletedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// UpdateAccountParams holds partial account edits; nil fields stay untouched.
type UpdateAccountParams struct {
	Name     *string
	Industry *string
	Website  *string
	Phone    *string
}

// Update applies partial edits to a non-deleted account.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateAccountParams) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		UPDATE accounts SET
			name = COALESCE($2, name),
			industry = COALESCE($3, industry),
			website = COALESCE($4, website),
			phone = COALESCE($5, phone),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+accountColumns,
		id, params.Name, params.Industry, params.Website, params.Phone,
	))
}

// SoftDelete marks an account deleted, keeping it for history queries.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET deleted_at = now(), updated_at = now()
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
