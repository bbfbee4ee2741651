// Package pipeline provides the pipeline stage catalog: the ordered set of
// stages an opportunity moves through, each with a default win probability and
// optional terminal outcome flag.
package pipeline

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a stage does not exist.
var ErrNotFound = errors.New("pipeline stage not found")

// Stage is one position in the sales pipeline.
type Stage struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	SortOrder   int       `json:"sortOrder"`
	Probability int       `json:"probability"`
	IsWon       bool      `json:"isWon"`
	IsLost      bool      `json:"isLost"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Repository persists pipeline stages.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the stage repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const stageColumns = `id, name, sort_order, probability, is_won, is_lost, created_at, updated_at`

func scanStage(row pgx.Row) (Stage, error) {
	var s Stage
	err := row.Scan(&s.ID, &s.Name, &s.SortOrder, &s.Probability, &s.IsWon, &s.IsLost, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Stage{}, ErrNotFound
	}
	if err != nil {
		return Stage{}, err
	}
	return s, nil
}

// CreateStageParams holds the fields for a new stage.
type CreateStageParams struct {
	Name        string
	SortOrder   int
	Probability int
	IsWon       bool
	IsLost      bool
}

// Create inserts a new stage.
func (r *Repository) Create(ctx context.Context, params CreateStageParams) (Stage, error) {
	return scanStage(r.pool.QueryRow(ctx, `
		INSERT INTO pipeline_stages (name, sort_order, probability, is_won, is_lost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+stageColumns,
		params.Name, params.SortOrder, params.Probability, params.IsWon, params.IsLost,
	))
}

// GetByID returns one stage. It accepts a Querier so the lifecycle engine can
// resolve stages inside its own transaction.
func (r *Repository) GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (Stage, error) {
	if q == nil {
		q = r.pool
	}
	return scanStage(q.QueryRow(ctx, `
		SELECT `+stageColumns+` FROM pipeline_stages WHERE id = $1
	`, id))
}

// List returns all stages in pipeline order.
func (r *Repository) List(ctx context.Context) ([]Stage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+stageColumns+` FROM pipeline_stages ORDER BY sort_order ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]Stage, 0)
	for rows.Next() {
		var s Stage
		if err := rows.Scan(&s.ID, &s.Name, &s.SortOrder, &s.Probability, &s.IsWon, &s.IsLost, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

// UpdateStageParams holds partial stage edits; nil fields stay untouched.
type UpdateStageParams struct {
	Name        *string
	SortOrder   *int
	Probability *int
	IsWon       *bool
	IsLost      *bool
}

// Update applies partial edits to a stage.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateStageParams) (Stage, error) {
	return scanStage(r.pool.QueryRow(ctx, `
		UPDATE pipeline_stages SET
			name = COALESCE($2, name),
			sort_order = COALESCE($3, sort_order),
			probability = COALESCE($4, probability),
			is_won = COALESCE($5, is_won),
			is_lost = COALESCE($6, is_lost),
			updated_at = now()
		WHERE id = $1
		RETURNING `+stageColumns,
		id, params.Name, params.SortOrder, params.Probability, params.IsWon, params.IsLost,
	))
}

// Delete removes a stage. Callers must check the referential guard first.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pipeline_stages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOpportunities returns how many opportunities (including soft-deleted
// ones, which still reference the stage) are attached to a stage.
func (r *Repository) CountOpportunities(ctx context.Context, stageID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM opportunities WHERE stage_id = $1
	`, stageID).Scan(&count)
	return count, err
}
