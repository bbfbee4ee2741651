package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AppendParams describes one entry to record.
type AppendParams struct {
	EntityType    string
	EntityID      uuid.UUID
	Action        Action
	ActorID       *uuid.UUID
	OpportunityID *uuid.UUID
	Changes       *Changes
}

// Repository persists audit entries. Append takes an explicit Querier so the
// write can join the caller's transaction; there is no update or delete path.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the audit repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append records one immutable entry using the given Querier (pool or tx).
// A nil Changes is stored as an explicit JSON null, not SQL NULL, so "no diff
// captured" stays distinguishable from a column that was never written.
func (r *Repository) Append(ctx context.Context, q db.Querier, params AppendParams) (Entry, error) {
	changesJSON := []byte("null")
	if params.Changes != nil {
		data, err := json.Marshal(params.Changes)
		if err != nil {
			return Entry{}, fmt.Errorf("serialize audit changes: %w", err)
		}
		changesJSON = data
	}

	var entry Entry
	err := q.QueryRow(ctx, `
		INSERT INTO audit_log_entries (entity_type, entity_id, action, actor_id, opportunity_id, changes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, entity_type, entity_id, action, actor_id, opportunity_id, created_at
	`, params.EntityType, params.EntityID, params.Action, params.ActorID, params.OpportunityID, changesJSON).Scan(
		&entry.ID, &entry.EntityType, &entry.EntityID, &entry.Action,
		&entry.ActorID, &entry.OpportunityID, &entry.CreatedAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("append audit entry: %w", err)
	}

	// changes is excluded from RETURNING: the caller already holds the typed
	// value and re-scanning the stored JSONB would just add a redundant
	// json.Unmarshal on every insert.
	entry.Changes = params.Changes
	return entry, nil
}

// ListFilter narrows history queries.
type ListFilter struct {
	EntityType string
	EntityID   *uuid.UUID
	Limit      int
}

// List returns entries newest first, optionally filtered by entity.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, action, actor_id, opportunity_id, changes, created_at
		FROM audit_log_entries
		WHERE ($1 = '' OR entity_type = $1)
		  AND ($2::uuid IS NULL OR entity_id = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, filter.EntityType, filter.EntityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByOpportunity returns the full history of one deal, newest first, via
// the denormalized opportunity back-reference.
func (r *Repository) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, action, actor_id, opportunity_id, changes, created_at
		FROM audit_log_entries
		WHERE opportunity_id = $1
		ORDER BY created_at DESC, id DESC
	`, opportunityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

type entryRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEntries(rows entryRows) ([]Entry, error) {
	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			entry       Entry
			changesJSON []byte
			createdAt   time.Time
		)
		if err := rows.Scan(
			&entry.ID, &entry.EntityType, &entry.EntityID, &entry.Action,
			&entry.ActorID, &entry.OpportunityID, &changesJSON, &createdAt,
		); err != nil {
			return nil, err
		}
		entry.CreatedAt = createdAt

		// JSON null in the column round-trips to a nil Changes.
		if len(changesJSON) > 0 && string(changesJSON) != "null" {
			var changes Changes
			if err := json.Unmarshal(changesJSON, &changes); err != nil {
				return nil, fmt.Errorf("decode audit changes: %w", err)
			}
			entry.Changes = &changes
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
