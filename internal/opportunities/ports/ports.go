// Package ports declares the collaborator contracts the opportunity lifecycle
// engine consumes. The concrete repositories of the owning modules satisfy
// them directly; every method takes a Querier so lookups and writes can join
// the engine's transaction.
package ports

import (
	"context"

	"salesdesk_backend/internal/accounts"
	"salesdesk_backend/internal/activities"
	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/contacts"
	"salesdesk_backend/internal/pipeline"
	"salesdesk_backend/internal/tasks"
	"salesdesk_backend/internal/users"
	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
)

// AccountReader resolves non-deleted accounts.
type AccountReader interface {
	FindActive(ctx context.Context, q db.Querier, id uuid.UUID) (accounts.Account, error)
}

// UserReader resolves owners.
type UserReader interface {
	FindByID(ctx context.Context, q db.Querier, id uuid.UUID) (users.User, error)
}

// StageReader resolves pipeline stages.
type StageReader interface {
	GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (pipeline.Stage, error)
}

// ContactReader resolves non-deleted contacts.
type ContactReader interface {
	FindActive(ctx context.Context, q db.Querier, id uuid.UUID) (contacts.Contact, error)
}

// ActivityWriter creates the automation note.
type ActivityWriter interface {
	Create(ctx context.Context, q db.Querier, params activities.CreateActivityParams) (activities.Activity, error)
}

// TaskWriter creates the automation follow-up.
type TaskWriter interface {
	Create(ctx context.Context, q db.Querier, params tasks.CreateTaskParams) (tasks.Task, error)
}

// AuditAppender records one entry per mutation.
type AuditAppender interface {
	Append(ctx context.Context, q db.Querier, params audit.AppendParams) (audit.Entry, error)
}
