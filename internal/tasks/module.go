package tasks

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the tasks module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates and wires the tasks module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{
		repo:    repo,
		handler: NewHandler(NewService(repo), val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tasks"
}

// Repository exposes the task repository for stage-change automation.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts task routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/tasks"))
}

var _ apphttp.Module = (*Module)(nil)
