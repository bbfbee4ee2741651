package pipeline

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the pipeline stage catalog module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates and wires the pipeline module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo)
	return &Module{
		repo:    repo,
		handler: NewHandler(svc, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Repository exposes the stage repository for the opportunity engine's
// stage lookups.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts pipeline routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/pipeline-stages"))
}

var _ apphttp.Module = (*Module)(nil)
