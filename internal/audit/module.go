package audit

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the audit trail module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates and wires the audit module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := New(pool)
	return &Module{
		repo:    repo,
		handler: NewHandler(repo, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// Repository exposes the audit repository for other modules' recorders.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts audit routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/audit-logs"))
}

var _ apphttp.Module = (*Module)(nil)
