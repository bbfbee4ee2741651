package contacts

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contacts module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates and wires the contacts module.
func NewModule(pool *pgxpool.Pool, accountReader AccountReader, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{
		repo:    repo,
		handler: NewHandler(NewService(repo, accountReader), val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contacts"
}

// Repository exposes the contact repository for cross-module lookups.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts contact routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/contacts"))
}

var _ apphttp.Module = (*Module)(nil)
