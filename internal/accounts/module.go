package accounts

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the accounts module implementing http.Module.
type Module struct {
	repo    *Repository
	svc     *Service
	handler *Handler
}

// NewModule creates and wires the accounts module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo)
	return &Module{
		repo:    repo,
		svc:     svc,
		handler: NewHandler(svc, val),
	}
}

// Service exposes the account service for cross-module reads.
func (m *Module) Service() *Service {
	return m.svc
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "accounts"
}

// Repository exposes the account repository for cross-module lookups.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts account routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/accounts"))
}

var _ apphttp.Module = (*Module)(nil)
