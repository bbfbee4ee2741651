// Package opportunities wires the opportunity lifecycle engine: repository,
// engine service, and HTTP handler.
package opportunities

import (
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/opportunities/handler"
	"salesdesk_backend/internal/opportunities/repository"
	"salesdesk_backend/internal/opportunities/service"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the opportunities module implementing http.Module.
type Module struct {
	svc     *service.Service
	handler *handler.Handler
}

// NewModule creates and wires the opportunities module. Collaborators are the
// repositories of the modules owning each entity.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, collab service.Collaborators, history handler.HistoryReader, bus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, collab, bus)
	return &Module{
		svc:     svc,
		handler: handler.New(svc, history, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "opportunities"
}

// Service exposes the lifecycle engine for lead conversion.
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts opportunity routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/opportunities"))
}

var _ apphttp.Module = (*Module)(nil)
