package users

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the users module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates and wires the users module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		repo:    repo,
		handler: NewHandler(NewService(repo, cfg, log), val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "users"
}

// Repository exposes the user repository for cross-module lookups.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts auth routes publicly (rate limited) and user routes
// on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterAuthRoutes(authGroup)

	m.handler.RegisterRoutes(ctx.Protected.Group("/users"))
}

var _ apphttp.Module = (*Module)(nil)
