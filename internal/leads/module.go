package leads

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and wires the leads module. The conversion collaborators
// come from the other modules' repositories and the opportunity engine.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, accountsPort AccountWriter, contactsPort ContactWriter, auditPort AuditAppender, opportunities OpportunityCreator) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, accountsPort, contactsPort, auditPort, opportunities)
	return &Module{handler: NewHandler(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts lead routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
