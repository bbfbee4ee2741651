// Package adapters bridges module ports whose shapes don't line up with an
// existing repository or service method.
package adapters

import (
	"context"

	"salesdesk_backend/internal/leads"
	"salesdesk_backend/internal/opportunities/service"
	"salesdesk_backend/internal/opportunities/transport"

	"github.com/google/uuid"
)

// LeadOpportunityCreator opens deals for converted leads through the
// opportunity lifecycle engine, so conversion inherits its referential
// validation, CREATE audit entry, and stage-derived status.
type LeadOpportunityCreator struct {
	engine *service.Service
}

// NewLeadOpportunityCreator creates the adapter.
func NewLeadOpportunityCreator(engine *service.Service) *LeadOpportunityCreator {
	return &LeadOpportunityCreator{engine: engine}
}

// CreateFromLead opens the deal and returns its id.
func (a *LeadOpportunityCreator) CreateFromLead(ctx context.Context, in leads.NewOpportunity) (uuid.UUID, error) {
	contactID := in.ContactID
	joined, err := a.engine.Create(ctx, transport.CreateOpportunityRequest{
		Name:              in.Name,
		AccountID:         in.AccountID,
		OwnerID:           in.OwnerID,
		StageID:           in.StageID,
		ContactID:         &contactID,
		Amount:            in.Amount,
		ExpectedCloseDate: in.CloseDate,
	}, in.ActorID)
	if err != nil {
		return uuid.Nil, err
	}
	return joined.ID, nil
}

var _ leads.OpportunityCreator = (*LeadOpportunityCreator)(nil)
