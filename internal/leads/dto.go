package leads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeadRequest is the payload for creating a lead.
type CreateLeadRequest struct {
	FirstName string    `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string    `json:"lastName" validate:"required,min=1,max=100"`
	Email     *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string   `json:"phone,omitempty" validate:"omitempty,max=32"`
	Company   *string   `json:"company,omitempty" validate:"omitempty,max=200"`
	Source    *string   `json:"source,omitempty" validate:"omitempty,max=100"`
	Status    *Status   `json:"status,omitempty" validate:"omitempty,oneof=NEW CONTACTED QUALIFIED DISQUALIFIED"`
	OwnerID   uuid.UUID `json:"ownerId" validate:"required"`
}

// UpdateLeadRequest is the partial-update payload for a lead. CONVERTED is
// reachable only through Convert, never through a plain update.
type UpdateLeadRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Company   *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Source    *string `json:"source,omitempty" validate:"omitempty,max=100"`
	Status    *Status `json:"status,omitempty" validate:"omitempty,oneof=NEW CONTACTED QUALIFIED DISQUALIFIED"`
}

// ConvertOpportunityRequest describes the deal to open during conversion.
type ConvertOpportunityRequest struct {
	Name      string           `json:"name" validate:"required,min=1,max=200"`
	StageID   uuid.UUID        `json:"stageId" validate:"required"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	CloseDate *time.Time       `json:"closeDate,omitempty"`
}

// ConvertLeadRequest is the payload for converting a lead. When AccountID is
// set the contact joins that existing account; otherwise a new account is
// created from the lead's company name.
type ConvertLeadRequest struct {
	AccountID   *uuid.UUID                 `json:"accountId,omitempty"`
	Opportunity *ConvertOpportunityRequest `json:"opportunity,omitempty"`
}

// ConvertLeadResponse reports everything conversion produced.
type ConvertLeadResponse struct {
	Lead          Lead       `json:"lead"`
	AccountID     uuid.UUID  `json:"accountId"`
	ContactID     uuid.UUID  `json:"contactId"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
}
