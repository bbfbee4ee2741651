package transport

import (
	"time"

	"salesdesk_backend/internal/opportunities/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOpportunityRequest is the payload for opening a deal.
type CreateOpportunityRequest struct {
	Name              string           `json:"name" validate:"required,min=1,max=200"`
	AccountID         uuid.UUID        `json:"accountId" validate:"required"`
	OwnerID           uuid.UUID        `json:"ownerId" validate:"required"`
	StageID           uuid.UUID        `json:"stageId" validate:"required"`
	ContactID         *uuid.UUID       `json:"contactId,omitempty"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	Currency          *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Probability       *int             `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	Status            *domain.Status   `json:"status,omitempty" validate:"omitempty,oneof=OPEN WON LOST ARCHIVED"`
	ExpectedCloseDate *time.Time       `json:"expectedCloseDate,omitempty"`
	Description       *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// UpdateOpportunityRequest is the partial-update payload for a deal. Every
// field is optional: absent leaves the stored value alone, explicit null
// clears a nullable field. Required references reject null in the service.
type UpdateOpportunityRequest struct {
	Name              OptionalString  `json:"name,omitzero"`
	AccountID         OptionalUUID    `json:"accountId,omitzero"`
	OwnerID           OptionalUUID    `json:"ownerId,omitzero"`
	StageID           OptionalUUID    `json:"stageId,omitzero"`
	ContactID         OptionalUUID    `json:"contactId,omitzero"`
	Amount            OptionalDecimal `json:"amount,omitzero"`
	Currency          OptionalString  `json:"currency,omitzero"`
	Probability       OptionalInt     `json:"probability,omitzero"`
	Status            OptionalStatus  `json:"status,omitzero"`
	ExpectedCloseDate OptionalTime    `json:"expectedCloseDate,omitzero"`
	Description       OptionalString  `json:"description,omitzero"`
	LostReason        OptionalString  `json:"lostReason,omitzero"`
}
