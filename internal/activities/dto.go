package activities

import (
	"time"

	"github.com/google/uuid"
)

// CreateActivityRequest is the payload for logging an activity.
type CreateActivityRequest struct {
	Type          Type       `json:"type" validate:"required,oneof=CALL EMAIL MEETING NOTE"`
	Subject       string     `json:"subject" validate:"required,min=1,max=200"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	OccurredAt    *time.Time `json:"occurredAt,omitempty"`
	OwnerID       uuid.UUID  `json:"ownerId" validate:"required"`
	AccountID     *uuid.UUID `json:"accountId,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	ContactID     *uuid.UUID `json:"contactId,omitempty"`
}
