package events

import (
	platformevents "salesdesk_backend/platform/events"

	"github.com/google/uuid"
)

// Event is a type alias to the platform Event interface.
type Event = platformevents.Event

// HandlerFunc is a type alias to the platform HandlerFunc adapter.
type HandlerFunc = platformevents.HandlerFunc

// BaseEvent is a type alias to the platform BaseEvent.
type BaseEvent = platformevents.BaseEvent

// NewBaseEvent creates a base event stamped with the current time.
var NewBaseEvent = platformevents.NewBaseEvent

// OpportunityCreated is published after a new opportunity is committed.
type OpportunityCreated struct {
	BaseEvent
	OpportunityID uuid.UUID
	AccountID     uuid.UUID
	OwnerID       uuid.UUID
}

// EventName returns the unique event identifier.
func (OpportunityCreated) EventName() string { return "opportunity.created" }

// OpportunityStageChanged is published after a stage transition, its
// automation records, and its audit entry have all been committed.
type OpportunityStageChanged struct {
	BaseEvent
	OpportunityID uuid.UUID
	FromStageID   uuid.UUID
	ToStageID     uuid.UUID
	StageName     string
	Status        string
}

// EventName returns the unique event identifier.
func (OpportunityStageChanged) EventName() string { return "opportunity.stage_changed" }
