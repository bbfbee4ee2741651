// Package audit implements the append-only audit trail. Every mutating
// operation on a tracked entity records exactly one entry here; entries are
// never updated or deleted from application code.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of mutation an entry records.
type Action string

const (
	ActionCreate      Action = "CREATE"
	ActionUpdate      Action = "UPDATE"
	ActionDelete      Action = "DELETE"
	ActionStageChange Action = "STAGE_CHANGE"
)

// ChangeKind discriminates the shapes a Changes value can take.
type ChangeKind string

const (
	// ChangeKindRaw carries the raw request payload of a plain CRUD mutation.
	ChangeKindRaw ChangeKind = "raw"
	// ChangeKindStageTransition carries the old and new stage ids of a
	// stage-changing update.
	ChangeKindStageTransition ChangeKind = "stageTransition"
)

// Changes is the tagged union stored in the entry's changes column. All
// variants serialize into the same opaque JSONB column but stay typed in Go.
type Changes struct {
	Kind    ChangeKind
	Payload json.RawMessage // ChangeKindRaw
	From    uuid.UUID       // ChangeKindStageTransition
	To      uuid.UUID       // ChangeKindStageTransition
}

// Raw builds a raw-payload Changes from any JSON-serializable value.
// Payloads are validated DTOs, so marshalling cannot realistically fail; a
// failure is still surfaced rather than silently dropped.
func Raw(payload any) (*Changes, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return &Changes{Kind: ChangeKindRaw, Payload: data}, nil
}

// StageTransition builds a stage-transition Changes.
func StageTransition(from, to uuid.UUID) *Changes {
	return &Changes{Kind: ChangeKindStageTransition, From: from, To: to}
}

type rawChangesJSON struct {
	Kind    ChangeKind      `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	From    *uuid.UUID      `json:"from,omitempty"`
	To      *uuid.UUID      `json:"to,omitempty"`
}

// MarshalJSON serializes the union with its discriminator.
func (c Changes) MarshalJSON() ([]byte, error) {
	out := rawChangesJSON{Kind: c.Kind}
	switch c.Kind {
	case ChangeKindStageTransition:
		from, to := c.From, c.To
		out.From = &from
		out.To = &to
	default:
		out.Payload = c.Payload
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the union from its stored form.
func (c *Changes) UnmarshalJSON(data []byte) error {
	var in rawChangesJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Kind = in.Kind
	c.Payload = in.Payload
	if in.From != nil {
		c.From = *in.From
	}
	if in.To != nil {
		c.To = *in.To
	}
	return nil
}

// Entry is one immutable audit record. It outlives the entity it describes:
// soft-deleting or even hard-deleting an opportunity leaves its history intact.
type Entry struct {
	ID            uuid.UUID  `json:"id"`
	EntityType    string     `json:"entityType"`
	EntityID      uuid.UUID  `json:"entityId"`
	Action        Action     `json:"action"`
	ActorID       *uuid.UUID `json:"actorId,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	Changes       *Changes   `json:"changes"`
	CreatedAt     time.Time  `json:"createdAt"`
}
