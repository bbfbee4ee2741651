package tasks

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title         string     `json:"title" validate:"required,min=1,max=200"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status        *Status    `json:"status,omitempty" validate:"omitempty,oneof=OPEN IN_PROGRESS DONE"`
	Priority      *Priority  `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	OwnerID       uuid.UUID  `json:"ownerId" validate:"required"`
	AccountID     *uuid.UUID `json:"accountId,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	ContactID     *uuid.UUID `json:"contactId,omitempty"`
}

// UpdateTaskRequest is the partial-update payload for a task.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *Status    `json:"status,omitempty" validate:"omitempty,oneof=OPEN IN_PROGRESS DONE"`
	Priority    *Priority  `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}
