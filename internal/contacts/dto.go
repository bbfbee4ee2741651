package contacts

import "github.com/google/uuid"

// CreateContactRequest is the payload for creating a contact.
type CreateContactRequest struct {
	FirstName string     `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string     `json:"lastName" validate:"required,min=1,max=100"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	AccountID *uuid.UUID `json:"accountId,omitempty"`
}

// UpdateContactRequest is the partial-update payload for a contact.
type UpdateContactRequest struct {
	FirstName *string    `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string    `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	AccountID *uuid.UUID `json:"accountId,omitempty"`
}
