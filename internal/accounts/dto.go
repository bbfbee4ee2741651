package accounts

// CreateAccountRequest is the payload for creating an account.
type CreateAccountRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=100"`
	Website  *string `json:"website,omitempty" validate:"omitempty,url,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// UpdateAccountRequest is the partial-update payload for an account.
type UpdateAccountRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=100"`
	Website  *string `json:"website,omitempty" validate:"omitempty,url,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}
