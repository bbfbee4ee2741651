package pipeline

// CreateStageRequest is the payload for adding a pipeline stage.
type CreateStageRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	SortOrder   int    `json:"sortOrder" validate:"min=0"`
	Probability int    `json:"probability" validate:"min=0,max=100"`
	IsWon       bool   `json:"isWon"`
	IsLost      bool   `json:"isLost"`
}

// UpdateStageRequest is the partial-update payload for a stage.
type UpdateStageRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	SortOrder   *int    `json:"sortOrder,omitempty" validate:"omitempty,min=0"`
	Probability *int    `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	IsWon       *bool   `json:"isWon,omitempty"`
	IsLost      *bool   `json:"isLost,omitempty"`
}
