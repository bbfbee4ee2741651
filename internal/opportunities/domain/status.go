// Package domain holds the pure rules of the opportunity pipeline.
package domain

// Status is an opportunity's lifecycle state.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusWon      Status = "WON"
	StatusLost     Status = "LOST"
	StatusArchived Status = "ARCHIVED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusWon, StatusLost, StatusArchived:
		return true
	}
	return false
}

// StageFlags are the terminal-outcome flags of a pipeline stage.
type StageFlags struct {
	IsWon  bool
	IsLost bool
}

// InferStatus derives an opportunity's status from the stage it is entering.
// An explicit status always wins over inference. Callers invoke this on
// creation and on every update that changes the stage id; an update that
// leaves the stage alone must not call it, so an unrelated edit never flips a
// terminal status back to OPEN.
func InferStatus(explicit *Status, stage StageFlags) Status {
	if explicit != nil {
		return *explicit
	}
	if stage.IsWon {
		return StatusWon
	}
	if stage.IsLost {
		return StatusLost
	}
	return StatusOpen
}
