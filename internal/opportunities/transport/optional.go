// Package transport holds the opportunity wire types. The Optional wrappers
// keep partial-update semantics honest: an absent field is untouched, an
// explicit null clears, a value sets.
package transport

import (
	"encoding/json"
	"time"

	"salesdesk_backend/internal/opportunities/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OptionalUUID distinguishes an absent uuid field from an explicit null.
type OptionalUUID struct {
	Value *uuid.UUID
	Set   bool
}

func (o OptionalUUID) IsZero() bool {
	return !o.Set
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		if raw == "" {
			o.Value = nil
			return nil
		}

		parsed, err := uuid.Parse(raw)
		if err != nil {
			return err
		}

		o.Value = &parsed
		return nil
	}

	var parsed uuid.UUID
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}

	o.Value = &parsed
	return nil
}

func (o OptionalUUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// OptionalString distinguishes an absent string field from an explicit null.
type OptionalString struct {
	Value *string
	Set   bool
}

func (o OptionalString) IsZero() bool {
	return !o.Set
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Value = &raw
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// OptionalInt distinguishes an absent integer field from an explicit null.
type OptionalInt struct {
	Value *int
	Set   bool
}

func (o OptionalInt) IsZero() bool {
	return !o.Set
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Value = &raw
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// OptionalDecimal distinguishes an absent decimal field from an explicit null.
// Both JSON numbers and numeric strings are accepted.
type OptionalDecimal struct {
	Value *decimal.Decimal
	Set   bool
}

func (o OptionalDecimal) IsZero() bool {
	return !o.Set
}

func (o *OptionalDecimal) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var parsed decimal.Decimal
	if err := parsed.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Value = &parsed
	return nil
}

func (o OptionalDecimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// OptionalTime distinguishes an absent timestamp field from an explicit null.
type OptionalTime struct {
	Value *time.Time
	Set   bool
}

func (o OptionalTime) IsZero() bool {
	return !o.Set
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw time.Time
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Value = &raw
	return nil
}

func (o OptionalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// OptionalStatus distinguishes an absent status field from an explicit null.
type OptionalStatus struct {
	Value *domain.Status
	Set   bool
}

func (o OptionalStatus) IsZero() bool {
	return !o.Set
}

func (o *OptionalStatus) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw domain.Status
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Value = &raw
	return nil
}

func (o OptionalStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}
