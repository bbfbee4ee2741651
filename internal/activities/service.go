package activities

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Service implements activity management.
type Service struct {
	repo *Repository
}

// NewService creates the activity service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create logs an activity; OccurredAt defaults to now when omitted.
func (s *Service) Create(ctx context.Context, req CreateActivityRequest) (Activity, error) {
	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	return s.repo.Create(ctx, nil, CreateActivityParams{
		Type:          req.Type,
		Subject:       req.Subject,
		Description:   req.Description,
		OccurredAt:    occurredAt,
		OwnerID:       req.OwnerID,
		AccountID:     req.AccountID,
		OpportunityID: req.OpportunityID,
		ContactID:     req.ContactID,
	})
}

// GetByID returns one activity.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Activity, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Activity{}, apperr.NotFound("activity not found")
	}
	return activity, err
}

// List returns activities matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Activity, error) {
	return s.repo.List(ctx, filter)
}

// Delete removes an activity.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("activity not found")
	}
	return err
}
