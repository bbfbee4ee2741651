package pipeline

import (
	"context"
	"errors"

	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
)

// store abstracts the repository for service tests.
type store interface {
	Create(ctx context.Context, params CreateStageParams) (Stage, error)
	GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (Stage, error)
	List(ctx context.Context) ([]Stage, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateStageParams) (Stage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountOpportunities(ctx context.Context, stageID uuid.UUID) (int64, error)
}

// Service implements stage catalog administration.
type Service struct {
	repo store
}

// NewService creates the pipeline service.
func NewService(repo store) *Service {
	return &Service{repo: repo}
}

// Create adds a stage after checking the terminal-flag invariant.
func (s *Service) Create(ctx context.Context, req CreateStageRequest) (Stage, error) {
	if req.IsWon && req.IsLost {
		return Stage{}, apperr.Validation("a stage cannot be both won and lost")
	}

	return s.repo.Create(ctx, CreateStageParams{
		Name:        req.Name,
		SortOrder:   req.SortOrder,
		Probability: req.Probability,
		IsWon:       req.IsWon,
		IsLost:      req.IsLost,
	})
}

// List returns the pipeline in order.
func (s *Service) List(ctx context.Context) ([]Stage, error) {
	return s.repo.List(ctx)
}

// Update edits a stage. The won/lost exclusivity is checked against the
// combination of supplied and stored flags before anything is written.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateStageRequest) (Stage, error) {
	current, err := s.repo.GetByID(ctx, nil, id)
	if errors.Is(err, ErrNotFound) {
		return Stage{}, apperr.NotFound("pipeline stage not found")
	}
	if err != nil {
		return Stage{}, err
	}

	isWon, isLost := current.IsWon, current.IsLost
	if req.IsWon != nil {
		isWon = *req.IsWon
	}
	if req.IsLost != nil {
		isLost = *req.IsLost
	}
	if isWon && isLost {
		return Stage{}, apperr.Validation("a stage cannot be both won and lost")
	}

	stage, err := s.repo.Update(ctx, id, UpdateStageParams{
		Name:        req.Name,
		SortOrder:   req.SortOrder,
		Probability: req.Probability,
		IsWon:       req.IsWon,
		IsLost:      req.IsLost,
	})
	if errors.Is(err, ErrNotFound) {
		return Stage{}, apperr.NotFound("pipeline stage not found")
	}
	if err != nil {
		return Stage{}, err
	}

	return stage, nil
}

// Delete removes a stage unless opportunities still reference it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.CountOpportunities(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("stage has opportunities attached and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("pipeline stage not found")
		}
		return err
	}
	return nil
}
