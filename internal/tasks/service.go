package tasks

import (
	"context"
	"errors"

	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Service implements task management.
type Service struct {
	repo *Repository
}

// NewService creates the task service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a task; status defaults to OPEN and priority to MEDIUM.
func (s *Service) Create(ctx context.Context, req CreateTaskRequest) (Task, error) {
	status := StatusOpen
	if req.Status != nil {
		status = *req.Status
	}
	priority := PriorityMedium
	if req.Priority != nil {
		priority = *req.Priority
	}

	return s.repo.Create(ctx, nil, CreateTaskParams{
		Title:         req.Title,
		Description:   req.Description,
		Status:        status,
		Priority:      priority,
		DueDate:       req.DueDate,
		OwnerID:       req.OwnerID,
		AccountID:     req.AccountID,
		OpportunityID: req.OpportunityID,
		ContactID:     req.ContactID,
	})
}

// GetByID returns one task.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Task{}, apperr.NotFound("task not found")
	}
	return task, err
}

// List returns tasks matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	return s.repo.List(ctx, filter)
}

// Update applies partial edits.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateTaskRequest) (Task, error) {
	task, err := s.repo.Update(ctx, id, UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if errors.Is(err, ErrNotFound) {
		return Task{}, apperr.NotFound("task not found")
	}
	return task, err
}

// Complete marks a task DONE.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (Task, error) {
	done := StatusDone
	return s.Update(ctx, id, UpdateTaskRequest{Status: &done})
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("task not found")
	}
	return err
}
