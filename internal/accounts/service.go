package accounts

import (
	"context"
	"errors"

	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Service implements account management on top of the repository.
type Service struct {
	repo *Repository
}

// NewService creates the account service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create adds an account.
func (s *Service) Create(ctx context.Context, req CreateAccountRequest) (Account, error) {
	return s.repo.Create(ctx, nil, CreateAccountParams{
		Name:     req.Name,
		Industry: req.Industry,
		Website:  req.Website,
		Phone:    req.Phone,
	})
}

// GetByID returns one active account.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	account, err := s.repo.FindActive(ctx, nil, id)
	if errors.Is(err, ErrNotFound) {
		return Account{}, apperr.NotFound("account not found")
	}
	return account, err
}

// List returns active accounts.
func (s *Service) List(ctx context.Context, limit int) ([]Account, error) {
	return s.repo.List(ctx, limit)
}

// Update applies partial edits.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateAccountRequest) (Account, error) {
	account, err := s.repo.Update(ctx, id, UpdateAccountParams{
		Name:     req.Name,
		Industry: req.Industry,
		Website:  req.Website,
		Phone:    req.Phone,
	})
	if errors.Is(err, ErrNotFound) {
		return Account{}, apperr.NotFound("account not found")
	}
	return account, err
}

// Delete soft-deletes an account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.SoftDelete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("account not found")
	}
	return err
}
