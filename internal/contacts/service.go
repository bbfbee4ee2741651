package contacts

import (
	"context"
	"errors"

	"salesdesk_backend/internal/accounts"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/phone"

	"github.com/google/uuid"
)

// AccountReader resolves active accounts for contact linkage.
type AccountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (accounts.Account, error)
}

// Service implements contact management.
type Service struct {
	repo     *Repository
	accounts AccountReader
}

// NewService creates the contact service.
func NewService(repo *Repository, accountReader AccountReader) *Service {
	return &Service{repo: repo, accounts: accountReader}
}

// Create adds a contact; a supplied account reference must resolve.
func (s *Service) Create(ctx context.Context, req CreateContactRequest) (Contact, error) {
	if req.AccountID != nil {
		if _, err := s.accounts.GetByID(ctx, *req.AccountID); err != nil {
			return Contact{}, err
		}
	}

	params := CreateContactParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		AccountID: req.AccountID,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	return s.repo.Create(ctx, nil, params)
}

// GetByID returns one active contact.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Contact, error) {
	contact, err := s.repo.FindActive(ctx, nil, id)
	if errors.Is(err, ErrNotFound) {
		return Contact{}, apperr.NotFound("contact not found")
	}
	return contact, err
}

// List returns active contacts, optionally scoped to an account.
func (s *Service) List(ctx context.Context, accountID *uuid.UUID, limit int) ([]Contact, error) {
	return s.repo.List(ctx, accountID, limit)
}

// Update applies partial edits; a changed account reference must resolve.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateContactRequest) (Contact, error) {
	if req.AccountID != nil {
		if _, err := s.accounts.GetByID(ctx, *req.AccountID); err != nil {
			return Contact{}, err
		}
	}

	params := UpdateContactParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		AccountID: req.AccountID,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	contact, err := s.repo.Update(ctx, id, params)
	if errors.Is(err, ErrNotFound) {
		return Contact{}, apperr.NotFound("contact not found")
	}
	return contact, err
}

// Delete soft-deletes a contact.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.SoftDelete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("contact not found")
	}
	return err
}
