package leads

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/internal/accounts"
	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/contacts"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/db"
	"salesdesk_backend/platform/phone"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountWriter creates and resolves accounts during conversion.
type AccountWriter interface {
	Create(ctx context.Context, q db.Querier, params accounts.CreateAccountParams) (accounts.Account, error)
	FindActive(ctx context.Context, q db.Querier, id uuid.UUID) (accounts.Account, error)
}

// ContactWriter creates the contact the lead becomes.
type ContactWriter interface {
	Create(ctx context.Context, q db.Querier, params contacts.CreateContactParams) (contacts.Contact, error)
}

// AuditAppender records the conversion on the lead's trail.
type AuditAppender interface {
	Append(ctx context.Context, q db.Querier, params audit.AppendParams) (audit.Entry, error)
}

// NewOpportunity describes the deal to open from a converted lead.
type NewOpportunity struct {
	Name      string
	StageID   uuid.UUID
	Amount    *decimal.Decimal
	CloseDate *time.Time
	AccountID uuid.UUID
	ContactID uuid.UUID
	OwnerID   uuid.UUID
	ActorID   *uuid.UUID
}

// OpportunityCreator opens a deal through the opportunity lifecycle engine so
// conversion inherits its validation, audit entry, and stage-derived status.
type OpportunityCreator interface {
	CreateFromLead(ctx context.Context, in NewOpportunity) (uuid.UUID, error)
}

type store interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	FindActive(ctx context.Context, q db.Querier, id uuid.UUID) (Lead, error)
	List(ctx context.Context, filter ListFilter) ([]Lead, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error)
	MarkConverted(ctx context.Context, q db.Querier, id, accountID, contactID uuid.UUID) (Lead, error)
	SetConvertedOpportunity(ctx context.Context, id, opportunityID uuid.UUID) (Lead, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Service implements lead management and conversion.
type Service struct {
	repo          store
	accountsPort  AccountWriter
	contactsPort  ContactWriter
	auditPort     AuditAppender
	opportunities OpportunityCreator
}

// NewService creates the lead service.
func NewService(repo store, accountsPort AccountWriter, contactsPort ContactWriter, auditPort AuditAppender, opportunities OpportunityCreator) *Service {
	return &Service{
		repo:          repo,
		accountsPort:  accountsPort,
		contactsPort:  contactsPort,
		auditPort:     auditPort,
		opportunities: opportunities,
	}
}

// Create adds a lead; status defaults to NEW.
func (s *Service) Create(ctx context.Context, req CreateLeadRequest) (Lead, error) {
	status := StatusNew
	if req.Status != nil {
		status = *req.Status
	}

	params := CreateLeadParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Company:   req.Company,
		Source:    req.Source,
		Status:    status,
		OwnerID:   req.OwnerID,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	return s.repo.Create(ctx, params)
}

// GetByID returns one active lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := s.repo.FindActive(ctx, nil, id)
	if errors.Is(err, ErrNotFound) {
		return Lead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

// List returns active leads matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Lead, error) {
	return s.repo.List(ctx, filter)
}

// Update applies partial edits; converted leads are frozen.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateLeadRequest) (Lead, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Lead{}, err
	}
	if current.Status == StatusConverted {
		return Lead{}, apperr.Conflict("lead already converted")
	}

	params := UpdateLeadParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Company:   req.Company,
		Source:    req.Source,
		Status:    req.Status,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	lead, err := s.repo.Update(ctx, id, params)
	if errors.Is(err, ErrNotFound) {
		return Lead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

// Convert turns a lead into an account and contact, optionally opening a deal.
// Account, contact, status flip, and the audit entry commit atomically; the
// deal is then opened through the lifecycle engine so it carries its own
// CREATE audit entry and stage-derived status.
func (s *Service) Convert(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, req ConvertLeadRequest) (ConvertLeadResponse, error) {
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return ConvertLeadResponse{}, err
	}
	if lead.Status == StatusConverted {
		return ConvertLeadResponse{}, apperr.Conflict("lead already converted")
	}

	if req.AccountID != nil {
		if _, err := s.accountsPort.FindActive(ctx, nil, *req.AccountID); err != nil {
			if errors.Is(err, accounts.ErrNotFound) {
				return ConvertLeadResponse{}, apperr.Validation("account not found")
			}
			return ConvertLeadResponse{}, err
		}
	}

	var (
		converted Lead
		accountID uuid.UUID
		contactID uuid.UUID
	)
	err = s.repo.InTx(ctx, func(tx pgx.Tx) error {
		if req.AccountID != nil {
			accountID = *req.AccountID
		} else {
			account, err := s.accountsPort.Create(ctx, tx, accounts.CreateAccountParams{
				Name: accountNameFor(lead),
			})
			if err != nil {
				return err
			}
			accountID = account.ID
		}

		contact, err := s.contactsPort.Create(ctx, tx, contacts.CreateContactParams{
			FirstName: lead.FirstName,
			LastName:  lead.LastName,
			Email:     lead.Email,
			Phone:     lead.Phone,
			AccountID: &accountID,
		})
		if err != nil {
			return err
		}
		contactID = contact.ID

		converted, err = s.repo.MarkConverted(ctx, tx, lead.ID, accountID, contactID)
		if err != nil {
			return err
		}

		changes, err := audit.Raw(struct {
			Status    Status    `json:"status"`
			AccountID uuid.UUID `json:"accountId"`
			ContactID uuid.UUID `json:"contactId"`
		}{StatusConverted, accountID, contactID})
		if err != nil {
			return err
		}
		_, err = s.auditPort.Append(ctx, tx, audit.AppendParams{
			EntityType: "lead",
			EntityID:   lead.ID,
			Action:     audit.ActionUpdate,
			ActorID:    actorID,
			Changes:    changes,
		})
		return err
	})
	if err != nil {
		return ConvertLeadResponse{}, err
	}

	resp := ConvertLeadResponse{Lead: converted, AccountID: accountID, ContactID: contactID}
	if req.Opportunity == nil {
		return resp, nil
	}

	oppID, err := s.opportunities.CreateFromLead(ctx, NewOpportunity{
		Name:      req.Opportunity.Name,
		StageID:   req.Opportunity.StageID,
		Amount:    req.Opportunity.Amount,
		CloseDate: req.Opportunity.CloseDate,
		AccountID: accountID,
		ContactID: contactID,
		OwnerID:   lead.OwnerID,
		ActorID:   actorID,
	})
	if err != nil {
		return ConvertLeadResponse{}, err
	}

	resp.Lead, err = s.repo.SetConvertedOpportunity(ctx, lead.ID, oppID)
	if err != nil {
		return ConvertLeadResponse{}, err
	}
	resp.OpportunityID = &oppID
	return resp, nil
}

// Delete soft-deletes a lead.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.SoftDelete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

func accountNameFor(lead Lead) string {
	if lead.Company != nil && *lead.Company != "" {
		return *lead.Company
	}
	return lead.FirstName + " " + lead.LastName
}
