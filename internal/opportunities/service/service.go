// Package service implements the opportunity lifecycle engine: validated
// create/update/soft-delete, status inference on stage changes, stage-change
// automation, and the audit entry every mutation must leave behind.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesdesk_backend/internal/accounts"
	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/contacts"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/opportunities/domain"
	"salesdesk_backend/internal/opportunities/ports"
	"salesdesk_backend/internal/opportunities/repository"
	"salesdesk_backend/internal/opportunities/transport"
	"salesdesk_backend/internal/pipeline"
	"salesdesk_backend/internal/users"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const entityType = "opportunity"

const defaultCurrency = "USD"

// Store is the persistence surface the engine drives. The repository
// implements it; tests substitute an in-memory fake.
type Store interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	Create(ctx context.Context, q db.Querier, params repository.CreateParams) (repository.Opportunity, error)
	FindActive(ctx context.Context, q db.Querier, id uuid.UUID) (repository.Opportunity, error)
	Update(ctx context.Context, q db.Querier, id uuid.UUID, params repository.UpdateParams) (repository.Opportunity, error)
	SoftDelete(ctx context.Context, q db.Querier, id uuid.UUID) error
	GetJoined(ctx context.Context, q db.Querier, id uuid.UUID) (repository.Joined, error)
	List(ctx context.Context, filter repository.ListFilter) ([]repository.Joined, error)
}

// Collaborators bundles the engine's external lookups and writers.
type Collaborators struct {
	Accounts   ports.AccountReader
	Users      ports.UserReader
	Stages     ports.StageReader
	Contacts   ports.ContactReader
	Activities ports.ActivityWriter
	Tasks      ports.TaskWriter
	Audit      ports.AuditAppender
}

// Service is the opportunity lifecycle engine. It assumes authorization has
// already happened; the actor id is carried for audit attribution only.
type Service struct {
	store  Store
	collab Collaborators
	bus    events.Bus
	now    func() time.Time
}

// New creates the engine.
func New(store Store, collab Collaborators, bus events.Bus) *Service {
	return &Service{store: store, collab: collab, bus: bus, now: time.Now}
}

// Create validates references, defaults probability from the stage, infers
// status, and persists the opportunity together with its CREATE audit entry.
func (s *Service) Create(ctx context.Context, req transport.CreateOpportunityRequest, actorID *uuid.UUID) (repository.Joined, error) {
	if _, err := s.collab.Accounts.FindActive(ctx, nil, req.AccountID); err != nil {
		return repository.Joined{}, mapRefErr(err, accounts.ErrNotFound, "account not found")
	}
	if _, err := s.collab.Users.FindByID(ctx, nil, req.OwnerID); err != nil {
		return repository.Joined{}, mapRefErr(err, users.ErrNotFound, "owner not found")
	}
	stage, err := s.collab.Stages.GetByID(ctx, nil, req.StageID)
	if err != nil {
		return repository.Joined{}, mapRefErr(err, pipeline.ErrNotFound, "pipeline stage not found")
	}
	if req.ContactID != nil {
		if _, err := s.collab.Contacts.FindActive(ctx, nil, *req.ContactID); err != nil {
			return repository.Joined{}, mapRefErr(err, contacts.ErrNotFound, "contact not found")
		}
	}

	currency := defaultCurrency
	if req.Currency != nil {
		currency = *req.Currency
	}
	probability := req.Probability
	if probability == nil {
		p := stage.Probability
		probability = &p
	}
	status := domain.InferStatus(req.Status, domain.StageFlags{IsWon: stage.IsWon, IsLost: stage.IsLost})

	var created repository.Opportunity
	err = s.store.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = s.store.Create(ctx, tx, repository.CreateParams{
			Name:              req.Name,
			AccountID:         req.AccountID,
			OwnerID:           req.OwnerID,
			StageID:           req.StageID,
			ContactID:         req.ContactID,
			Amount:            req.Amount,
			Currency:          currency,
			Probability:       probability,
			Status:            status,
			ExpectedCloseDate: req.ExpectedCloseDate,
			Description:       req.Description,
		})
		if err != nil {
			return err
		}

		changes, err := audit.Raw(req)
		if err != nil {
			return err
		}
		_, err = s.collab.Audit.Append(ctx, tx, audit.AppendParams{
			EntityType:    entityType,
			EntityID:      created.ID,
			Action:        audit.ActionCreate,
			ActorID:       actorID,
			OpportunityID: &created.ID,
			Changes:       changes,
		})
		if err != nil {
			return fmt.Errorf("audit append: %w", err)
		}
		return nil
	})
	if err != nil {
		return repository.Joined{}, err
	}

	joined, err := s.store.GetJoined(ctx, nil, created.ID)
	if err != nil {
		return repository.Joined{}, err
	}

	s.bus.Publish(ctx, events.OpportunityCreated{
		BaseEvent:     events.NewBaseEvent(),
		OpportunityID: joined.ID,
		AccountID:     joined.AccountID,
		OwnerID:       joined.OwnerID,
	})
	return joined, nil
}

// Update applies a partial update. Changed references are re-validated;
// unchanged ones are not. When the stage id actually changes, status is
// re-inferred (unless the payload carries an explicit status), a STAGE_CHANGE
// audit entry with the {from, to} pair is recorded, and automation runs — all
// inside one transaction with the row update itself.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateOpportunityRequest, actorID *uuid.UUID) (repository.Joined, error) {
	current, err := s.store.FindActive(ctx, nil, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Joined{}, apperr.NotFound("opportunity not found")
	}
	if err != nil {
		return repository.Joined{}, err
	}

	if req.AccountID.Set {
		if req.AccountID.Value == nil {
			return repository.Joined{}, apperr.Validation("accountId cannot be null")
		}
		if *req.AccountID.Value != current.AccountID {
			if _, err := s.collab.Accounts.FindActive(ctx, nil, *req.AccountID.Value); err != nil {
				return repository.Joined{}, mapRefErr(err, accounts.ErrNotFound, "account not found")
			}
		}
	}
	if req.OwnerID.Set {
		if req.OwnerID.Value == nil {
			return repository.Joined{}, apperr.Validation("ownerId cannot be null")
		}
		if *req.OwnerID.Value != current.OwnerID {
			if _, err := s.collab.Users.FindByID(ctx, nil, *req.OwnerID.Value); err != nil {
				return repository.Joined{}, mapRefErr(err, users.ErrNotFound, "owner not found")
			}
		}
	}
	if req.ContactID.Set && req.ContactID.Value != nil {
		changed := current.ContactID == nil || *req.ContactID.Value != *current.ContactID
		if changed {
			if _, err := s.collab.Contacts.FindActive(ctx, nil, *req.ContactID.Value); err != nil {
				return repository.Joined{}, mapRefErr(err, contacts.ErrNotFound, "contact not found")
			}
		}
	}

	// Stage changes compare by id identity; re-sending the current stage id
	// is not a transition.
	var newStage pipeline.Stage
	stageChanged := false
	if req.StageID.Set {
		if req.StageID.Value == nil {
			return repository.Joined{}, apperr.Validation("stageId cannot be null")
		}
		if *req.StageID.Value != current.StageID {
			stageChanged = true
			newStage, err = s.collab.Stages.GetByID(ctx, nil, *req.StageID.Value)
			if err != nil {
				return repository.Joined{}, mapRefErr(err, pipeline.ErrNotFound, "pipeline stage not found")
			}
		}
	}

	if req.Status.Set {
		if req.Status.Value == nil {
			return repository.Joined{}, apperr.Validation("status cannot be null")
		}
		if !req.Status.Value.Valid() {
			return repository.Joined{}, apperr.Validation("unknown status")
		}
	}

	params, err := mergeUpdate(current, req)
	if err != nil {
		return repository.Joined{}, err
	}
	switch {
	case req.Status.Set:
		// Explicit caller intent always wins, even over stage inference.
		params.Status = *req.Status.Value
	case stageChanged:
		params.Status = domain.InferStatus(nil, domain.StageFlags{IsWon: newStage.IsWon, IsLost: newStage.IsLost})
	}

	err = s.store.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.store.Update(ctx, tx, id, params); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("opportunity not found")
			}
			return err
		}

		if !stageChanged {
			changes, err := audit.Raw(req)
			if err != nil {
				return err
			}
			_, err = s.collab.Audit.Append(ctx, tx, audit.AppendParams{
				EntityType:    entityType,
				EntityID:      id,
				Action:        audit.ActionUpdate,
				ActorID:       actorID,
				OpportunityID: &id,
				Changes:       changes,
			})
			if err != nil {
				return fmt.Errorf("audit append: %w", err)
			}
			return nil
		}

		_, err := s.collab.Audit.Append(ctx, tx, audit.AppendParams{
			EntityType:    entityType,
			EntityID:      id,
			Action:        audit.ActionStageChange,
			ActorID:       actorID,
			OpportunityID: &id,
			Changes:       audit.StageTransition(current.StageID, newStage.ID),
		})
		if err != nil {
			return fmt.Errorf("audit append: %w", err)
		}

		joined, err := s.store.GetJoined(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.runAutomation(ctx, tx, joined, newStage)
	})
	if err != nil {
		return repository.Joined{}, err
	}

	joined, err := s.store.GetJoined(ctx, nil, id)
	if err != nil {
		return repository.Joined{}, err
	}

	if stageChanged {
		s.bus.Publish(ctx, events.OpportunityStageChanged{
			BaseEvent:     events.NewBaseEvent(),
			OpportunityID: joined.ID,
			FromStageID:   current.StageID,
			ToStageID:     newStage.ID,
			StageName:     newStage.Name,
			Status:        string(joined.Status),
		})
	}
	return joined, nil
}

// SoftDelete marks the opportunity deleted and records a DELETE audit entry
// with no diff. Activities, tasks, and audit history stay queryable.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	if _, err := s.store.FindActive(ctx, nil, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("opportunity not found")
		}
		return err
	}

	return s.store.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.store.SoftDelete(ctx, tx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("opportunity not found")
			}
			return err
		}

		_, err := s.collab.Audit.Append(ctx, tx, audit.AppendParams{
			EntityType:    entityType,
			EntityID:      id,
			Action:        audit.ActionDelete,
			ActorID:       actorID,
			OpportunityID: &id,
			Changes:       nil,
		})
		if err != nil {
			return fmt.Errorf("audit append: %w", err)
		}
		return nil
	})
}

// GetByID returns one opportunity with references resolved.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Joined, error) {
	joined, err := s.store.GetJoined(ctx, nil, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Joined{}, apperr.NotFound("opportunity not found")
	}
	return joined, err
}

// List returns opportunities matching the filter.
func (s *Service) List(ctx context.Context, filter repository.ListFilter) ([]repository.Joined, error) {
	return s.store.List(ctx, filter)
}

// mergeUpdate folds the partial payload over the stored row. Absent fields
// keep the stored value; explicit nulls clear nullable fields.
func mergeUpdate(current repository.Opportunity, req transport.UpdateOpportunityRequest) (repository.UpdateParams, error) {
	params := repository.UpdateParams{
		Name:              current.Name,
		AccountID:         current.AccountID,
		OwnerID:           current.OwnerID,
		StageID:           current.StageID,
		ContactID:         current.ContactID,
		Amount:            current.Amount,
		Currency:          current.Currency,
		Probability:       current.Probability,
		Status:            current.Status,
		ExpectedCloseDate: current.ExpectedCloseDate,
		Description:       current.Description,
		LostReason:        current.LostReason,
	}

	if req.Name.Set {
		if req.Name.Value == nil || *req.Name.Value == "" {
			return repository.UpdateParams{}, apperr.Validation("name cannot be empty")
		}
		params.Name = *req.Name.Value
	}
	if req.AccountID.Set {
		params.AccountID = *req.AccountID.Value
	}
	if req.OwnerID.Set {
		params.OwnerID = *req.OwnerID.Value
	}
	if req.StageID.Set {
		params.StageID = *req.StageID.Value
	}
	if req.ContactID.Set {
		params.ContactID = req.ContactID.Value
	}
	if req.Amount.Set {
		params.Amount = req.Amount.Value
	}
	if req.Currency.Set {
		if req.Currency.Value == nil || *req.Currency.Value == "" {
			return repository.UpdateParams{}, apperr.Validation("currency cannot be empty")
		}
		params.Currency = *req.Currency.Value
	}
	if req.Probability.Set {
		if req.Probability.Value != nil && (*req.Probability.Value < 0 || *req.Probability.Value > 100) {
			return repository.UpdateParams{}, apperr.Validation("probability must be between 0 and 100")
		}
		params.Probability = req.Probability.Value
	}
	if req.ExpectedCloseDate.Set {
		params.ExpectedCloseDate = req.ExpectedCloseDate.Value
	}
	if req.Description.Set {
		params.Description = req.Description.Value
	}
	if req.LostReason.Set {
		params.LostReason = req.LostReason.Value
	}
	return params, nil
}

func mapRefErr(err, sentinel error, message string) error {
	if errors.Is(err, sentinel) {
		return apperr.NotFound(message)
	}
	return err
}
