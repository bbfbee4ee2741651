package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"salesdesk_backend/internal/accounts"
	"salesdesk_backend/internal/activities"
	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/contacts"
	"salesdesk_backend/internal/opportunities/domain"
	"salesdesk_backend/internal/opportunities/repository"
	"salesdesk_backend/internal/opportunities/transport"
	"salesdesk_backend/internal/pipeline"
	"salesdesk_backend/internal/tasks"
	"salesdesk_backend/internal/users"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/db"
	platformevents "salesdesk_backend/platform/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// world is the shared in-memory state all fakes write to. The fake store's
// InTx snapshots it and restores the snapshot when the unit of work fails, so
// rollback semantics are observable in tests.
type world struct {
	opps       map[uuid.UUID]repository.Opportunity
	stages     map[uuid.UUID]pipeline.Stage
	accounts   map[uuid.UUID]accounts.Account
	users      map[uuid.UUID]users.User
	contacts   map[uuid.UUID]contacts.Contact
	activities []activities.CreateActivityParams
	tasks      []tasks.CreateTaskParams
	audits     []audit.AppendParams
}

func newWorld() *world {
	return &world{
		opps:     make(map[uuid.UUID]repository.Opportunity),
		stages:   make(map[uuid.UUID]pipeline.Stage),
		accounts: make(map[uuid.UUID]accounts.Account),
		users:    make(map[uuid.UUID]users.User),
		contacts: make(map[uuid.UUID]contacts.Contact),
	}
}

func (w *world) clone() *world {
	c := newWorld()
	for k, v := range w.opps {
		c.opps[k] = v
	}
	for k, v := range w.stages {
		c.stages[k] = v
	}
	for k, v := range w.accounts {
		c.accounts[k] = v
	}
	for k, v := range w.users {
		c.users[k] = v
	}
	for k, v := range w.contacts {
		c.contacts[k] = v
	}
	c.activities = append([]activities.CreateActivityParams(nil), w.activities...)
	c.tasks = append([]tasks.CreateTaskParams(nil), w.tasks...)
	c.audits = append([]audit.AppendParams(nil), w.audits...)
	return c
}

type fakeStore struct {
	w *world
}

func (f *fakeStore) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	snapshot := f.w.clone()
	if err := fn(nil); err != nil {
		*f.w = *snapshot
		return err
	}
	return nil
}

func (f *fakeStore) Create(_ context.Context, _ db.Querier, params repository.CreateParams) (repository.Opportunity, error) {
	o := repository.Opportunity{
		ID:                uuid.New(),
		Name:              params.Name,
		AccountID:         params.AccountID,
		OwnerID:           params.OwnerID,
		StageID:           params.StageID,
		ContactID:         params.ContactID,
		Amount:            params.Amount,
		Currency:          params.Currency,
		Probability:       params.Probability,
		Status:            params.Status,
		ExpectedCloseDate: params.ExpectedCloseDate,
		Description:       params.Description,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	f.w.opps[o.ID] = o
	return o, nil
}

func (f *fakeStore) FindActive(_ context.Context, _ db.Querier, id uuid.UUID) (repository.Opportunity, error) {
	o, ok := f.w.opps[id]
	if !ok || o.DeletedAt != nil {
		return repository.Opportunity{}, repository.ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) Update(ctx context.Context, q db.Querier, id uuid.UUID, params repository.UpdateParams) (repository.Opportunity, error) {
	o, err := f.FindActive(ctx, q, id)
	if err != nil {
		return repository.Opportunity{}, err
	}
	o.Name = params.Name
	o.AccountID = params.AccountID
	o.OwnerID = params.OwnerID
	o.StageID = params.StageID
	o.ContactID = params.ContactID
	o.Amount = params.Amount
	o.Currency = params.Currency
	o.Probability = params.Probability
	o.Status = params.Status
	o.ExpectedCloseDate = params.ExpectedCloseDate
	o.Description = params.Description
	o.LostReason = params.LostReason
	o.UpdatedAt = time.Now()
	f.w.opps[id] = o
	return o, nil
}

func (f *fakeStore) SoftDelete(ctx context.Context, q db.Querier, id uuid.UUID) error {
	o, err := f.FindActive(ctx, q, id)
	if err != nil {
		return err
	}
	now := time.Now()
	o.DeletedAt = &now
	o.Status = domain.StatusArchived
	f.w.opps[id] = o
	return nil
}

func (f *fakeStore) GetJoined(_ context.Context, _ db.Querier, id uuid.UUID) (repository.Joined, error) {
	o, ok := f.w.opps[id]
	if !ok || o.DeletedAt != nil {
		return repository.Joined{}, repository.ErrNotFound
	}
	stage := f.w.stages[o.StageID]
	j := repository.Joined{
		Opportunity: o,
		Account:     repository.AccountSummary{ID: o.AccountID, Name: f.w.accounts[o.AccountID].Name},
		Owner:       repository.OwnerSummary{ID: o.OwnerID, Name: f.w.users[o.OwnerID].Name},
		Stage: repository.StageSummary{
			ID: stage.ID, Name: stage.Name, Probability: stage.Probability,
			IsWon: stage.IsWon, IsLost: stage.IsLost,
		},
	}
	if o.ContactID != nil {
		c := f.w.contacts[*o.ContactID]
		j.Contact = &repository.ContactSummary{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName}
	}
	return j, nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListFilter) ([]repository.Joined, error) {
	return nil, nil
}

type fakeAccounts struct {
	w     *world
	calls int
}

func (f *fakeAccounts) FindActive(_ context.Context, _ db.Querier, id uuid.UUID) (accounts.Account, error) {
	f.calls++
	a, ok := f.w.accounts[id]
	if !ok || a.DeletedAt != nil {
		return accounts.Account{}, accounts.ErrNotFound
	}
	return a, nil
}

type fakeUsers struct {
	w     *world
	calls int
}

func (f *fakeUsers) FindByID(_ context.Context, _ db.Querier, id uuid.UUID) (users.User, error) {
	f.calls++
	u, ok := f.w.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

type fakeStages struct {
	w     *world
	calls int
}

func (f *fakeStages) GetByID(_ context.Context, _ db.Querier, id uuid.UUID) (pipeline.Stage, error) {
	f.calls++
	s, ok := f.w.stages[id]
	if !ok {
		return pipeline.Stage{}, pipeline.ErrNotFound
	}
	return s, nil
}

type fakeContacts struct {
	w *world
}

func (f *fakeContacts) FindActive(_ context.Context, _ db.Querier, id uuid.UUID) (contacts.Contact, error) {
	c, ok := f.w.contacts[id]
	if !ok || c.DeletedAt != nil {
		return contacts.Contact{}, contacts.ErrNotFound
	}
	return c, nil
}

type fakeActivities struct {
	w    *world
	fail error
}

func (f *fakeActivities) Create(_ context.Context, _ db.Querier, params activities.CreateActivityParams) (activities.Activity, error) {
	if f.fail != nil {
		return activities.Activity{}, f.fail
	}
	f.w.activities = append(f.w.activities, params)
	return activities.Activity{ID: uuid.New()}, nil
}

type fakeTasks struct {
	w    *world
	fail error
}

func (f *fakeTasks) Create(_ context.Context, _ db.Querier, params tasks.CreateTaskParams) (tasks.Task, error) {
	if f.fail != nil {
		return tasks.Task{}, f.fail
	}
	f.w.tasks = append(f.w.tasks, params)
	return tasks.Task{ID: uuid.New()}, nil
}

type fakeAudit struct {
	w    *world
	fail error
}

func (f *fakeAudit) Append(_ context.Context, _ db.Querier, params audit.AppendParams) (audit.Entry, error) {
	if f.fail != nil {
		return audit.Entry{}, f.fail
	}
	f.w.audits = append(f.w.audits, params)
	return audit.Entry{ID: uuid.New()}, nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, platformevents.Event)           {}
func (nopBus) PublishSync(context.Context, platformevents.Event) error { return nil }
func (nopBus) Subscribe(string, platformevents.Handler)                {}

type fixture struct {
	svc        *Service
	w          *world
	accounts   *fakeAccounts
	users      *fakeUsers
	stages     *fakeStages
	activities *fakeActivities
	tasks      *fakeTasks
	audit      *fakeAudit

	now          time.Time
	accountID    uuid.UUID
	ownerID      uuid.UUID
	contactID    uuid.UUID
	prospectID   uuid.UUID
	closedWonID  uuid.UUID
	closedLostID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	w := newWorld()

	f := &fixture{
		w:          w,
		accounts:   &fakeAccounts{w: w},
		users:      &fakeUsers{w: w},
		stages:     &fakeStages{w: w},
		activities: &fakeActivities{w: w},
		tasks:      &fakeTasks{w: w},
		audit:      &fakeAudit{w: w},
		now:        time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}

	f.accountID = uuid.New()
	w.accounts[f.accountID] = accounts.Account{ID: f.accountID, Name: "Acme Corp"}
	f.ownerID = uuid.New()
	w.users[f.ownerID] = users.User{ID: f.ownerID, Name: "Dana Rep", Email: "dana@example.com"}
	f.contactID = uuid.New()
	w.contacts[f.contactID] = contacts.Contact{ID: f.contactID, FirstName: "Pat", LastName: "Buyer"}

	f.prospectID = uuid.New()
	w.stages[f.prospectID] = pipeline.Stage{ID: f.prospectID, Name: "Prospecting", SortOrder: 1, Probability: 10}
	f.closedWonID = uuid.New()
	w.stages[f.closedWonID] = pipeline.Stage{ID: f.closedWonID, Name: "Closed Won", SortOrder: 6, Probability: 100, IsWon: true}
	f.closedLostID = uuid.New()
	w.stages[f.closedLostID] = pipeline.Stage{ID: f.closedLostID, Name: "Closed Lost", SortOrder: 7, IsLost: true}

	f.svc = New(&fakeStore{w: w}, Collaborators{
		Accounts:   f.accounts,
		Users:      f.users,
		Stages:     f.stages,
		Contacts:   &fakeContacts{w: w},
		Activities: f.activities,
		Tasks:      f.tasks,
		Audit:      f.audit,
	}, nopBus{})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) createProspect(t *testing.T) repository.Joined {
	t.Helper()
	created, err := f.svc.Create(context.Background(), transport.CreateOpportunityRequest{
		Name:      "Acme renewal",
		AccountID: f.accountID,
		OwnerID:   f.ownerID,
		StageID:   f.prospectID,
		ContactID: &f.contactID,
	}, nil)
	require.NoError(t, err)
	return created
}

func TestCreateInfersStatusAndDefaultsProbability(t *testing.T) {
	f := newFixture(t)

	created := f.createProspect(t)

	require.Equal(t, domain.StatusOpen, created.Status)
	require.NotNil(t, created.Probability)
	require.Equal(t, 10, *created.Probability)

	require.Len(t, f.w.audits, 1)
	entry := f.w.audits[0]
	require.Equal(t, audit.ActionCreate, entry.Action)
	require.Equal(t, created.ID, entry.EntityID)
	require.NotNil(t, entry.Changes)
	require.Equal(t, audit.ChangeKindRaw, entry.Changes.Kind)
}

func TestCreateUnknownStagePersistsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), transport.CreateOpportunityRequest{
		Name:      "Acme renewal",
		AccountID: f.accountID,
		OwnerID:   f.ownerID,
		StageID:   uuid.New(),
	}, nil)

	require.True(t, apperr.Is(err, apperr.KindNotFound))
	require.Empty(t, f.w.opps)
	require.Empty(t, f.w.audits)
}

func TestCreateSoftDeletedAccountFails(t *testing.T) {
	f := newFixture(t)
	deleted := time.Now()
	a := f.w.accounts[f.accountID]
	a.DeletedAt = &deleted
	f.w.accounts[f.accountID] = a

	_, err := f.svc.Create(context.Background(), transport.CreateOpportunityRequest{
		Name:      "Acme renewal",
		AccountID: f.accountID,
		OwnerID:   f.ownerID,
		StageID:   f.prospectID,
	}, nil)

	require.True(t, apperr.Is(err, apperr.KindNotFound))
	require.Empty(t, f.w.opps)
}

func TestUpdateWithoutStageKeepsStatus(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)

	// Move to a terminal stage first.
	_, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		StageID: transport.OptionalUUID{Value: &f.closedWonID, Set: true},
	}, nil)
	require.NoError(t, err)
	f.stages.calls = 0

	desc := "pricing agreed"
	updated, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		Description: transport.OptionalString{Value: &desc, Set: true},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, domain.StatusWon, updated.Status)
	require.Equal(t, 0, f.stages.calls)

	last := f.w.audits[len(f.w.audits)-1]
	require.Equal(t, audit.ActionUpdate, last.Action)
	require.Equal(t, audit.ChangeKindRaw, last.Changes.Kind)
}

func TestStageChangeRunsAutomationAndAudit(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)
	auditsBefore := len(f.w.audits)

	updated, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		StageID: transport.OptionalUUID{Value: &f.closedWonID, Set: true},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StatusWon, updated.Status)

	require.Len(t, f.w.audits, auditsBefore+1)
	entry := f.w.audits[len(f.w.audits)-1]
	require.Equal(t, audit.ActionStageChange, entry.Action)
	require.Equal(t, audit.ChangeKindStageTransition, entry.Changes.Kind)
	require.Equal(t, f.prospectID, entry.Changes.From)
	require.Equal(t, f.closedWonID, entry.Changes.To)

	require.Len(t, f.w.activities, 1)
	act := f.w.activities[0]
	require.Equal(t, activities.TypeNote, act.Type)
	require.Equal(t, "Stage changed to Closed Won", act.Subject)
	require.Equal(t, f.now, act.OccurredAt)
	require.Equal(t, f.ownerID, act.OwnerID)
	require.Equal(t, f.accountID, *act.AccountID)
	require.Equal(t, created.ID, *act.OpportunityID)
	require.Equal(t, f.contactID, *act.ContactID)

	require.Len(t, f.w.tasks, 1)
	task := f.w.tasks[0]
	require.Equal(t, "Follow up (Closed Won)", task.Title)
	require.Equal(t, tasks.StatusOpen, task.Status)
	require.Equal(t, tasks.PriorityMedium, task.Priority)
	require.Equal(t, f.now.Add(72*time.Hour), *task.DueDate)
	require.Equal(t, f.ownerID, task.OwnerID)
	require.Equal(t, f.accountID, *task.AccountID)
	require.Equal(t, created.ID, *task.OpportunityID)
	require.Equal(t, f.contactID, *task.ContactID)
}

func TestStageChangeRollsBackWhenTaskCreationFails(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)
	auditsBefore := len(f.w.audits)
	f.tasks.fail = errors.New("tasks table unavailable")

	_, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		StageID: transport.OptionalUUID{Value: &f.closedWonID, Set: true},
	}, nil)
	require.Error(t, err)

	stored := f.w.opps[created.ID]
	require.Equal(t, f.prospectID, stored.StageID)
	require.Equal(t, domain.StatusOpen, stored.Status)
	require.Empty(t, f.w.activities)
	require.Empty(t, f.w.tasks)
	require.Len(t, f.w.audits, auditsBefore)
}

func TestStageChangeRollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)
	f.audit.fail = errors.New("audit table unavailable")

	_, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		StageID: transport.OptionalUUID{Value: &f.closedWonID, Set: true},
	}, nil)
	require.Error(t, err)

	stored := f.w.opps[created.ID]
	require.Equal(t, f.prospectID, stored.StageID)
	require.Equal(t, domain.StatusOpen, stored.Status)
	require.Empty(t, f.w.activities)
	require.Empty(t, f.w.tasks)
}

func TestSameStageIDIsNotATransition(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)
	auditsBefore := len(f.w.audits)

	_, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		StageID: transport.OptionalUUID{Value: &f.prospectID, Set: true},
	}, nil)
	require.NoError(t, err)

	require.Empty(t, f.w.activities)
	require.Empty(t, f.w.tasks)
	require.Len(t, f.w.audits, auditsBefore+1)
	require.Equal(t, audit.ActionUpdate, f.w.audits[len(f.w.audits)-1].Action)
}

func TestExplicitStatusWinsOverInference(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)

	open := domain.StatusOpen
	updated, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		StageID: transport.OptionalUUID{Value: &f.closedWonID, Set: true},
		Status:  transport.OptionalStatus{Value: &open, Set: true},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, domain.StatusOpen, updated.Status)
	// Still a stage change: automation and the STAGE_CHANGE entry fire.
	require.Len(t, f.w.activities, 1)
	require.Equal(t, audit.ActionStageChange, f.w.audits[len(f.w.audits)-1].Action)
}

func TestUpdateSkipsRevalidationOfUnchangedRefs(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)
	f.accounts.calls = 0
	f.users.calls = 0

	_, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		AccountID: transport.OptionalUUID{Value: &f.accountID, Set: true},
		OwnerID:   transport.OptionalUUID{Value: &f.ownerID, Set: true},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, 0, f.accounts.calls)
	require.Equal(t, 0, f.users.calls)
}

func TestSoftDeleteArchivesAndRecordsNullDiff(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)
	actor := uuid.New()

	err := f.svc.SoftDelete(context.Background(), created.ID, &actor)
	require.NoError(t, err)

	stored := f.w.opps[created.ID]
	require.NotNil(t, stored.DeletedAt)
	require.Equal(t, domain.StatusArchived, stored.Status)

	entry := f.w.audits[len(f.w.audits)-1]
	require.Equal(t, audit.ActionDelete, entry.Action)
	require.Equal(t, &actor, entry.ActorID)
	require.Nil(t, entry.Changes)

	err = f.svc.SoftDelete(context.Background(), created.ID, &actor)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestProspectingToClosedWonScenario(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), transport.CreateOpportunityRequest{
		Name:      "Acme expansion",
		AccountID: f.accountID,
		OwnerID:   f.ownerID,
		StageID:   f.prospectID,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOpen, created.Status)
	require.Equal(t, 10, *created.Probability)

	updated, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		StageID: transport.OptionalUUID{Value: &f.closedWonID, Set: true},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StatusWon, updated.Status)
	require.Equal(t, "Closed Won", updated.Stage.Name)

	entry := f.w.audits[len(f.w.audits)-1]
	require.Equal(t, audit.ActionStageChange, entry.Action)
	require.Equal(t, f.prospectID, entry.Changes.From)
	require.Equal(t, f.closedWonID, entry.Changes.To)

	require.Len(t, f.w.activities, 1)
	require.Equal(t, "Stage changed to Closed Won", f.w.activities[0].Subject)
	require.Len(t, f.w.tasks, 1)
	require.Equal(t, "Follow up (Closed Won)", f.w.tasks[0].Title)
	require.Equal(t, f.now.Add(72*time.Hour), *f.w.tasks[0].DueDate)
}

func TestUpdateNullClearsContact(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)
	require.NotNil(t, created.ContactID)

	updated, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		ContactID: transport.OptionalUUID{Value: nil, Set: true},
	}, nil)
	require.NoError(t, err)
	require.Nil(t, updated.ContactID)
}

func TestUpdateNullRequiredRefRejected(t *testing.T) {
	f := newFixture(t)
	created := f.createProspect(t)

	_, err := f.svc.Update(context.Background(), created.ID, transport.UpdateOpportunityRequest{
		AccountID: transport.OptionalUUID{Value: nil, Set: true},
	}, nil)
	require.True(t, apperr.Is(err, apperr.KindValidation))
}
