package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"salesdesk_backend/internal/accounts"
	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/contacts"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type fakeLeadStore struct {
	leads  map[uuid.UUID]Lead
	rolled bool
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{leads: make(map[uuid.UUID]Lead)}
}

func (f *fakeLeadStore) InTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	snapshot := make(map[uuid.UUID]Lead, len(f.leads))
	for k, v := range f.leads {
		snapshot[k] = v
	}
	if err := fn(nil); err != nil {
		f.leads = snapshot
		f.rolled = true
		return err
	}
	return nil
}

func (f *fakeLeadStore) Create(_ context.Context, params CreateLeadParams) (Lead, error) {
	l := Lead{
		ID:        uuid.New(),
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Phone:     params.Phone,
		Company:   params.Company,
		Source:    params.Source,
		Status:    params.Status,
		OwnerID:   params.OwnerID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.leads[l.ID] = l
	return l, nil
}

func (f *fakeLeadStore) FindActive(_ context.Context, _ db.Querier, id uuid.UUID) (Lead, error) {
	l, ok := f.leads[id]
	if !ok || l.DeletedAt != nil {
		return Lead{}, ErrNotFound
	}
	return l, nil
}

func (f *fakeLeadStore) List(context.Context, ListFilter) ([]Lead, error) { return nil, nil }

func (f *fakeLeadStore) Update(_ context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	if params.Status != nil {
		l.Status = *params.Status
	}
	f.leads[id] = l
	return l, nil
}

func (f *fakeLeadStore) MarkConverted(_ context.Context, _ db.Querier, id, accountID, contactID uuid.UUID) (Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	l.Status = StatusConverted
	l.ConvertedAccountID = &accountID
	l.ConvertedContactID = &contactID
	f.leads[id] = l
	return l, nil
}

func (f *fakeLeadStore) SetConvertedOpportunity(_ context.Context, id, oppID uuid.UUID) (Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	l.ConvertedOpportunityID = &oppID
	f.leads[id] = l
	return l, nil
}

func (f *fakeLeadStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	l, ok := f.leads[id]
	if !ok || l.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now()
	l.DeletedAt = &now
	f.leads[id] = l
	return nil
}

type fakeAccountWriter struct {
	created []accounts.CreateAccountParams
	known   map[uuid.UUID]accounts.Account
}

func (f *fakeAccountWriter) Create(_ context.Context, _ db.Querier, params accounts.CreateAccountParams) (accounts.Account, error) {
	f.created = append(f.created, params)
	return accounts.Account{ID: uuid.New(), Name: params.Name}, nil
}

func (f *fakeAccountWriter) FindActive(_ context.Context, _ db.Querier, id uuid.UUID) (accounts.Account, error) {
	a, ok := f.known[id]
	if !ok {
		return accounts.Account{}, accounts.ErrNotFound
	}
	return a, nil
}

type fakeContactWriter struct {
	created []contacts.CreateContactParams
	fail    error
}

func (f *fakeContactWriter) Create(_ context.Context, _ db.Querier, params contacts.CreateContactParams) (contacts.Contact, error) {
	if f.fail != nil {
		return contacts.Contact{}, f.fail
	}
	f.created = append(f.created, params)
	return contacts.Contact{ID: uuid.New(), FirstName: params.FirstName, LastName: params.LastName}, nil
}

type fakeAuditAppender struct {
	entries []audit.AppendParams
}

func (f *fakeAuditAppender) Append(_ context.Context, _ db.Querier, params audit.AppendParams) (audit.Entry, error) {
	f.entries = append(f.entries, params)
	return audit.Entry{ID: uuid.New()}, nil
}

type fakeDealCreator struct {
	inputs []NewOpportunity
	fail   error
}

func (f *fakeDealCreator) CreateFromLead(_ context.Context, in NewOpportunity) (uuid.UUID, error) {
	if f.fail != nil {
		return uuid.Nil, f.fail
	}
	f.inputs = append(f.inputs, in)
	return uuid.New(), nil
}

func seedLead(store *fakeLeadStore) Lead {
	company := "Initech"
	lead, _ := store.Create(context.Background(), CreateLeadParams{
		FirstName: "Sam",
		LastName:  "Seller",
		Company:   &company,
		Status:    StatusQualified,
		OwnerID:   uuid.New(),
	})
	return lead
}

func TestConvertCreatesAccountContactAndMarksLead(t *testing.T) {
	store := newFakeLeadStore()
	accountsPort := &fakeAccountWriter{known: map[uuid.UUID]accounts.Account{}}
	contactsPort := &fakeContactWriter{}
	auditPort := &fakeAuditAppender{}
	deals := &fakeDealCreator{}
	svc := NewService(store, accountsPort, contactsPort, auditPort, deals)

	lead := seedLead(store)

	resp, err := svc.Convert(context.Background(), lead.ID, nil, ConvertLeadRequest{})
	require.NoError(t, err)

	require.Len(t, accountsPort.created, 1)
	require.Equal(t, "Initech", accountsPort.created[0].Name)
	require.Len(t, contactsPort.created, 1)
	require.Equal(t, "Sam", contactsPort.created[0].FirstName)

	require.Equal(t, StatusConverted, resp.Lead.Status)
	require.Equal(t, resp.AccountID, *resp.Lead.ConvertedAccountID)
	require.Equal(t, resp.ContactID, *resp.Lead.ConvertedContactID)
	require.Nil(t, resp.OpportunityID)

	require.Len(t, auditPort.entries, 1)
	require.Equal(t, "lead", auditPort.entries[0].EntityType)
	require.Equal(t, audit.ActionUpdate, auditPort.entries[0].Action)
	require.Empty(t, deals.inputs)
}

func TestConvertOpensDealThroughEngine(t *testing.T) {
	store := newFakeLeadStore()
	accountsPort := &fakeAccountWriter{known: map[uuid.UUID]accounts.Account{}}
	deals := &fakeDealCreator{}
	svc := NewService(store, accountsPort, &fakeContactWriter{}, &fakeAuditAppender{}, deals)

	lead := seedLead(store)
	stageID := uuid.New()

	resp, err := svc.Convert(context.Background(), lead.ID, nil, ConvertLeadRequest{
		Opportunity: &ConvertOpportunityRequest{Name: "Initech rollout", StageID: stageID},
	})
	require.NoError(t, err)

	require.Len(t, deals.inputs, 1)
	in := deals.inputs[0]
	require.Equal(t, "Initech rollout", in.Name)
	require.Equal(t, stageID, in.StageID)
	require.Equal(t, resp.AccountID, in.AccountID)
	require.Equal(t, resp.ContactID, in.ContactID)
	require.Equal(t, lead.OwnerID, in.OwnerID)

	require.NotNil(t, resp.OpportunityID)
	require.Equal(t, *resp.OpportunityID, *resp.Lead.ConvertedOpportunityID)
}

func TestConvertAlreadyConvertedRejected(t *testing.T) {
	store := newFakeLeadStore()
	svc := NewService(store, &fakeAccountWriter{}, &fakeContactWriter{}, &fakeAuditAppender{}, &fakeDealCreator{})

	lead := seedLead(store)
	converted := StatusConverted
	_, err := store.Update(context.Background(), lead.ID, UpdateLeadParams{Status: &converted})
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), lead.ID, nil, ConvertLeadRequest{})
	require.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestConvertRollsBackWhenContactCreationFails(t *testing.T) {
	store := newFakeLeadStore()
	contactsPort := &fakeContactWriter{fail: errors.New("contacts table unavailable")}
	auditPort := &fakeAuditAppender{}
	svc := NewService(store, &fakeAccountWriter{known: map[uuid.UUID]accounts.Account{}}, contactsPort, auditPort, &fakeDealCreator{})

	lead := seedLead(store)

	_, err := svc.Convert(context.Background(), lead.ID, nil, ConvertLeadRequest{})
	require.Error(t, err)
	require.True(t, store.rolled)

	stored := store.leads[lead.ID]
	require.Equal(t, StatusQualified, stored.Status)
	require.Nil(t, stored.ConvertedAccountID)
	require.Empty(t, auditPort.entries)
}

func TestUpdateFrozenAfterConversion(t *testing.T) {
	store := newFakeLeadStore()
	svc := NewService(store, &fakeAccountWriter{}, &fakeContactWriter{}, &fakeAuditAppender{}, &fakeDealCreator{})

	lead := seedLead(store)
	converted := StatusConverted
	_, err := store.Update(context.Background(), lead.ID, UpdateLeadParams{Status: &converted})
	require.NoError(t, err)

	name := "Sammy"
	_, err = svc.Update(context.Background(), lead.ID, UpdateLeadRequest{FirstName: &name})
	require.True(t, apperr.Is(err, apperr.KindConflict))
}
