package pipeline

import (
	"context"
	"testing"

	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, params CreateStageParams) (Stage, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Stage), args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, q db.Querier, id uuid.UUID) (Stage, error) {
	args := m.Called(ctx, q, id)
	return args.Get(0).(Stage), args.Error(1)
}

func (m *mockStore) List(ctx context.Context) ([]Stage, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Stage), args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, id uuid.UUID, params UpdateStageParams) (Stage, error) {
	args := m.Called(ctx, id, params)
	return args.Get(0).(Stage), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStore) CountOpportunities(ctx context.Context, stageID uuid.UUID) (int64, error) {
	args := m.Called(ctx, stageID)
	return args.Get(0).(int64), args.Error(1)
}

func TestCreateRejectsWonAndLost(t *testing.T) {
	repo := new(mockStore)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateStageRequest{
		Name: "Broken", IsWon: true, IsLost: true,
	})

	require.True(t, apperr.Is(err, apperr.KindValidation))
	repo.AssertNotCalled(t, "Create")
}

func TestUpdateRejectsFlagCombinationWithStoredState(t *testing.T) {
	repo := new(mockStore)
	svc := NewService(repo)
	id := uuid.New()

	// Stage is already lost; caller tries to also mark it won.
	repo.On("GetByID", mock.Anything, nil, id).Return(Stage{ID: id, IsLost: true}, nil)

	won := true
	_, err := svc.Update(context.Background(), id, UpdateStageRequest{IsWon: &won})

	require.True(t, apperr.Is(err, apperr.KindValidation))
	repo.AssertNotCalled(t, "Update")
}

func TestDeleteGuardedWhileOpportunitiesAttached(t *testing.T) {
	repo := new(mockStore)
	svc := NewService(repo)
	id := uuid.New()

	repo.On("CountOpportunities", mock.Anything, id).Return(int64(3), nil)

	err := svc.Delete(context.Background(), id)

	require.True(t, apperr.Is(err, apperr.KindConflict))
	repo.AssertNotCalled(t, "Delete")
}

func TestDeleteSucceedsWhenUnreferenced(t *testing.T) {
	repo := new(mockStore)
	svc := NewService(repo)
	id := uuid.New()

	repo.On("CountOpportunities", mock.Anything, id).Return(int64(0), nil)
	repo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	repo.AssertExpectations(t)
}
