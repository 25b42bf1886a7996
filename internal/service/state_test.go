package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bandroom/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) GetState(ctx context.Context, userID int64) (*models.DialogState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DialogState), args.Error(1)
}

func (m *MockStateRepository) SetState(ctx context.Context, state *models.DialogState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) ClearState(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestStateService_GetUserState(t *testing.T) {
	mockRepo := new(MockStateRepository)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, &logger)
	ctx := context.Background()
	userID := int64(123)

	t.Run("Success", func(t *testing.T) {
		expected := &models.DialogState{UserID: userID, CurrentStep: "awaiting_band_name"}
		mockRepo.On("GetState", ctx, userID).Return(expected, nil).Once()

		got, err := s.GetUserState(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo.On("GetState", ctx, userID).Return(nil, errors.New("redis down")).Once()

		got, err := s.GetUserState(ctx, userID)
		assert.Error(t, err)
		assert.Nil(t, got)
		mockRepo.AssertExpectations(t)
	})
}

func TestStateService_SetUserState(t *testing.T) {
	mockRepo := new(MockStateRepository)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, &logger)
	ctx := context.Background()

	mockRepo.On("SetState", ctx, mock.MatchedBy(func(st *models.DialogState) bool {
		return st.UserID == 123 && st.CurrentStep == "awaiting_band_name" && st.GetString("date") == "2024-05-06"
	})).Return(nil).Once()

	err := s.SetUserState(ctx, 123, "awaiting_band_name", map[string]interface{}{"date": "2024-05-06"})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestStateService_UpdateUserStateData(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("ExistingState", func(t *testing.T) {
		mockRepo := new(MockStateRepository)
		s := NewStateService(mockRepo, &logger)

		existing := &models.DialogState{
			UserID:      123,
			CurrentStep: "awaiting_band_name",
			TempData:    map[string]interface{}{"date": "2024-05-06"},
		}
		mockRepo.On("GetState", ctx, int64(123)).Return(existing, nil).Once()
		mockRepo.On("SetState", ctx, mock.MatchedBy(func(st *models.DialogState) bool {
			return st.GetString("date") == "2024-05-06" && st.GetString("slot") == "16:00-17:00"
		})).Return(nil).Once()

		err := s.UpdateUserStateData(ctx, 123, "slot", "16:00-17:00")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NoState", func(t *testing.T) {
		mockRepo := new(MockStateRepository)
		s := NewStateService(mockRepo, &logger)

		mockRepo.On("GetState", ctx, int64(456)).Return(nil, nil).Once()
		mockRepo.On("SetState", ctx, mock.MatchedBy(func(st *models.DialogState) bool {
			return st.UserID == 456 && st.GetString("slot") == "17:00-18:00"
		})).Return(nil).Once()

		err := s.UpdateUserStateData(ctx, 456, "slot", "17:00-18:00")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestStateService_ClearUserState(t *testing.T) {
	mockRepo := new(MockStateRepository)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, &logger)
	ctx := context.Background()

	mockRepo.On("ClearState", ctx, int64(123)).Return(nil).Once()

	require.NoError(t, s.ClearUserState(ctx, 123))
	mockRepo.AssertExpectations(t)
}

func TestStateService_CheckRateLimit(t *testing.T) {
	mockRepo := new(MockStateRepository)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, &logger)
	ctx := context.Background()

	mockRepo.On("CheckRateLimit", ctx, int64(123), 20, time.Minute).Return(true, nil).Once()

	allowed, err := s.CheckRateLimit(ctx, 123, 20, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	mockRepo.AssertExpectations(t)
}
