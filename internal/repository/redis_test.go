package repository

import (
	"context"
	"testing"
	"time"

	"bandroom/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStateRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.DialogState{
			UserID:      123,
			CurrentStep: "awaiting_band_name",
			TempData:    map[string]interface{}{"date": "2024-05-06", "slot": "16:00-17:00"},
		}

		err := repo.SetState(ctx, state)
		require.NoError(t, err)

		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, state.UserID, got.UserID)
		assert.Equal(t, state.CurrentStep, got.CurrentStep)
		assert.Equal(t, "2024-05-06", got.GetString("date"))
		assert.Equal(t, "16:00-17:00", got.GetString("slot"))
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		state := &models.DialogState{UserID: 456, CurrentStep: "awaiting_band_name"}
		repo.SetState(ctx, state)

		err := repo.ClearState(ctx, 456)
		require.NoError(t, err)

		got, err := repo.GetState(ctx, 456)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("StateExpires", func(t *testing.T) {
		state := &models.DialogState{UserID: 789, CurrentStep: "awaiting_band_name"}
		require.NoError(t, repo.SetState(ctx, state))

		s.FastForward(2 * time.Hour)

		got, err := repo.GetState(ctx, 789)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := repo.CheckRateLimit(ctx, 111, 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, err := repo.CheckRateLimit(ctx, 111, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(2 * time.Minute)

		allowed, err = repo.CheckRateLimit(ctx, 111, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		nilRepo := NewRedisStateRepository(nil, time.Hour)

		_, err := nilRepo.GetState(ctx, 1)
		assert.Error(t, err)

		err = nilRepo.SetState(ctx, &models.DialogState{UserID: 1})
		assert.Error(t, err)
	})
}
