package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"bandroom/internal/events"
	"bandroom/internal/models"
	"bandroom/internal/schedule"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) FetchAll(ctx context.Context) (models.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Snapshot), args.Error(1)
}

func (m *mockRemote) PushAll(ctx context.Context, snapshot models.Snapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func newTestStore(remote *mockRemote) *Store {
	logger := zerolog.Nop()
	s := New(remote, events.NewEventBus(), &logger)
	s.settleDelay = time.Millisecond
	s.clock = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestStoreStartsWithDefaultRules(t *testing.T) {
	s := newTestStore(nil)
	snap := s.Snapshot()
	assert.Equal(t, models.DefaultRules(), snap.Rules)
	assert.Empty(t, snap.Bookings)
	assert.Empty(t, snap.SpecialSchedules)
}

func TestAddBooking(t *testing.T) {
	t.Run("PushesOnSuccess", func(t *testing.T) {
		remote := new(mockRemote)
		remote.On("PushAll", mock.Anything, mock.Anything).Return(nil)

		s := newTestStore(remote)
		booking, err := s.AddBooking("2024-05-06", "16:00-17:00", "Band A")
		require.NoError(t, err)
		assert.Equal(t, "Band A", booking.BandName)

		s.pushes.Wait()
		remote.AssertNumberOfCalls(t, "PushAll", 1)
	})

	t.Run("RejectionDoesNotPush", func(t *testing.T) {
		remote := new(mockRemote)
		remote.On("PushAll", mock.Anything, mock.Anything).Return(nil)

		s := newTestStore(remote)
		_, err := s.AddBooking("2024-05-06", "16:00-17:00", "Band A")
		require.NoError(t, err)

		_, err = s.AddBooking("2024-05-06", "16:00-17:00", "Band B")
		assert.ErrorIs(t, err, schedule.ErrSlotTaken)

		_, err = s.AddBooking("2024-05-06", "17:00-18:00", "  ")
		assert.ErrorIs(t, err, schedule.ErrEmptyBandName)

		s.pushes.Wait()
		remote.AssertNumberOfCalls(t, "PushAll", 1)
		assert.Len(t, s.Snapshot().Bookings, 1)
	})
}

func TestRemoveBooking(t *testing.T) {
	remote := new(mockRemote)
	remote.On("PushAll", mock.Anything, mock.Anything).Return(nil)

	s := newTestStore(remote)
	booking, err := s.AddBooking("2024-05-06", "16:00-17:00", "Band A")
	require.NoError(t, err)

	s.RemoveBooking(booking.ID)
	assert.Empty(t, s.Snapshot().Bookings)

	// unknown id leaves the collection unchanged
	s.RemoveBooking("id-0-unknown")
	assert.Empty(t, s.Snapshot().Bookings)
	s.pushes.Wait()
}

func TestAdvisorOnlyMutations(t *testing.T) {
	date := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	t.Run("MemberDenied", func(t *testing.T) {
		s := newTestStore(nil)
		before := s.Snapshot()

		assert.ErrorIs(t, s.AddRuleSlot(models.RoleMember, 1, "18:00-19:00"), ErrPermissionDenied)
		assert.ErrorIs(t, s.RemoveRuleSlot(models.RoleMember, 1, "16:00-17:00"), ErrPermissionDenied)
		assert.ErrorIs(t, s.AddSpecialSlot(models.RoleMember, date, "18:00-19:00"), ErrPermissionDenied)
		assert.ErrorIs(t, s.RemoveSpecialSlot(models.RoleMember, date, "16:00-17:00"), ErrPermissionDenied)
		assert.ErrorIs(t, s.ResetSpecialDay(models.RoleMember, date), ErrPermissionDenied)
		assert.ErrorIs(t, s.ResetAll(models.RoleMember), ErrPermissionDenied)

		assert.Equal(t, before, s.Snapshot())
	})

	t.Run("AdvisorAllowed", func(t *testing.T) {
		remote := new(mockRemote)
		remote.On("PushAll", mock.Anything, mock.Anything).Return(nil)

		s := newTestStore(remote)
		require.NoError(t, s.AddRuleSlot(models.RoleAdvisor, 3, "18:00-19:00"))
		require.NoError(t, s.AddSpecialSlot(models.RoleAdvisor, date, "18:00-19:00"))
		require.NoError(t, s.ResetSpecialDay(models.RoleAdvisor, date))

		s.pushes.Wait()
		snap := s.Snapshot()
		assert.Empty(t, snap.SpecialSchedules)

		var wed *models.AvailabilityRule
		for i := range snap.Rules {
			if snap.Rules[i].DayOfWeek == 3 {
				wed = &snap.Rules[i]
			}
		}
		require.NotNil(t, wed)
		assert.Equal(t, []string{"18:00-19:00"}, wed.Slots)
	})
}

func TestResetAll(t *testing.T) {
	remote := new(mockRemote)
	remote.On("PushAll", mock.Anything, mock.Anything).Return(nil)

	s := newTestStore(remote)
	_, err := s.AddBooking("2024-05-06", "16:00-17:00", "Band A")
	require.NoError(t, err)
	require.NoError(t, s.AddRuleSlot(models.RoleAdvisor, 0, "10:00-11:00"))

	require.NoError(t, s.ResetAll(models.RoleAdvisor))
	s.pushes.Wait()

	snap := s.Snapshot()
	assert.Empty(t, snap.Bookings)
	assert.Empty(t, snap.SpecialSchedules)
	assert.Equal(t, models.DefaultRules(), snap.Rules)
}

func TestRefresh(t *testing.T) {
	t.Run("ReplacesStateWholesale", func(t *testing.T) {
		fetched := models.Snapshot{
			Bookings: []models.Booking{{ID: "id-1-abc", Date: "2024-05-06", TimeSlot: "16:00-17:00", BandName: "Band A"}},
		}
		remote := new(mockRemote)
		remote.On("FetchAll", mock.Anything).Return(fetched, nil)

		s := newTestStore(remote)
		require.NoError(t, s.Refresh(context.Background()))

		snap := s.Snapshot()
		assert.Equal(t, fetched.Bookings, snap.Bookings)
		// default rules are gone: fetch replaces everything
		assert.Empty(t, snap.Rules)
	})

	t.Run("FailurePreservesState", func(t *testing.T) {
		remote := new(mockRemote)
		remote.On("FetchAll", mock.Anything).Return(models.Snapshot{}, errors.New("network down"))

		s := newTestStore(remote)
		before := s.Snapshot()

		err := s.Refresh(context.Background())
		assert.Error(t, err)
		assert.Equal(t, before, s.Snapshot())
	})
}

func TestSyncStatus(t *testing.T) {
	t.Run("SettlesToIdleAfterSuccess", func(t *testing.T) {
		remote := new(mockRemote)
		remote.On("PushAll", mock.Anything, mock.Anything).Return(nil)

		s := newTestStore(remote)
		_, err := s.AddBooking("2024-05-06", "16:00-17:00", "Band A")
		require.NoError(t, err)

		s.pushes.Wait()
		assert.Equal(t, models.SyncIdle, s.SyncStatus())
	})

	t.Run("FailureIsSilent", func(t *testing.T) {
		remote := new(mockRemote)
		remote.On("PushAll", mock.Anything, mock.Anything).Return(errors.New("store down"))

		s := newTestStore(remote)
		booking, err := s.AddBooking("2024-05-06", "16:00-17:00", "Band A")
		require.NoError(t, err)

		s.pushes.Wait()
		assert.Equal(t, models.SyncFailedSilently, s.SyncStatus())

		// local state keeps the booking the push failed to persist
		bookings := s.BookingsForDate(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC))
		require.Len(t, bookings, 1)
		assert.Equal(t, booking.ID, bookings[0].ID)
	})
}

func TestBookingsForDateSorted(t *testing.T) {
	remote := new(mockRemote)
	remote.On("PushAll", mock.Anything, mock.Anything).Return(nil)

	s := newTestStore(remote)
	_, err := s.AddBooking("2024-05-06", "17:00-18:00", "Band B")
	require.NoError(t, err)
	_, err = s.AddBooking("2024-05-06", "16:00-17:00", "Band A")
	require.NoError(t, err)
	s.pushes.Wait()

	bookings := s.BookingsForDate(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC))
	require.Len(t, bookings, 2)
	assert.Equal(t, "16:00-17:00", bookings[0].TimeSlot)
	assert.Equal(t, "17:00-18:00", bookings[1].TimeSlot)
}
