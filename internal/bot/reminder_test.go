package bot

import (
	"context"
	"testing"
	"time"

	"bandroom/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextReminderTime(t *testing.T) {
	now := time.Date(2024, 5, 6, 19, 0, 0, 0, time.UTC)

	t.Run("LaterToday", func(t *testing.T) {
		next := nextReminderTime(now, 20, 30)
		assert.Equal(t, time.Date(2024, 5, 6, 20, 30, 0, 0, time.UTC), next)
	})

	t.Run("MinuteIsKept", func(t *testing.T) {
		next := nextReminderTime(now, 20, 45)
		assert.Equal(t, 45, next.Minute())
	})

	t.Run("AlreadyPassedRollsToTomorrow", func(t *testing.T) {
		next := nextReminderTime(now, 9, 0)
		assert.Equal(t, time.Date(2024, 5, 7, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("ExactlyNowRollsToTomorrow", func(t *testing.T) {
		next := nextReminderTime(now, 19, 0)
		assert.Equal(t, time.Date(2024, 5, 7, 19, 0, 0, 0, time.UTC), next)
	})
}

func TestSendTomorrowSummary(t *testing.T) {
	b, tg, st := newTestBot(t)

	tomorrow := time.Now().AddDate(0, 0, 1)
	_, err := st.AddBooking(schedule.DateKey(tomorrow), "16:00-17:00", "Band A")
	require.NoError(t, err)

	b.sendTomorrowSummary()

	last := tg.lastText()
	assert.Contains(t, last, "Завтра репетиции")
	assert.Contains(t, last, "Band A")
}

func TestStartRemindersDisabledWithoutTime(t *testing.T) {
	b, tg, _ := newTestBot(t)
	b.config.Bot.ReminderTime = ""

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.StartReminders(ctx)

	assert.Empty(t, tg.sent())
}
