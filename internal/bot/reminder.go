package bot

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StartReminders schedules a daily advisor summary of tomorrow's rehearsals.
func (b *Bot) StartReminders(ctx context.Context) {
	if b == nil || b.tgService == nil || b.config.Bot.ReminderTime == "" {
		return
	}

	go func() {
		var hour, minute int
		if _, err := fmt.Sscanf(b.config.Bot.ReminderTime, "%d:%d", &hour, &minute); err != nil {
			b.logger.Error().Err(err).Str("reminder_time", b.config.Bot.ReminderTime).Msg("Invalid reminder time format")
			return
		}

		// Ждем ближайшего срабатывания, дальше раз в сутки
		next := nextReminderTime(time.Now().In(b.loc), hour, minute)
		timer := time.NewTimer(time.Until(next))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendTomorrowSummary()
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

func (b *Bot) sendTomorrowSummary() {
	tomorrow := time.Now().In(b.loc).AddDate(0, 0, 1)
	bookings := b.store.BookingsForDate(tomorrow)
	if len(bookings) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("🔔 Завтра репетиции:\n\n")
	for _, bk := range bookings {
		sb.WriteString(fmt.Sprintf("🕐 %s — %s\n", bk.TimeSlot, bk.BandName))
	}

	b.notifyAdvisors(sb.String())
}

// nextReminderTime returns the first HH:MM occurrence strictly after now.
func nextReminderTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
