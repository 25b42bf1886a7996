package bot

import (
	"encoding/json"
	"fmt"

	"bandroom/internal/events"
)

// RegisterNotifications подписывает бота на события хранилища: кураторы
// получают сообщения о новых бронях и отменах.
func (b *Bot) RegisterNotifications(bus *events.EventBus) {
	if bus == nil {
		return
	}

	bus.Subscribe(events.EventBookingCreated, func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		b.notifyAdvisors(fmt.Sprintf("🆕 Новая бронь:\n\n📅 %s\n🕐 %s\n🎸 %s",
			payload.Date, payload.TimeSlot, payload.BandName))
		return nil
	})

	bus.Subscribe(events.EventBookingRemoved, func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		b.notifyAdvisors(fmt.Sprintf("❌ Бронь отменена:\n\n📅 %s\n🕐 %s\n🎸 %s",
			payload.Date, payload.TimeSlot, payload.BandName))
		return nil
	})
}

func (b *Bot) notifyAdvisors(message string) {
	for _, advisorID := range b.config.Advisors {
		if _, err := b.tgService.SendMessage(advisorID, message); err != nil {
			b.logger.Error().Err(err).Int64("advisor_id", advisorID).Msg("Failed to notify advisor")
		}
	}
}
