package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"bandroom/internal/schedule"
	"bandroom/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	switch {
	case text == "/start" || strings.ToLower(text) == "сброс" || strings.ToLower(text) == "reset":
		b.clearUserState(ctx, userID)
		b.handleStart(ctx, update)
		return

	case text == "/calendar":
		b.clearUserState(ctx, userID)
		now := time.Now().In(b.loc)
		b.showMonth(chatID, userID, now.Year(), now.Month())
		return

	case text == "/advisor":
		if b.isAdvisor(userID) {
			b.showAdvisorMenu(ctx, chatID)
		}
		return
	}

	state := b.getUserState(ctx, userID)
	if state == nil {
		b.sendMessage(chatID, "Используйте календарь: /calendar")
		return
	}

	switch state.CurrentStep {
	case StateAwaitingBandName:
		b.handleBandNameInput(ctx, update, text, state.GetString("date"), state.GetString("slot"))

	case StateAwaitingRuleSlot:
		b.handleRuleSlotInput(ctx, update, text, state.GetInt("day_of_week"))

	case StateAwaitingSpecialSlot:
		b.handleSpecialSlotInput(ctx, update, text, state.GetString("date"))

	default:
		b.sendMessage(chatID, "Используйте календарь: /calendar")
	}
}

func (b *Bot) handleStart(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	greeting := "🎸 Привет! Это календарь репетиций музыкального клуба.\n\n" +
		"Выберите день, чтобы посмотреть расписание и занять свободный слот."
	if b.isAdvisor(userID) {
		greeting += "\n\nВам доступно меню куратора: /advisor"
	}
	b.sendMessage(chatID, greeting)

	now := time.Now().In(b.loc)
	b.showMonth(chatID, userID, now.Year(), now.Month())
}

// handleBandNameInput завершает бронирование: названием ансамбля занимаем
// слот, выбранный на предыдущем шаге.
func (b *Bot) handleBandNameInput(ctx context.Context, update tgbotapi.Update, text, dateKey, slot string) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if dateKey == "" || slot == "" {
		b.clearUserState(ctx, userID)
		b.sendMessage(chatID, "Сессия устарела. Начните заново: /calendar")
		return
	}

	if len(text) > 150 {
		b.sendMessage(chatID, "Название слишком длинное. Введите название до 150 символов.")
		return
	}

	booking, err := b.store.AddBooking(dateKey, slot, text)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCreated.WithLabelValues(booking.TimeSlot).Inc()
	}

	b.clearUserState(ctx, userID)
	b.sendMessage(chatID, "✅ Слот "+booking.TimeSlot+" занят для «"+booking.BandName+"».")

	if date, err := schedule.ParseDateKey(dateKey, b.loc); err == nil {
		b.showDay(chatID, userID, date)
	}
}

// maxSlotLabelLen держит callback data (например "wdrm|3|<слот>") в пределах
// лимита Telegram в 64 байта.
const maxSlotLabelLen = 32

// validSlotLabel проверяет метку слота из свободного ввода. Метка попадает в
// callback data с разделителем "|", поэтому сам символ "|" запрещён.
func validSlotLabel(label string) bool {
	if label == "" || len(label) > maxSlotLabelLen {
		return false
	}
	return !strings.Contains(label, "|")
}

// handleRuleSlotInput добавляет слот в недельное правило (куратор).
func (b *Bot) handleRuleSlotInput(ctx context.Context, update tgbotapi.Update, text string, dayOfWeek int) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	label := strings.TrimSpace(text)
	if !validSlotLabel(label) {
		b.sendMessage(chatID, "Неверный формат. Введите время слота, например 16:00-17:00.")
		return
	}

	if err := b.store.AddRuleSlot(b.roleFor(userID), dayOfWeek, label); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, userID)
	b.sendMessage(chatID, "✅ Слот "+label+" добавлен: "+weekdayFull[dayOfWeek]+".")
	b.showWeekdayEditor(chatID, 0, dayOfWeek, false)
}

// handleSpecialSlotInput добавляет слот в расписание конкретного дня (куратор).
func (b *Bot) handleSpecialSlotInput(ctx context.Context, update tgbotapi.Update, text, dateKey string) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	label := strings.TrimSpace(text)
	if !validSlotLabel(label) {
		b.sendMessage(chatID, "Неверный формат. Введите время слота, например 16:00-17:00.")
		return
	}

	date, err := schedule.ParseDateKey(dateKey, b.loc)
	if err != nil {
		b.clearUserState(ctx, userID)
		b.sendMessage(chatID, "Сессия устарела. Начните заново: /calendar")
		return
	}

	if err := b.store.AddSpecialSlot(b.roleFor(userID), date, label); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, userID)
	b.sendMessage(chatID, "✅ Слот "+label+" добавлен на "+date.Format("02.01.2006")+".")
	b.showDay(chatID, userID, date)
}

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, schedule.ErrSlotTaken) {
		return "⚠️ Этот слот уже занят. Выберите другое время."
	}

	if errors.Is(err, schedule.ErrEmptyBandName) {
		return "⚠️ Название ансамбля не может быть пустым."
	}

	if errors.Is(err, store.ErrPermissionDenied) {
		return "⚠️ Это действие доступно только куратору клуба."
	}

	return "❌ Произошла ошибка при обработке вашего запроса. Попробуйте позже."
}
