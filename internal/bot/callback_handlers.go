package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"bandroom/internal/schedule"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// handleCallbackQuery обработка callback запросов от inline кнопок
func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	if callback == nil || callback.Message == nil {
		return
	}

	l := zerolog.Ctx(ctx)
	l.Debug().
		Int64("user_id", callback.From.ID).
		Str("data", callback.Data).
		Msg("Handling callback query")

	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	parts := strings.Split(callback.Data, "|")
	action := parts[0]
	ack := ""

	switch action {
	case cbNoop:
		// Ячейка-заглушка в календарной сетке

	case "cal":
		if len(parts) == 2 {
			if year, month, err := parseMonthKey(parts[1], b.loc); err == nil {
				b.editMonth(chatID, messageID, userID, year, month)
			}
		}

	case "day":
		if date, ok := b.parseDateArg(parts, 1); ok {
			b.editDay(chatID, messageID, userID, date)
		}

	case "book":
		if len(parts) == 3 {
			b.startBandNameDialog(ctx, callback, parts[1], parts[2])
		}

	case "del":
		if len(parts) == 3 {
			b.confirmCancelBooking(chatID, messageID, parts[1], parts[2])
		}

	case "delok":
		if len(parts) == 3 {
			b.store.RemoveBooking(parts[1])
			if b.metrics != nil {
				b.metrics.BookingsRemoved.Inc()
			}
			ack = "Бронь отменена"
			if date, ok := b.parseDateArg(parts, 2); ok {
				b.editDay(chatID, messageID, userID, date)
			}
		}

	case "adv":
		if b.isAdvisor(userID) {
			b.editAdvisorMenu(chatID, messageID)
		}

	case "week":
		if b.isAdvisor(userID) {
			b.showWeekOverview(chatID, messageID)
		}

	case "wd":
		if b.isAdvisor(userID) && len(parts) == 2 {
			if day, err := strconv.Atoi(parts[1]); err == nil && day >= 0 && day <= 6 {
				b.showWeekdayEditor(chatID, messageID, day, true)
			}
		}

	case "wdadd":
		if b.isAdvisor(userID) && len(parts) == 2 {
			if day, err := strconv.Atoi(parts[1]); err == nil && day >= 0 && day <= 6 {
				b.startRuleSlotDialog(ctx, callback, day)
			}
		}

	case "wdslot":
		if b.isAdvisor(userID) && len(parts) == 3 {
			if day, err := strconv.Atoi(parts[1]); err == nil && day >= 0 && day <= 6 {
				b.clearUserState(ctx, userID)
				if err := b.store.AddRuleSlot(b.roleFor(userID), day, parts[2]); err != nil {
					b.sendMessage(chatID, b.getErrorMessage(err))
				} else {
					ack = "Слот добавлен"
					b.showWeekdayEditor(chatID, messageID, day, true)
				}
			}
		}

	case "wdrm":
		if b.isAdvisor(userID) && len(parts) == 3 {
			if day, err := strconv.Atoi(parts[1]); err == nil && day >= 0 && day <= 6 {
				if err := b.store.RemoveRuleSlot(b.roleFor(userID), day, parts[2]); err != nil {
					b.sendMessage(chatID, b.getErrorMessage(err))
				} else {
					ack = "Слот убран"
					b.showWeekdayEditor(chatID, messageID, day, true)
				}
			}
		}

	case "spadd":
		if b.isAdvisor(userID) && len(parts) == 2 {
			b.startSpecialSlotDialog(ctx, callback, parts[1])
		}

	case "spslot":
		if b.isAdvisor(userID) && len(parts) == 3 {
			if date, ok := b.parseDateArg(parts, 1); ok {
				b.clearUserState(ctx, userID)
				if err := b.store.AddSpecialSlot(b.roleFor(userID), date, parts[2]); err != nil {
					b.sendMessage(chatID, b.getErrorMessage(err))
				} else {
					ack = "Слот добавлен"
					b.editDay(chatID, messageID, userID, date)
				}
			}
		}

	case "sprm":
		if b.isAdvisor(userID) && len(parts) == 3 {
			if date, ok := b.parseDateArg(parts, 1); ok {
				if err := b.store.RemoveSpecialSlot(b.roleFor(userID), date, parts[2]); err != nil {
					b.sendMessage(chatID, b.getErrorMessage(err))
				} else {
					ack = "Слот убран"
					b.editDay(chatID, messageID, userID, date)
				}
			}
		}

	case "spreset":
		if b.isAdvisor(userID) && len(parts) == 2 {
			b.confirmResetDay(chatID, messageID, parts[1])
		}

	case "spresetok":
		if b.isAdvisor(userID) && len(parts) == 2 {
			if date, ok := b.parseDateArg(parts, 1); ok {
				if err := b.store.ResetSpecialDay(b.roleFor(userID), date); err != nil {
					b.sendMessage(chatID, b.getErrorMessage(err))
				} else {
					ack = "Обычное расписание восстановлено"
					b.editDay(chatID, messageID, userID, date)
				}
			}
		}

	case "wipe":
		if b.isAdvisor(userID) {
			b.confirmWipeAll(chatID, messageID)
		}

	case "wipeok":
		if b.isAdvisor(userID) {
			if err := b.store.ResetAll(b.roleFor(userID)); err != nil {
				b.sendMessage(chatID, b.getErrorMessage(err))
			} else {
				ack = "Все данные сброшены"
				b.editAdvisorMenu(chatID, messageID)
			}
		}

	case "refresh":
		if b.isAdvisor(userID) {
			if err := b.store.Refresh(ctx); err != nil {
				b.sendMessage(chatID, "⚠️ Не удалось загрузить данные с сервера, показаны локальные.")
			} else {
				ack = "Данные обновлены"
			}
			b.editAdvisorMenu(chatID, messageID)
		}

	case "export":
		if b.isAdvisor(userID) && len(parts) == 2 {
			b.handleExportMonth(ctx, chatID, parts[1])
		}

	default:
		b.logger.Warn().Str("callback_data", callback.Data).Msg("Unknown callback data")
	}

	// Ответ на callback (убирает "часики" на кнопке)
	if err := b.tgService.AnswerCallback(callback.ID, ack); err != nil {
		b.logger.Error().Err(err).Msg("Failed to answer callback")
	}
}

func (b *Bot) parseDateArg(parts []string, idx int) (date time.Time, ok bool) {
	if len(parts) <= idx {
		return time.Time{}, false
	}
	date, err := schedule.ParseDateKey(parts[idx], b.loc)
	if err != nil {
		b.logger.Error().Err(err).Str("date_key", parts[idx]).Msg("Error parsing date key")
		return time.Time{}, false
	}
	return date, true
}

// startBandNameDialog запоминает выбранный слот и ждёт название ансамбля.
func (b *Bot) startBandNameDialog(ctx context.Context, callback *tgbotapi.CallbackQuery, dateKey, slot string) {
	b.setUserState(ctx, callback.From.ID, StateAwaitingBandName, map[string]interface{}{
		"date": dateKey,
		"slot": slot,
	})
	b.sendMessage(callback.Message.Chat.ID,
		"🎤 Слот "+slot+". Введите название ансамбля:")
}

func (b *Bot) confirmCancelBooking(chatID int64, messageID int, bookingID, dateKey string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, отменить", "delok|"+bookingID+"|"+dateKey),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Нет", "day|"+dateKey),
		),
	)
	b.editMessage(chatID, messageID, "Отменить эту бронь?", &keyboard)
}
