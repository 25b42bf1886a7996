package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bandroom/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Меню куратора: недельное расписание, сброс данных, синхронизация, экспорт.

func (b *Bot) advisorMenuText() string {
	return "⚙️ Меню куратора" + b.syncStatusLine()
}

func (b *Bot) advisorMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓 Недельное расписание", "week"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить с сервера", "refresh"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Сбросить все данные", "wipe"),
		),
	)
}

func (b *Bot) showAdvisorMenu(ctx context.Context, chatID int64) {
	b.sendWithInlineKeyboard(chatID, b.advisorMenuText(), b.advisorMenuKeyboard())
}

func (b *Bot) editAdvisorMenu(chatID int64, messageID int) {
	keyboard := b.advisorMenuKeyboard()
	b.editMessage(chatID, messageID, b.advisorMenuText(), &keyboard)
}

// showWeekOverview показывает недельные правила по дням.
func (b *Bot) showWeekOverview(chatID int64, messageID int) {
	rules := b.store.Snapshot().Rules
	slotsByDay := make(map[int][]string, len(rules))
	for _, r := range rules {
		slotsByDay[r.DayOfWeek] = r.Slots
	}

	var sb strings.Builder
	sb.WriteString("🗓 Недельное расписание\n\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for day := 0; day <= 6; day++ {
		slots := slotsByDay[day]
		if len(slots) == 0 {
			sb.WriteString(fmt.Sprintf("%s: —\n", weekdayFull[day]))
		} else {
			sb.WriteString(fmt.Sprintf("%s: %s\n", weekdayFull[day], strings.Join(slots, ", ")))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(weekdayFull[day], fmt.Sprintf("wd|%d", day)),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Меню куратора", "adv"),
	))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.editMessage(chatID, messageID, sb.String(), &keyboard)
}

// showWeekdayEditor редактор одного дня недели: список слотов с удалением
// и кнопка добавления.
func (b *Bot) showWeekdayEditor(chatID int64, messageID int, dayOfWeek int, edit bool) {
	rules := b.store.Snapshot().Rules
	var slots []string
	for _, r := range rules {
		if r.DayOfWeek == dayOfWeek {
			slots = r.Slots
			break
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 %s\n\n", weekdayFull[dayOfWeek]))
	if len(slots) == 0 {
		sb.WriteString("Слотов нет. Репетиции в этот день не проводятся.")
	} else {
		for _, slot := range slots {
			sb.WriteString("• " + slot + "\n")
		}
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, slot := range slots {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖ "+slot, fmt.Sprintf("wdrm|%d|%s", dayOfWeek, slot)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить слот", fmt.Sprintf("wdadd|%d", dayOfWeek)),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Недельное расписание", "week"),
	))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if edit {
		b.editMessage(chatID, messageID, sb.String(), &keyboard)
	} else {
		b.sendWithInlineKeyboard(chatID, sb.String(), keyboard)
	}
}

// startRuleSlotDialog предлагает типовые слоты и ждёт свободный ввод.
func (b *Bot) startRuleSlotDialog(ctx context.Context, callback *tgbotapi.CallbackQuery, dayOfWeek int) {
	b.setUserState(ctx, callback.From.ID, StateAwaitingRuleSlot, map[string]interface{}{
		"day_of_week": dayOfWeek,
	})

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, opt := range timeOptionRows() {
		var row []tgbotapi.InlineKeyboardButton
		for _, label := range opt {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("wdslot|%d|%s", dayOfWeek, label)))
		}
		rows = append(rows, row)
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendWithInlineKeyboard(callback.Message.Chat.ID,
		"Выберите время или введите своё (например, 19:00-20:00):", keyboard)
}

// startSpecialSlotDialog — то же самое, но для расписания конкретного дня.
func (b *Bot) startSpecialSlotDialog(ctx context.Context, callback *tgbotapi.CallbackQuery, dateKey string) {
	b.setUserState(ctx, callback.From.ID, StateAwaitingSpecialSlot, map[string]interface{}{
		"date": dateKey,
	})

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, opt := range timeOptionRows() {
		var row []tgbotapi.InlineKeyboardButton
		for _, label := range opt {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "spslot|"+dateKey+"|"+label))
		}
		rows = append(rows, row)
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendWithInlineKeyboard(callback.Message.Chat.ID,
		"Выберите время или введите своё (например, 19:00-20:00):", keyboard)
}

func (b *Bot) confirmResetDay(chatID int64, messageID int, dateKey string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, вернуть", "spresetok|"+dateKey),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Нет", "day|"+dateKey),
		),
	)
	b.editMessage(chatID, messageID,
		"Вернуть этому дню обычное недельное расписание? Изменения дня будут удалены.", &keyboard)
}

func (b *Bot) confirmWipeAll(chatID int64, messageID int) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, сбросить всё", "wipeok"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Нет", "adv"),
		),
	)
	b.editMessage(chatID, messageID,
		"⚠️ Будут удалены все брони и изменения расписания, недельные правила вернутся к стандартным. Продолжить?", &keyboard)
}

// handleExportMonth выгружает месяц в Excel и отправляет файл куратору.
func (b *Bot) handleExportMonth(ctx context.Context, chatID int64, monthStr string) {
	year, month, err := parseMonthKey(monthStr, b.loc)
	if err != nil {
		b.logger.Error().Err(err).Str("month", monthStr).Msg("Error parsing export month")
		return
	}

	filePath, err := b.exportMonthToExcel(ctx, year, month)
	if err != nil {
		b.logger.Error().Err(err).Msg("Error exporting month to Excel")
		b.sendMessage(chatID, "Ошибка при создании файла экспорта")
		return
	}

	file, err := os.Open(filePath)
	if err != nil {
		b.logger.Error().Err(err).Str("file_path", filePath).Msg("Error opening export file")
		b.sendMessage(chatID, "Ошибка при открытии файла")
		return
	}
	defer file.Close()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{
		Name:   filepath.Base(filePath),
		Reader: file,
	})
	doc.Caption = "📊 Репетиции: " + monthTitle(year, month)

	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Msg("Error sending export document")
		b.sendMessage(chatID, "Ошибка при отправке файла")
	}
}

// timeOptionRows группирует типовые слоты по две кнопки в ряд.
func timeOptionRows() [][]string {
	opts := models.TimeOptions
	var rows [][]string
	for i := 0; i < len(opts); i += 2 {
		end := i + 2
		if end > len(opts) {
			end = len(opts)
		}
		rows = append(rows, opts[i:end])
	}
	return rows
}
