package bot

import (
	"fmt"
	"strings"
	"time"

	"bandroom/internal/models"
	"bandroom/internal/schedule"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cbNoop = "noop"
)

// monthKey formats a month for callback data, e.g. "2024-05".
func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func parseMonthKey(key string, loc *time.Location) (int, time.Month, error) {
	t, err := time.ParseInLocation("2006-01", key, loc)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}

func monthTitle(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", monthNames[int(month)-1], year)
}

// buildMonthKeyboard собирает календарную сетку месяца: строка навигации,
// заголовок дней недели и ячейки по неделям. Прошедшие дни не кликабельны.
func (b *Bot) buildMonthKeyboard(year int, month time.Month, advisor bool) tgbotapi.InlineKeyboardMarkup {
	now := time.Now().In(b.loc)
	days := schedule.MonthDays(year, month, b.loc)

	prev := time.Date(year, month, 1, 0, 0, 0, 0, b.loc).AddDate(0, -1, 0)
	next := time.Date(year, month, 1, 0, 0, 0, 0, b.loc).AddDate(0, 1, 0)

	var rows [][]tgbotapi.InlineKeyboardButton

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️", "cal|"+monthKey(prev.Year(), prev.Month())),
		tgbotapi.NewInlineKeyboardButtonData(monthTitle(year, month), cbNoop),
		tgbotapi.NewInlineKeyboardButtonData("▶️", "cal|"+monthKey(next.Year(), next.Month())),
	))

	var header []tgbotapi.InlineKeyboardButton
	for _, wd := range weekdayShort {
		header = append(header, tgbotapi.NewInlineKeyboardButtonData(wd, cbNoop))
	}
	rows = append(rows, header)

	week := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < schedule.Weekday(days[0]); i++ {
		week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", cbNoop))
	}

	for _, day := range days {
		week = append(week, b.dayCell(day, now))
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", cbNoop))
		}
		rows = append(rows, week)
	}

	if advisor {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Экспорт месяца", "export|"+monthKey(year, month)),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Меню куратора", "adv"),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// dayCell renders one calendar cell. Booked days get a dot, days with a
// special schedule an asterisk; past days are inert.
func (b *Bot) dayCell(day, now time.Time) tgbotapi.InlineKeyboardButton {
	label := fmt.Sprintf("%d", day.Day())
	if len(b.store.BookingsForDate(day)) > 0 {
		label += "•"
	}
	if b.store.HasSpecial(day) {
		label += "✱"
	}

	if schedule.IsPastDay(day, now) {
		return tgbotapi.NewInlineKeyboardButtonData(label, cbNoop)
	}
	return tgbotapi.NewInlineKeyboardButtonData(label, "day|"+schedule.DateKey(day))
}

// syncStatusLine shows the cosmetic sync indicator under the calendar.
func (b *Bot) syncStatusLine() string {
	switch b.store.SyncStatus() {
	case models.SyncInFlight:
		return "\n☁️ Синхронизация..."
	case models.SyncFailedSilently:
		return "\n⚠️ Последняя синхронизация не удалась, данные сохранены локально."
	default:
		return ""
	}
}

func (b *Bot) calendarText(year int, month time.Month) string {
	return fmt.Sprintf("📅 %s\n\nВыберите день. • — есть репетиции, ✱ — изменённое расписание.%s",
		monthTitle(year, month), b.syncStatusLine())
}

func (b *Bot) showMonth(chatID int64, userID int64, year int, month time.Month) {
	keyboard := b.buildMonthKeyboard(year, month, b.isAdvisor(userID))
	b.sendWithInlineKeyboard(chatID, b.calendarText(year, month), keyboard)
}

func (b *Bot) editMonth(chatID int64, messageID int, userID int64, year int, month time.Month) {
	keyboard := b.buildMonthKeyboard(year, month, b.isAdvisor(userID))
	b.editMessage(chatID, messageID, b.calendarText(year, month), &keyboard)
}

// dayViewText описывает день: слоты по расписанию и занявшие их ансамбли.
func (b *Bot) dayViewText(date time.Time) string {
	slots := b.store.SlotsForDate(date)
	bookings := b.store.BookingsForDate(date)

	bySlot := make(map[string]models.Booking, len(bookings))
	for _, bk := range bookings {
		bySlot[bk.TimeSlot] = bk
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 %s, %s\n", weekdayFull[schedule.Weekday(date)], date.Format("02.01.2006")))
	if b.store.HasSpecial(date) {
		sb.WriteString("✱ На этот день действует изменённое расписание\n")
	}
	sb.WriteString("\n")

	if len(slots) == 0 && len(bookings) == 0 {
		sb.WriteString("В этот день репетиций нет.")
		return sb.String()
	}

	for _, slot := range slots {
		if bk, ok := bySlot[slot]; ok {
			sb.WriteString(fmt.Sprintf("🎸 %s — %s\n", slot, bk.BandName))
		} else {
			sb.WriteString(fmt.Sprintf("🟢 %s — свободно\n", slot))
		}
	}

	// Брони на слоты, которых больше нет в расписании, всё равно показываем
	for _, bk := range bookings {
		found := false
		for _, slot := range slots {
			if slot == bk.TimeSlot {
				found = true
				break
			}
		}
		if !found {
			sb.WriteString(fmt.Sprintf("🎸 %s — %s (вне расписания)\n", bk.TimeSlot, bk.BandName))
		}
	}

	return sb.String()
}

func (b *Bot) dayViewKeyboard(date time.Time, advisor bool) tgbotapi.InlineKeyboardMarkup {
	now := time.Now().In(b.loc)
	key := schedule.DateKey(date)
	slots := b.store.SlotsForDate(date)
	bookings := b.store.BookingsForDate(date)

	bySlot := make(map[string]models.Booking, len(bookings))
	for _, bk := range bookings {
		bySlot[bk.TimeSlot] = bk
	}

	var rows [][]tgbotapi.InlineKeyboardButton

	if !schedule.IsPastDay(date, now) {
		for _, slot := range slots {
			if _, taken := bySlot[slot]; !taken {
				rows = append(rows, tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("🟢 Занять "+slot, "book|"+key+"|"+slot),
				))
			}
		}
	}

	for _, bk := range bookings {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("❌ Отменить %s (%s)", bk.TimeSlot, bk.BandName),
				"del|"+bk.ID+"|"+key,
			),
		))
	}

	if advisor {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить слот", "spadd|"+key),
		))
		for _, slot := range slots {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➖ Убрать слот "+slot, "sprm|"+key+"|"+slot),
			))
		}
		if b.store.HasSpecial(date) {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("↩️ Вернуть обычное расписание", "spreset|"+key),
			))
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Календарь", "cal|"+monthKey(date.Year(), date.Month())),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) showDay(chatID int64, userID int64, date time.Time) {
	keyboard := b.dayViewKeyboard(date, b.isAdvisor(userID))
	b.sendWithInlineKeyboard(chatID, b.dayViewText(date), keyboard)
}

func (b *Bot) editDay(chatID int64, messageID int, userID int64, date time.Time) {
	keyboard := b.dayViewKeyboard(date, b.isAdvisor(userID))
	b.editMessage(chatID, messageID, b.dayViewText(date), &keyboard)
}
