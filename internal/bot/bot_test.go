package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"bandroom/internal/config"
	"bandroom/internal/events"
	"bandroom/internal/models"
	"bandroom/internal/repository"
	"bandroom/internal/schedule"
	"bandroom/internal/service"
	"bandroom/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const advisorID = int64(999)

type mockTelegramService struct {
	mu           sync.Mutex
	updatesChan  chan tgbotapi.Update
	sentMessages []tgbotapi.Chattable
	callbacks    []string
}

func (m *mockTelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentMessages = append(m.sentMessages, c)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockTelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	return m.Send(tgbotapi.NewMessage(chatID, text))
}

func (m *mockTelegramService) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return m.Send(msg)
}

func (m *mockTelegramService) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	if keyboard != nil {
		return m.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *keyboard))
	}
	return m.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (m *mockTelegramService) AnswerCallback(callbackID string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, text)
	return nil
}

func (m *mockTelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updatesChan
}

func (m *mockTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "test_bot"}
}

func (m *mockTelegramService) StopReceivingUpdates() {}

func (m *mockTelegramService) sent() []tgbotapi.Chattable {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), m.sentMessages...)
}

func (m *mockTelegramService) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sentMessages) - 1; i >= 0; i-- {
		switch c := m.sentMessages[i].(type) {
		case tgbotapi.MessageConfig:
			return c.Text
		case tgbotapi.EditMessageTextConfig:
			return c.Text
		}
	}
	return ""
}

type nopRemote struct{}

func (nopRemote) FetchAll(ctx context.Context) (models.Snapshot, error) {
	return models.Snapshot{}, nil
}

func (nopRemote) PushAll(ctx context.Context, snapshot models.Snapshot) error {
	return nil
}

func newTestBot(t *testing.T) (*Bot, *mockTelegramService, *store.Store) {
	t.Helper()
	logger := zerolog.Nop()
	tg := &mockTelegramService{updatesChan: make(chan tgbotapi.Update, 1)}

	cfg := &config.Config{
		Advisors: []int64{advisorID},
		Bot:      config.BotConfig{RateLimitMessages: 100, RateLimitWindow: 60},
		Exports:  config.ExportConfig{Path: t.TempDir()},
	}

	bus := events.NewEventBus()
	st := store.New(nopRemote{}, bus, &logger)
	stateService := service.NewStateService(repository.NewMemoryStateRepository(time.Hour), &logger)

	b, err := NewBot(tg, cfg, st, stateService, bus, nil, &logger)
	require.NoError(t, err)
	return b, tg, st
}

func messageUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID, UserName: "testuser"},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb1",
			From: &tgbotapi.User{ID: userID},
			Message: &tgbotapi.Message{
				MessageID: 7,
				Chat:      &tgbotapi.Chat{ID: userID},
			},
			Data: data,
		},
	}
}

// nextWeekday returns the next future occurrence of the weekday.
func nextWeekday(wd time.Weekday) time.Time {
	d := time.Now().AddDate(0, 0, 1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestStartShowsCalendar(t *testing.T) {
	b, tg, _ := newTestBot(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Start(ctx)

	tg.updatesChan <- messageUpdate(123, "/start")

	require.Eventually(t, func() bool {
		return len(tg.sent()) >= 2
	}, time.Second, 10*time.Millisecond)

	sent := tg.sent()
	first, ok := sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, first.Text, "календарь репетиций")

	second, ok := sent[1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	_, hasKeyboard := second.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.True(t, hasKeyboard)
}

func TestBookingFlow(t *testing.T) {
	b, tg, st := newTestBot(t)
	ctx := context.Background()

	day := nextWeekday(time.Monday)
	key := schedule.DateKey(day)

	b.processUpdate(ctx, callbackUpdate(123, "book|"+key+"|16:00-17:00"))
	assert.Contains(t, tg.lastText(), "Введите название ансамбля")

	b.processUpdate(ctx, messageUpdate(123, "The Rolling Scones"))

	bookings := st.BookingsForDate(day)
	require.Len(t, bookings, 1)
	assert.Equal(t, "The Rolling Scones", bookings[0].BandName)
	assert.Equal(t, "16:00-17:00", bookings[0].TimeSlot)

	// Состояние диалога сброшено
	state := b.getUserState(ctx, 123)
	assert.Nil(t, state)
}

func TestBookingRejectsTakenSlot(t *testing.T) {
	b, tg, st := newTestBot(t)
	ctx := context.Background()

	day := nextWeekday(time.Monday)
	key := schedule.DateKey(day)

	_, err := st.AddBooking(key, "16:00-17:00", "Band A")
	require.NoError(t, err)

	b.processUpdate(ctx, callbackUpdate(123, "book|"+key+"|16:00-17:00"))
	b.processUpdate(ctx, messageUpdate(123, "Band B"))

	assert.Contains(t, tg.lastText(), "уже занят")
	assert.Len(t, st.BookingsForDate(day), 1)
}

func TestCancelBookingFlow(t *testing.T) {
	b, tg, st := newTestBot(t)
	ctx := context.Background()

	day := nextWeekday(time.Monday)
	key := schedule.DateKey(day)

	booking, err := st.AddBooking(key, "16:00-17:00", "Band A")
	require.NoError(t, err)

	b.processUpdate(ctx, callbackUpdate(123, "del|"+booking.ID+"|"+key))
	assert.Contains(t, tg.lastText(), "Отменить эту бронь?")

	b.processUpdate(ctx, callbackUpdate(123, "delok|"+booking.ID+"|"+key))
	assert.Empty(t, st.BookingsForDate(day))
}

func TestAdvisorOnlyCallbacks(t *testing.T) {
	b, _, st := newTestBot(t)
	ctx := context.Background()

	day := nextWeekday(time.Monday)
	key := schedule.DateKey(day)

	_, err := st.AddBooking(key, "16:00-17:00", "Band A")
	require.NoError(t, err)

	// Участник не может сбросить данные
	b.processUpdate(ctx, callbackUpdate(123, "wipeok"))
	assert.Len(t, st.BookingsForDate(day), 1)

	// Куратор может
	b.processUpdate(ctx, callbackUpdate(advisorID, "wipeok"))
	assert.Empty(t, st.BookingsForDate(day))
	assert.Equal(t, models.DefaultRules(), st.Snapshot().Rules)
}

func TestAdvisorWeeklyEditorCallbacks(t *testing.T) {
	b, _, st := newTestBot(t)
	ctx := context.Background()

	b.processUpdate(ctx, callbackUpdate(advisorID, "wdslot|3|19:00-20:00"))

	day := nextWeekday(time.Wednesday)
	assert.Contains(t, st.SlotsForDate(day), "19:00-20:00")

	b.processUpdate(ctx, callbackUpdate(advisorID, "wdrm|3|19:00-20:00"))
	assert.NotContains(t, st.SlotsForDate(day), "19:00-20:00")
}

func TestRuleSlotInputRejectsBadLabel(t *testing.T) {
	b, tg, st := newTestBot(t)
	ctx := context.Background()

	before := st.Snapshot().Rules

	// Символ "|" ломает callback data кнопки удаления
	b.setUserState(ctx, advisorID, StateAwaitingRuleSlot, map[string]interface{}{"day_of_week": 3})
	b.processUpdate(ctx, messageUpdate(advisorID, "16|17"))

	assert.Contains(t, tg.lastText(), "Неверный формат")
	assert.Equal(t, before, st.Snapshot().Rules)

	b.processUpdate(ctx, messageUpdate(advisorID, "с шестнадцати ноль-ноль до семнадцати ноль-ноль"))
	assert.Contains(t, tg.lastText(), "Неверный формат")
	assert.Equal(t, before, st.Snapshot().Rules)
}

func TestSpecialSlotInputRejectsBadLabel(t *testing.T) {
	b, tg, st := newTestBot(t)
	ctx := context.Background()

	day := nextWeekday(time.Wednesday)
	key := schedule.DateKey(day)

	b.setUserState(ctx, advisorID, StateAwaitingSpecialSlot, map[string]interface{}{"date": key})
	b.processUpdate(ctx, messageUpdate(advisorID, "15|16"))

	assert.Contains(t, tg.lastText(), "Неверный формат")
	assert.False(t, st.HasSpecial(day))
}

func TestAdvisorSpecialDayCallbacks(t *testing.T) {
	b, _, st := newTestBot(t)
	ctx := context.Background()

	day := nextWeekday(time.Wednesday)
	key := schedule.DateKey(day)

	b.processUpdate(ctx, callbackUpdate(advisorID, "spslot|"+key+"|15:00-16:00"))
	require.True(t, st.HasSpecial(day))
	assert.Contains(t, st.SlotsForDate(day), "15:00-16:00")

	b.processUpdate(ctx, callbackUpdate(advisorID, "spresetok|"+key))
	assert.False(t, st.HasSpecial(day))
}

func TestBlacklistedUserIgnored(t *testing.T) {
	b, tg, _ := newTestBot(t)
	b.config.Blacklist = []int64{666}
	ctx := context.Background()

	b.processUpdate(ctx, messageUpdate(666, "/start"))
	assert.Empty(t, tg.sent())
}

func TestBandNameDialogStaleSession(t *testing.T) {
	b, tg, _ := newTestBot(t)
	ctx := context.Background()

	b.setUserState(ctx, 123, StateAwaitingBandName, nil)
	b.processUpdate(ctx, messageUpdate(123, "Band X"))

	assert.Contains(t, tg.lastText(), "Сессия устарела")
}
