package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"bandroom/internal/domain"
	"bandroom/internal/events"
	"bandroom/internal/models"
	"bandroom/internal/schedule"

	"github.com/rs/zerolog"
)

// ErrPermissionDenied - операция доступна только куратору
var ErrPermissionDenied = errors.New("operation requires the advisor role")

// Store holds the three collections in memory and is the only place state
// changes. Mutations are applied synchronously under the lock through the
// schedule package's copy-on-write transforms; each successful mutation
// dispatches a full-snapshot push that nobody awaits. The last push to
// complete on the server wins; pushes cannot be cancelled.
type Store struct {
	mu       sync.RWMutex
	snapshot models.Snapshot

	remote domain.RemoteStore
	bus    domain.EventPublisher
	logger *zerolog.Logger
	clock  func() time.Time

	statusMu    sync.Mutex
	status      models.SyncStatus
	inFlight    int
	settleDelay time.Duration
	pushTimeout time.Duration

	pushes sync.WaitGroup
}

// New builds a store seeded with the default weekly rules, matching the
// state a fresh client shows before the first fetch completes.
func New(remote domain.RemoteStore, bus domain.EventPublisher, logger *zerolog.Logger) *Store {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Store{
		snapshot:    models.Snapshot{Rules: models.DefaultRules()},
		remote:      remote,
		bus:         bus,
		logger:      logger,
		clock:       time.Now,
		status:      models.SyncIdle,
		settleDelay: models.SyncSettleMillis * time.Millisecond,
		pushTimeout: 30 * time.Second,
	}
}

// SeedRules replaces the default weekly rules with a configured set. Only
// meaningful before the first fetch: a successful Refresh overwrites it.
func (s *Store) SeedRules(rules []models.AvailabilityRule) {
	if len(rules) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Rules = make([]models.AvailabilityRule, 0, len(rules))
	for _, rule := range rules {
		s.snapshot.Rules = append(s.snapshot.Rules, models.AvailabilityRule{
			DayOfWeek: rule.DayOfWeek,
			Slots:     append([]string(nil), rule.Slots...),
		})
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// SyncStatus reports the cosmetic sync indicator state. It carries no
// correctness guarantee: a failed push still settles, and the data it failed
// to persist stays local-only.
func (s *Store) SyncStatus() models.SyncStatus {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}

// SlotsForDate resolves the bookable slots for a date from current state.
func (s *Store) SlotsForDate(date time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schedule.SlotsForDate(date, s.snapshot.Rules, s.snapshot.SpecialSchedules)
}

// BookingsForDate returns the date's bookings ordered by time slot.
func (s *Store) BookingsForDate(date time.Time) []models.Booking {
	key := schedule.DateKey(date)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Booking
	for _, b := range s.snapshot.Bookings {
		if b.Date == key {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeSlot < out[j].TimeSlot })
	return out
}

// HasSpecial reports whether the date carries a special schedule.
func (s *Store) HasSpecial(date time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schedule.HasSpecial(s.snapshot.SpecialSchedules, date)
}

// AddBooking books a slot for a band. Open to both roles.
func (s *Store) AddBooking(date, slot, bandName string) (models.Booking, error) {
	s.mu.Lock()
	bookings, booking, err := schedule.AddBooking(s.snapshot.Bookings, date, slot, bandName, s.clock())
	if err != nil {
		s.mu.Unlock()
		return models.Booking{}, err
	}
	s.snapshot.Bookings = bookings
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	s.publish(events.EventBookingCreated, events.BookingEventPayload{
		BookingID: booking.ID, Date: booking.Date, TimeSlot: booking.TimeSlot, BandName: booking.BandName,
	})
	s.dispatchPush(snap)
	return booking, nil
}

// RemoveBooking cancels a booking by id; unknown ids are a no-op but still
// push, matching the original surface's behavior.
func (s *Store) RemoveBooking(id string) {
	s.mu.Lock()
	var removed *models.Booking
	for i := range s.snapshot.Bookings {
		if s.snapshot.Bookings[i].ID == id {
			b := s.snapshot.Bookings[i]
			removed = &b
			break
		}
	}
	s.snapshot.Bookings = schedule.RemoveBooking(s.snapshot.Bookings, id)
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	if removed != nil {
		s.publish(events.EventBookingRemoved, events.BookingEventPayload{
			BookingID: removed.ID, Date: removed.Date, TimeSlot: removed.TimeSlot, BandName: removed.BandName,
		})
	}
	s.dispatchPush(snap)
}

// AddRuleSlot adds a slot to a weekday's rule. Advisor only.
func (s *Store) AddRuleSlot(role models.Role, dayOfWeek int, label string) error {
	if err := requireAdvisor(role); err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot.Rules = schedule.AddRuleSlot(s.snapshot.Rules, dayOfWeek, label)
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	s.publish(events.EventScheduleChanged, events.ScheduleEventPayload{DayOfWeek: dayOfWeek, Slot: label, Action: "add"})
	s.dispatchPush(snap)
	return nil
}

// RemoveRuleSlot removes a slot from a weekday's rule. Advisor only.
func (s *Store) RemoveRuleSlot(role models.Role, dayOfWeek int, label string) error {
	if err := requireAdvisor(role); err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot.Rules = schedule.RemoveRuleSlot(s.snapshot.Rules, dayOfWeek, label)
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	s.publish(events.EventScheduleChanged, events.ScheduleEventPayload{DayOfWeek: dayOfWeek, Slot: label, Action: "remove"})
	s.dispatchPush(snap)
	return nil
}

// AddSpecialSlot adds a slot to one date's schedule. Advisor only.
func (s *Store) AddSpecialSlot(role models.Role, date time.Time, label string) error {
	if err := requireAdvisor(role); err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot.SpecialSchedules = schedule.AddSpecialSlot(s.snapshot.SpecialSchedules, s.snapshot.Rules, date, label)
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	s.publish(events.EventSpecialChanged, events.ScheduleEventPayload{Date: schedule.DateKey(date), Slot: label, Action: "add"})
	s.dispatchPush(snap)
	return nil
}

// RemoveSpecialSlot removes a slot from one date's schedule. Advisor only.
func (s *Store) RemoveSpecialSlot(role models.Role, date time.Time, label string) error {
	if err := requireAdvisor(role); err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot.SpecialSchedules = schedule.RemoveSpecialSlot(s.snapshot.SpecialSchedules, s.snapshot.Rules, date, label)
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	s.publish(events.EventSpecialChanged, events.ScheduleEventPayload{Date: schedule.DateKey(date), Slot: label, Action: "remove"})
	s.dispatchPush(snap)
	return nil
}

// ResetSpecialDay deletes a date's special schedule. Advisor only; surfaces
// must confirm with the user before calling, it is destructive.
func (s *Store) ResetSpecialDay(role models.Role, date time.Time) error {
	if err := requireAdvisor(role); err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot.SpecialSchedules = schedule.ResetSpecialDay(s.snapshot.SpecialSchedules, date)
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	s.publish(events.EventSpecialChanged, events.ScheduleEventPayload{Date: schedule.DateKey(date), Action: "reset"})
	s.dispatchPush(snap)
	return nil
}

// ResetAll wipes bookings and specials and restores the default weekly
// rules. Advisor only; surfaces must confirm first.
func (s *Store) ResetAll(role models.Role) error {
	if err := requireAdvisor(role); err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot = models.Snapshot{Rules: models.DefaultRules()}
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	s.publish(events.EventDataReset, events.ScheduleEventPayload{Action: "reset_all"})
	s.dispatchPush(snap)
	return nil
}

// Refresh replaces the whole in-memory state with the remote dataset. On
// failure the last-known state is kept and the error returned; there is no
// automatic retry. Refreshing while a push is outstanding can overwrite
// fresher local state with stale remote state; that race is accepted.
func (s *Store) Refresh(ctx context.Context) error {
	snapshot, err := s.remote.FetchAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("refresh failed, keeping local state")
		return err
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.statusMu.Lock()
	if s.inFlight == 0 {
		s.status = models.SyncIdle
	}
	s.statusMu.Unlock()

	s.publish(events.EventSnapshotRefreshed, events.ScheduleEventPayload{Action: "refresh"})
	return nil
}

func requireAdvisor(role models.Role) error {
	if role != models.RoleAdvisor {
		return ErrPermissionDenied
	}
	return nil
}

func (s *Store) publish(eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("publish event")
	}
}

// dispatchPush sends the snapshot to the remote store in the background.
// Failure is logged and otherwise absorbed: no retry, no user-visible
// error. Two in-flight pushes have no ordering guarantee.
func (s *Store) dispatchPush(snapshot models.Snapshot) {
	if s.remote == nil {
		return
	}

	s.statusMu.Lock()
	s.inFlight++
	s.status = models.SyncInFlight
	s.statusMu.Unlock()

	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
		defer cancel()

		err := s.remote.PushAll(ctx, snapshot)
		if err != nil {
			s.logger.Error().Err(err).Msg("snapshot push failed (absorbed)")
		}

		time.Sleep(s.settleDelay)

		s.statusMu.Lock()
		s.inFlight--
		if s.inFlight == 0 {
			if err != nil {
				s.status = models.SyncFailedSilently
			} else {
				s.status = models.SyncIdle
			}
		}
		s.statusMu.Unlock()
	}()
}
