package schedule

import (
	"errors"
	"sort"
	"strings"
	"time"

	"bandroom/internal/models"
)

var (
	// ErrEmptyBandName - попытка брони без названия группы
	ErrEmptyBandName = errors.New("band name is required")
	// ErrSlotTaken - на эту дату и время уже есть бронь
	ErrSlotTaken = errors.New("slot is already booked")
)

// SlotsForDate resolves the bookable slot labels for a date. A special
// schedule, when present, wins outright: nil when disabled, its slots
// verbatim otherwise. Without one the weekday rule applies. Pure: the
// result only depends on the arguments.
func SlotsForDate(date time.Time, rules []models.AvailabilityRule, specials []models.SpecialSchedule) []string {
	key := DateKey(date)
	for _, sp := range specials {
		if sp.Date == key {
			if sp.IsDisabled {
				return nil
			}
			return append([]string(nil), sp.Slots...)
		}
	}
	dow := Weekday(date)
	for _, r := range rules {
		if r.DayOfWeek == dow {
			return append([]string(nil), r.Slots...)
		}
	}
	return nil
}

// AddBooking appends a new booking and returns the new collection. The
// input is never modified. Rejected when the band name is blank or the
// (date, slot) pair is already taken; the returned collection is then the
// input, unchanged.
func AddBooking(bookings []models.Booking, date, slot, bandName string, now time.Time) ([]models.Booking, models.Booking, error) {
	if strings.TrimSpace(bandName) == "" {
		return bookings, models.Booking{}, ErrEmptyBandName
	}
	for _, b := range bookings {
		if b.Date == date && b.TimeSlot == slot {
			return bookings, models.Booking{}, ErrSlotTaken
		}
	}
	booking := models.Booking{
		ID:        models.NewBookingID(now),
		Date:      date,
		TimeSlot:  slot,
		BandName:  bandName,
		CreatedAt: now.UnixMilli(),
	}
	out := make([]models.Booking, 0, len(bookings)+1)
	out = append(out, bookings...)
	out = append(out, booking)
	return out, booking, nil
}

// RemoveBooking drops the booking with the given id. Removing an unknown id
// is a no-op, not an error.
func RemoveBooking(bookings []models.Booking, id string) []models.Booking {
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

// AddRuleSlot adds a slot label to a weekday's rule, creating the rule when
// the weekday has none. Slots stay sorted lexicographically, which for
// HH:MM labels is chronological order. Duplicate labels are not filtered.
func AddRuleSlot(rules []models.AvailabilityRule, dayOfWeek int, label string) []models.AvailabilityRule {
	out := make([]models.AvailabilityRule, 0, len(rules)+1)
	found := false
	for _, r := range rules {
		if r.DayOfWeek == dayOfWeek {
			found = true
			slots := append(append([]string(nil), r.Slots...), label)
			sort.Strings(slots)
			out = append(out, models.AvailabilityRule{DayOfWeek: dayOfWeek, Slots: slots})
			continue
		}
		out = append(out, r)
	}
	if !found {
		out = append(out, models.AvailabilityRule{DayOfWeek: dayOfWeek, Slots: []string{label}})
	}
	return out
}

// RemoveRuleSlot removes a slot label from a weekday's rule. The rule itself
// is kept even when its slot list empties; a missing rule or label is a
// no-op.
func RemoveRuleSlot(rules []models.AvailabilityRule, dayOfWeek int, label string) []models.AvailabilityRule {
	out := make([]models.AvailabilityRule, 0, len(rules))
	for _, r := range rules {
		if r.DayOfWeek != dayOfWeek {
			out = append(out, r)
			continue
		}
		slots := make([]string, 0, len(r.Slots))
		for _, s := range r.Slots {
			if s != label {
				slots = append(slots, s)
			}
		}
		out = append(out, models.AvailabilityRule{DayOfWeek: dayOfWeek, Slots: slots})
	}
	return out
}

// AddSpecialSlot adds a slot to a date's special schedule. When the date has
// none yet, the special is seeded from the date's current resolution (the
// weekly default), so it becomes an independent snapshot of that day. An
// existing override keeps its disabled flag: slots added to a disabled day
// stay hidden until the day is reset.
func AddSpecialSlot(specials []models.SpecialSchedule, rules []models.AvailabilityRule, date time.Time, label string) []models.SpecialSchedule {
	key := DateKey(date)
	out := make([]models.SpecialSchedule, 0, len(specials)+1)
	found := false
	for _, sp := range specials {
		if sp.Date == key {
			found = true
			slots := append(append([]string(nil), sp.Slots...), label)
			sort.Strings(slots)
			// Флаг отключения дня не трогаем: его снимает только сброс дня
			out = append(out, models.SpecialSchedule{Date: key, Slots: slots, IsDisabled: sp.IsDisabled})
			continue
		}
		out = append(out, sp)
	}
	if !found {
		slots := append(SlotsForDate(date, rules, specials), label)
		sort.Strings(slots)
		out = append(out, models.SpecialSchedule{Date: key, Slots: slots, IsDisabled: false})
	}
	return out
}

// RemoveSpecialSlot removes a slot from a date's schedule, materializing a
// special schedule from the weekly default when the date has none. When the
// remaining list is empty the date is marked disabled.
func RemoveSpecialSlot(specials []models.SpecialSchedule, rules []models.AvailabilityRule, date time.Time, label string) []models.SpecialSchedule {
	key := DateKey(date)
	var base []string
	found := false
	for _, sp := range specials {
		if sp.Date == key {
			base = sp.Slots
			found = true
			break
		}
	}
	if !found {
		base = SlotsForDate(date, rules, specials)
	}
	updated := make([]string, 0, len(base))
	for _, s := range base {
		if s != label {
			updated = append(updated, s)
		}
	}

	out := make([]models.SpecialSchedule, 0, len(specials)+1)
	replaced := false
	for _, sp := range specials {
		if sp.Date == key {
			replaced = true
			out = append(out, models.SpecialSchedule{Date: key, Slots: updated, IsDisabled: len(updated) == 0})
			continue
		}
		out = append(out, sp)
	}
	if !replaced {
		out = append(out, models.SpecialSchedule{Date: key, Slots: updated, IsDisabled: len(updated) == 0})
	}
	return out
}

// ResetSpecialDay deletes the date's special schedule, reverting the date to
// weekly-default resolution.
func ResetSpecialDay(specials []models.SpecialSchedule, date time.Time) []models.SpecialSchedule {
	key := DateKey(date)
	out := make([]models.SpecialSchedule, 0, len(specials))
	for _, sp := range specials {
		if sp.Date != key {
			out = append(out, sp)
		}
	}
	return out
}

// HasSpecial reports whether the date carries a special schedule.
func HasSpecial(specials []models.SpecialSchedule, date time.Time) bool {
	key := DateKey(date)
	for _, sp := range specials {
		if sp.Date == key {
			return true
		}
	}
	return false
}
