package models

// AvailabilityRule is the default bookable slot set for one weekday.
// At most one rule exists per weekday; a missing rule means no slots.
type AvailabilityRule struct {
	DayOfWeek int      `json:"dayOfWeek" yaml:"day_of_week"` // 0 (Sun) .. 6 (Sat)
	Slots     []string `json:"slots" yaml:"slots"`
}

// SpecialSchedule replaces the weekly rule's slots on a single date.
// It is a copy-on-customize snapshot, not a diff: once a date has a special
// schedule, weekly rule changes no longer affect it.
type SpecialSchedule struct {
	Date       string   `json:"date"` // YYYY-MM-DD
	Slots      []string `json:"slots"`
	IsDisabled bool     `json:"isDisabled"`
}
