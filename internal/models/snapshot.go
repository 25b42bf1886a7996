package models

// Snapshot is the complete persisted document: three flat collections,
// fetched and overwritten wholesale on every sync. Field names match the
// remote store's JSON contract.
type Snapshot struct {
	Bookings         []Booking          `json:"bookings"`
	Rules            []AvailabilityRule `json:"rules"`
	SpecialSchedules []SpecialSchedule  `json:"specialSchedules"`
}

// Clone returns a deep copy, so callers can hand snapshots out without
// sharing backing arrays with the store's current state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{}
	if s.Bookings != nil {
		out.Bookings = append([]Booking(nil), s.Bookings...)
	}
	if s.Rules != nil {
		out.Rules = make([]AvailabilityRule, len(s.Rules))
		for i, r := range s.Rules {
			out.Rules[i] = AvailabilityRule{DayOfWeek: r.DayOfWeek, Slots: append([]string(nil), r.Slots...)}
		}
	}
	if s.SpecialSchedules != nil {
		out.SpecialSchedules = make([]SpecialSchedule, len(s.SpecialSchedules))
		for i, sp := range s.SpecialSchedules {
			out.SpecialSchedules[i] = SpecialSchedule{Date: sp.Date, Slots: append([]string(nil), sp.Slots...), IsDisabled: sp.IsDisabled}
		}
	}
	return out
}
