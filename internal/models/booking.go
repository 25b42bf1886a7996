package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Booking assigns a band to one date+slot pair. At most one booking may
// exist per (Date, TimeSlot); the schedule package enforces this on create.
type Booking struct {
	ID        string `json:"id"`
	Date      string `json:"date"`     // YYYY-MM-DD
	TimeSlot  string `json:"timeSlot"` // opaque label, e.g. "16:00-17:00"
	BandName  string `json:"bandName"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds, informational
}

// NewBookingID returns a time-based id with a random suffix. Uniqueness is
// best-effort; no global uniqueness service backs it.
func NewBookingID(now time.Time) string {
	return fmt.Sprintf("id-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
