package models

// Role is a capability flag, not a security boundary: the store checks it
// before advisor-only mutations, but nothing authenticates who holds it.
type Role string

const (
	RoleMember  Role = "member"
	RoleAdvisor Role = "advisor"
)

// SyncStatus is the UI-observable state of the background push. It is a
// cosmetic indicator; success and failure look the same to members.
type SyncStatus string

const (
	SyncIdle           SyncStatus = "idle"
	SyncInFlight       SyncStatus = "in_flight"
	SyncFailedSilently SyncStatus = "failed_silently"
)

const (
	// DateKeyFormat is the canonical calendar date representation.
	DateKeyFormat = "2006-01-02"

	// SyncSettleMillis — delay before the sync indicator leaves in_flight
	// after a push attempt completes, success or not.
	SyncSettleMillis = 1000

	// DefaultRedisTTL время жизни состояния диалога в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах
)

// DefaultRules is the weekly schedule the club starts with and returns to
// after a full data reset: Mon/Tue/Thu two evening slots, Fri one.
func DefaultRules() []AvailabilityRule {
	return []AvailabilityRule{
		{DayOfWeek: 1, Slots: []string{"16:00-17:00", "17:00-18:00"}},
		{DayOfWeek: 2, Slots: []string{"16:00-17:00", "17:00-18:00"}},
		{DayOfWeek: 4, Slots: []string{"16:00-17:00", "17:00-18:00"}},
		{DayOfWeek: 5, Slots: []string{"17:00-18:00"}},
	}
}

// TimeOptions are the preset slot labels offered when prompting for a new
// slot; free-form labels are also accepted.
var TimeOptions = []string{
	"15:00-16:00",
	"16:00-17:00",
	"17:00-18:00",
	"18:00-19:00",
}
