package exemption

import (
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/schedule"
)

type Scope string

const (
	ScopeFullDay    Scope = "full_day"
	ScopeTimeWindow Scope = "time_window"
)

type Source string

const (
	SourceLeave    Source = "leave"     // approved leave request
	SourceGatePass Source = "gate_pass" // approved gate pass
)

// Exemption suspends penalty calculation for a user on a date, either for
// the whole day or for the window [Start, End].
type Exemption struct {
	UserID string
	Date   time.Time
	Scope  Scope
	Start  *schedule.TimeOfDay
	End    *schedule.TimeOfDay
	Reason string
	Source Source
}

// Covers reports whether a tap at ts falls inside the exempted scope. A
// time-window exemption with a missing bound is open on that side.
func (e Exemption) Covers(ts time.Time) bool {
	if e.Scope == ScopeFullDay {
		return true
	}
	minute := schedule.TimeOfDayOf(ts).MinutesSinceMidnight()
	if e.Start != nil && minute < e.Start.MinutesSinceMidnight() {
		return false
	}
	if e.End != nil && minute > e.End.MinutesSinceMidnight() {
		return false
	}
	return true
}
