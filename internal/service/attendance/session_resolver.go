package attendance

import (
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/user"
)

var (
	DefaultMorningStart   = schedule.MustTimeOfDay(8, 0)
	DefaultMorningEnd     = schedule.MustTimeOfDay(12, 0)
	DefaultAfternoonStart = schedule.MustTimeOfDay(13, 0)
	DefaultAfternoonEnd   = schedule.MustTimeOfDay(17, 30)

	// SA works one fixed window; per-user hours are ignored.
	SADayStart = schedule.MustTimeOfDay(8, 0)
	SADayEnd   = schedule.MustTimeOfDay(17, 30)
)

// Window is a [Start, End] span of one working day.
type Window struct {
	Start schedule.TimeOfDay
	End   schedule.TimeOfDay
}

// SessionWindows are the effective boundaries for a user. Single-session
// roles only populate Day.
type SessionWindows struct {
	Single    bool
	Day       Window
	Morning   Window
	Afternoon Window
}

// ResolveWindows builds the effective windows for role and config. It never
// fails: every missing or unparsable boundary takes its own default.
// Whether a user without any configured hours may tap at all is decided by
// the scan flow, not here.
func ResolveWindows(role user.Role, cfg schedule.WorkScheduleConfig) SessionWindows {
	switch {
	case role.IsSingleSession():
		return SessionWindows{
			Single: true,
			Day:    Window{Start: SADayStart, End: SADayEnd},
		}
	default:
		return SessionWindows{
			Morning: Window{
				Start: orDefault(cfg.MorningStart, DefaultMorningStart),
				End:   orDefault(cfg.MorningEnd, DefaultMorningEnd),
			},
			Afternoon: Window{
				Start: orDefault(cfg.AfternoonStart, DefaultAfternoonStart),
				End:   orDefault(cfg.AfternoonEnd, DefaultAfternoonEnd),
			},
		}
	}
}

func orDefault(t *schedule.TimeOfDay, fallback schedule.TimeOfDay) schedule.TimeOfDay {
	if t == nil {
		return fallback
	}
	return *t
}

// For returns the window a session is measured against.
func (w SessionWindows) For(session attendance.Session) Window {
	if w.Single {
		return w.Day
	}
	if session == attendance.SessionMorning {
		return w.Morning
	}
	return w.Afternoon
}

// OvertimeThreshold is the end of the last window of the day. The morning
// end never counts for overtime.
func (w SessionWindows) OvertimeThreshold() schedule.TimeOfDay {
	if w.Single {
		return w.Day.End
	}
	return w.Afternoon.End
}

// InferSession guesses the session from the clock alone. Only used to find
// the open record to close when the operator's selection finds none.
func (w SessionWindows) InferSession(ts time.Time) attendance.Session {
	if w.Single {
		return attendance.SessionFullDay
	}
	if schedule.TimeOfDayOf(ts).Before(w.Afternoon.Start) {
		return attendance.SessionMorning
	}
	return attendance.SessionAfternoon
}

// EffectiveSession maps the operator's selection to the session recorded
// for role. SA always records the full-day session.
func EffectiveSession(role user.Role, selected attendance.Session) attendance.Session {
	if role.IsSingleSession() {
		return attendance.SessionFullDay
	}
	return selected
}
