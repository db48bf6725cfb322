package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
	SessionFullDay   Session = "full_day" // SA single window
)

var SelectableSessionValues = []string{
	string(SessionMorning),
	string(SessionAfternoon),
}

// Label is the human form used in notes, e.g. "morning" or "full-day".
func (s Session) Label() string {
	if s == SessionFullDay {
		return "full-day"
	}
	return string(s)
}

type Action string

const (
	ActionTimeIn  Action = "time_in"
	ActionTimeOut Action = "time_out"
)

var ActionValues = []string{
	string(ActionTimeIn),
	string(ActionTimeOut),
}

type Status string

const (
	StatusOnTime   Status = "on_time"
	StatusLate     Status = "late"
	StatusExempted Status = "exempted"
	StatusHoliday  Status = "holiday"
)

var StatusValues = []string{
	string(StatusOnTime),
	string(StatusLate),
	string(StatusExempted),
	string(StatusHoliday),
}

// Outcome is the classifier result for one tap pair.
type Outcome struct {
	Session         Session
	Status          Status
	LateMinutes     int
	OvertimeMinutes int
	LatePenalty     decimal.Decimal
	OvertimePenalty decimal.Decimal
	TotalPenalty    decimal.Decimal
	Notes           []string
}

// Record is one row per user, date and session visit. A record is open
// while TimeOut is nil.
type Record struct {
	ID              string
	UserID          string
	Date            time.Time
	Session         Session
	TimeIn          time.Time
	TimeOut         *time.Time
	Status          Status
	LateMinutes     int
	OvertimeMinutes int
	PenaltyAmount   decimal.Decimal
	Notes           []string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	UserName *string
	UserRole *string
}

func (r Record) IsOpen() bool {
	return r.TimeOut == nil
}
