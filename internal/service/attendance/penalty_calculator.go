package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Shared by every role, SA included.
const GracePeriodMinutes = 15

var (
	LateRatePerMinute     = decimal.NewFromInt(1)
	OvertimeRatePerMinute = decimal.New(5, -1) // 0.50
)

// Charge is one triggered penalty rule.
type Charge struct {
	Minutes int
	Amount  decimal.Decimal
	Note    string
}

// CalculatePenalties classifies a tap pair. timeOut is nil at time-in. The
// result is a pure function of its arguments.
func CalculatePenalties(
	timeIn time.Time,
	timeOut *time.Time,
	session attendance.Session,
	role user.Role,
	cfg schedule.WorkScheduleConfig,
) attendance.Outcome {
	windows := ResolveWindows(role, cfg)
	session = EffectiveSession(role, session)

	outcome := attendance.Outcome{
		Session:         session,
		Status:          attendance.StatusOnTime,
		LatePenalty:     decimal.Zero,
		OvertimePenalty: decimal.Zero,
		Notes:           []string{},
	}

	late := LateCharge(timeIn, session, windows)
	if late.Minutes > 0 {
		outcome.Status = attendance.StatusLate
		outcome.LateMinutes = late.Minutes
		outcome.LatePenalty = late.Amount
		outcome.Notes = append(outcome.Notes, late.Note)
	}

	if timeOut != nil {
		overtime := OvertimeCharge(*timeOut, windows)
		if overtime.Minutes > 0 {
			outcome.OvertimeMinutes = overtime.Minutes
			outcome.OvertimePenalty = overtime.Amount
			outcome.Notes = append(outcome.Notes, overtime.Note)
		}
	}

	outcome.TotalPenalty = Round2(outcome.LatePenalty).Add(Round2(outcome.OvertimePenalty)).Round(2)
	return outcome
}

// LateCharge counts whole minutes past the grace cutoff of the session
// start, rounding any partial minute up.
func LateCharge(timeIn time.Time, session attendance.Session, windows SessionWindows) Charge {
	cutoff := windows.For(session).Start.On(timeIn).Add(GracePeriodMinutes * time.Minute)
	if !timeIn.After(cutoff) {
		return Charge{Amount: decimal.Zero}
	}

	minutes := ceilMinutes(timeIn.Sub(cutoff))
	return Charge{
		Minutes: minutes,
		Amount:  Round2(LateRatePerMinute.Mul(decimal.NewFromInt(int64(minutes)))),
		Note: fmt.Sprintf("Late for %s session by %d minute(s) after %d-min grace",
			session.Label(), minutes, GracePeriodMinutes),
	}
}

// OvertimeCharge counts whole minutes past the end of the day's last window.
func OvertimeCharge(timeOut time.Time, windows SessionWindows) Charge {
	threshold := windows.OvertimeThreshold()
	end := threshold.On(timeOut)
	if !timeOut.After(end) {
		return Charge{Amount: decimal.Zero}
	}

	minutes := ceilMinutes(timeOut.Sub(end))
	return Charge{
		Minutes: minutes,
		Amount:  Round2(OvertimeRatePerMinute.Mul(decimal.NewFromInt(int64(minutes)))),
		Note:    fmt.Sprintf("Overtime by %d minute(s) past %s", minutes, threshold.Clock()),
	}
}

// CombineStoredPenalty adds a time-out charge to the penalty stored at
// time-in. Both phases round, so the amount shown at time-in never changes.
func CombineStoredPenalty(stored, overtimePenalty decimal.Decimal) decimal.Decimal {
	return stored.Add(overtimePenalty).Round(2)
}

// Round2 rounds half-up to cents. Amounts are never negative, so
// decimal's half-away-from-zero rounding is half-up here.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func ceilMinutes(d time.Duration) int {
	minutes := d / time.Minute
	if d%time.Minute != 0 {
		minutes++
	}
	return int(minutes)
}
