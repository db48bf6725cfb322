package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manila = time.FixedZone("PHT", 8*3600)

func tapAt(h, m, s int) time.Time {
	return time.Date(2025, 3, 10, h, m, s, 0, manila)
}

func ptr[T any](v T) *T { return &v }

func money(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func TestGraceBoundary(t *testing.T) {
	cases := []struct {
		name    string
		role    user.Role
		session attendance.Session
		start   [2]int
	}{
		{"faculty morning", user.RoleFaculty, attendance.SessionMorning, [2]int{8, 0}},
		{"staff afternoon", user.RoleStaff, attendance.SessionAfternoon, [2]int{13, 0}},
		{"sa full day", user.RoleSA, attendance.SessionMorning, [2]int{8, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			atGrace := tapAt(tc.start[0], tc.start[1]+15, 0)
			out := CalculatePenalties(atGrace, nil, tc.session, tc.role, schedule.WorkScheduleConfig{})
			assert.Equal(t, 0, out.LateMinutes)
			assert.Equal(t, attendance.StatusOnTime, out.Status)
			assert.Empty(t, out.Notes)

			oneSecondLate := atGrace.Add(time.Second)
			out = CalculatePenalties(oneSecondLate, nil, tc.session, tc.role, schedule.WorkScheduleConfig{})
			assert.Equal(t, 1, out.LateMinutes)
			assert.Equal(t, attendance.StatusLate, out.Status)
			money(t, "1.00", out.LatePenalty)
		})
	}
}

func TestGraceBoundary_CustomStart(t *testing.T) {
	cfg := schedule.WorkScheduleConfig{MorningStart: ptr(schedule.MustTimeOfDay(7, 30))}

	out := CalculatePenalties(tapAt(7, 45, 0), nil, attendance.SessionMorning, user.RoleFaculty, cfg)
	assert.Equal(t, 0, out.LateMinutes)

	out = CalculatePenalties(tapAt(7, 45, 1), nil, attendance.SessionMorning, user.RoleFaculty, cfg)
	assert.Equal(t, 1, out.LateMinutes)
}

func TestLateMonotonicity(t *testing.T) {
	prev := 0
	start := tapAt(7, 0, 0)
	for offset := time.Duration(0); offset <= 3*time.Hour; offset += 17 * time.Second {
		out := CalculatePenalties(start.Add(offset), nil, attendance.SessionMorning, user.RoleFaculty, schedule.WorkScheduleConfig{})
		require.GreaterOrEqual(t, out.LateMinutes, 0)
		require.GreaterOrEqual(t, out.LateMinutes, prev, "late minutes decreased at %s", start.Add(offset))
		prev = out.LateMinutes
	}
	assert.Equal(t, 105, prev) // 09:59:55 against an 08:15 cutoff
}

func TestOvertimeOnlyOnClose(t *testing.T) {
	for _, timeIn := range []time.Time{tapAt(8, 0, 0), tapAt(17, 45, 0), tapAt(23, 59, 0)} {
		out := CalculatePenalties(timeIn, nil, attendance.SessionAfternoon, user.RoleStaff, schedule.WorkScheduleConfig{})
		assert.Equal(t, 0, out.OvertimeMinutes)
		assert.True(t, out.OvertimePenalty.IsZero())
	}
}

func TestOvertimeBoundary(t *testing.T) {
	for _, role := range []user.Role{user.RoleFaculty, user.RoleSA} {
		timeIn := tapAt(13, 0, 0)

		out := CalculatePenalties(timeIn, ptr(tapAt(17, 30, 0)), attendance.SessionAfternoon, role, schedule.WorkScheduleConfig{})
		assert.Equal(t, 0, out.OvertimeMinutes, role)

		out = CalculatePenalties(timeIn, ptr(tapAt(17, 31, 0)), attendance.SessionAfternoon, role, schedule.WorkScheduleConfig{})
		assert.Equal(t, 1, out.OvertimeMinutes, role)
		money(t, "0.50", out.OvertimePenalty)
		assert.Contains(t, out.Notes, "Overtime by 1 minute(s) past 5:30 PM")
	}
}

func TestOvertimeNeverUsesMorningEnd(t *testing.T) {
	out := CalculatePenalties(tapAt(8, 0, 0), ptr(tapAt(12, 45, 0)), attendance.SessionMorning, user.RoleFaculty, schedule.WorkScheduleConfig{})
	assert.Equal(t, 0, out.OvertimeMinutes)
}

func TestOvertimeUsesConfiguredAfternoonEnd(t *testing.T) {
	cfg := schedule.WorkScheduleConfig{AfternoonEnd: ptr(schedule.MustTimeOfDay(16, 0))}

	out := CalculatePenalties(tapAt(13, 0, 0), ptr(tapAt(16, 10, 30)), attendance.SessionAfternoon, user.RoleStaff, cfg)
	assert.Equal(t, 11, out.OvertimeMinutes)
	money(t, "5.50", out.OvertimePenalty)
	assert.Equal(t, []string{"Overtime by 11 minute(s) past 4:00 PM"}, out.Notes)
}

func TestRateParity_SAAndDualSession(t *testing.T) {
	// 20 minutes late against an 08:00 start for both variants
	timeIn := tapAt(8, 35, 0)

	sa := CalculatePenalties(timeIn, nil, attendance.SessionMorning, user.RoleSA, schedule.WorkScheduleConfig{})
	faculty := CalculatePenalties(timeIn, nil, attendance.SessionMorning, user.RoleFaculty, schedule.WorkScheduleConfig{})
	staff := CalculatePenalties(timeIn, nil, attendance.SessionMorning, user.RoleStaff, schedule.WorkScheduleConfig{})

	assert.Equal(t, 20, sa.LateMinutes)
	assert.True(t, sa.LatePenalty.Equal(faculty.LatePenalty))
	assert.True(t, sa.LatePenalty.Equal(staff.LatePenalty))
	money(t, "20.00", sa.LatePenalty)
}

func TestRounding(t *testing.T) {
	out := CalculatePenalties(tapAt(8, 18, 0), nil, attendance.SessionMorning, user.RoleFaculty, schedule.WorkScheduleConfig{})
	assert.Equal(t, 3, out.LateMinutes)
	money(t, "3.00", out.LatePenalty)

	out = CalculatePenalties(tapAt(13, 0, 0), ptr(tapAt(17, 33, 0)), attendance.SessionAfternoon, user.RoleStaff, schedule.WorkScheduleConfig{})
	assert.Equal(t, 3, out.OvertimeMinutes)
	money(t, "1.50", out.OvertimePenalty)

	money(t, "2.35", Round2(decimal.RequireFromString("2.345")))
	money(t, "1.51", CombineStoredPenalty(decimal.RequireFromString("1.005"), decimal.RequireFromString("0.5")))
}

func TestTotalPenalty_LateAndOvertimeTogether(t *testing.T) {
	out := CalculatePenalties(tapAt(13, 20, 0), ptr(tapAt(17, 40, 0)), attendance.SessionAfternoon, user.RoleFaculty, schedule.WorkScheduleConfig{})

	assert.Equal(t, 5, out.LateMinutes)
	assert.Equal(t, 10, out.OvertimeMinutes)
	money(t, "5.00", out.LatePenalty)
	money(t, "5.00", out.OvertimePenalty)
	money(t, "10.00", out.TotalPenalty)
	assert.Equal(t, []string{
		"Late for afternoon session by 5 minute(s) after 15-min grace",
		"Overtime by 10 minute(s) past 5:30 PM",
	}, out.Notes)
}

func TestScenarioA_FacultyLateMorning(t *testing.T) {
	out := CalculatePenalties(tapAt(8, 16, 0), nil, attendance.SessionMorning, user.RoleFaculty, schedule.WorkScheduleConfig{})

	assert.Equal(t, attendance.SessionMorning, out.Session)
	assert.Equal(t, 1, out.LateMinutes)
	money(t, "1.00", out.LatePenalty)
	money(t, "1.00", out.TotalPenalty)
	assert.Equal(t, []string{"Late for morning session by 1 minute(s) after 15-min grace"}, out.Notes)
}

func TestScenarioB_FacultyCloseWithOvertime(t *testing.T) {
	stored := CalculatePenalties(tapAt(8, 16, 0), nil, attendance.SessionMorning, user.RoleFaculty, schedule.WorkScheduleConfig{}).TotalPenalty

	out := CalculatePenalties(tapAt(8, 16, 0), ptr(tapAt(17, 32, 0)), attendance.SessionMorning, user.RoleFaculty, schedule.WorkScheduleConfig{})
	assert.Equal(t, 2, out.OvertimeMinutes)
	money(t, "1.00", out.OvertimePenalty)

	money(t, "2.00", CombineStoredPenalty(stored, out.OvertimePenalty))
}

func TestScenarioC_SAOnTime(t *testing.T) {
	in := CalculatePenalties(tapAt(8, 0, 0), nil, attendance.SessionAfternoon, user.RoleSA, schedule.WorkScheduleConfig{})
	assert.Equal(t, attendance.SessionFullDay, in.Session)
	assert.Equal(t, 0, in.LateMinutes)
	assert.Empty(t, in.Notes)

	out := CalculatePenalties(tapAt(8, 0, 0), ptr(tapAt(17, 30, 0)), attendance.SessionMorning, user.RoleSA, schedule.WorkScheduleConfig{})
	assert.Equal(t, 0, out.OvertimeMinutes)
	money(t, "0.00", out.TotalPenalty)
}

func TestScenarioC_SAIgnoresPersonalHours(t *testing.T) {
	cfg := schedule.WorkScheduleConfig{
		MorningStart: ptr(schedule.MustTimeOfDay(10, 0)),
		AfternoonEnd: ptr(schedule.MustTimeOfDay(15, 0)),
	}
	out := CalculatePenalties(tapAt(8, 20, 0), ptr(tapAt(16, 0, 0)), attendance.SessionMorning, user.RoleSA, cfg)

	assert.Equal(t, 5, out.LateMinutes)
	assert.Equal(t, 0, out.OvertimeMinutes)
	assert.Equal(t, []string{"Late for full-day session by 5 minute(s) after 15-min grace"}, out.Notes)
}

func TestScenarioD_EarlyArrivalNeverNegative(t *testing.T) {
	for _, role := range []user.Role{user.RoleSA, user.RoleFaculty, user.RoleStaff, user.RoleGuard} {
		out := CalculatePenalties(tapAt(7, 0, 0), nil, attendance.SessionMorning, role, schedule.WorkScheduleConfig{})
		assert.Equal(t, 0, out.LateMinutes, role)
		assert.True(t, out.TotalPenalty.IsZero(), role)
	}
}

func TestCeilMinutes(t *testing.T) {
	assert.Equal(t, 0, ceilMinutes(0))
	assert.Equal(t, 1, ceilMinutes(time.Nanosecond))
	assert.Equal(t, 1, ceilMinutes(time.Minute))
	assert.Equal(t, 2, ceilMinutes(time.Minute+time.Second))
}
