package user

import (
	"strings"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/schedule"
)

type Role string

const (
	RoleSA            Role = "SA" // Student assistant - single full-day window
	RoleFaculty       Role = "Faculty"
	RoleStaff         Role = "Staff"
	RoleAccounting    Role = "Accounting"
	RoleAdministrator Role = "Administrator"
	RoleHRPersonnel   Role = "HR Personnel"
	RoleGuard         Role = "Guard" // Operates the scanner station
)

var RoleValues = []string{
	string(RoleSA),
	string(RoleFaculty),
	string(RoleStaff),
	string(RoleAccounting),
	string(RoleAdministrator),
	string(RoleHRPersonnel),
	string(RoleGuard),
}

// ParseRole maps a stored or claimed role string onto the closed Role set.
// Matching ignores case, spaces and underscores so "hr_personnel",
// "HRPersonnel" and "HR Personnel" are the same role.
func ParseRole(s string) (Role, error) {
	key := roleKey(s)
	for _, v := range RoleValues {
		if roleKey(v) == key {
			return Role(v), nil
		}
	}
	return "", ErrUnknownRole
}

func roleKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "_", "")
}

// IsSingleSession reports whether the role works one daily window instead
// of a morning/afternoon split.
func (r Role) IsSingleSession() bool {
	return r == RoleSA
}

// User is a directory entry resolved from an RFID card.
type User struct {
	ID           string
	CardID       string
	FullName     string
	Email        string
	Role         Role
	WorkSchedule schedule.WorkScheduleConfig
}
