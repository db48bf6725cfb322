package user

type Permission string

const (
	// Attendance
	PermissionAttendanceScan    Permission = "attendance.scan"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	// Tap history
	PermissionHistoryView Permission = "history.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdministrator: {
		PermissionAttendanceScan,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionHistoryView,
	},
	RoleHRPersonnel: {
		PermissionAttendanceScan,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionHistoryView,
	},
	RoleGuard: {
		// Guards run the scanner and watch the live feed
		PermissionAttendanceScan,
		PermissionHistoryView,
	},
	RoleAccounting: {
		// Penalties feed payroll
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
	},
	RoleFaculty: {PermissionAttendanceViewOwn},
	RoleStaff:   {PermissionAttendanceViewOwn},
	RoleSA:      {PermissionAttendanceViewOwn},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
