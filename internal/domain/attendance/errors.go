package attendance

import "errors"

// Attendance domain errors
var (
	// Tap errors, reported to the operator; the station stays usable
	ErrNoScheduleConfigured   = errors.New("no work schedule configured for this user")
	ErrSessionScheduleMissing = errors.New("no schedule configured for the selected session")
	ErrNoPriorTimeIn          = errors.New("no time-in record found for this session")
	ErrAlreadyTimedIn         = errors.New("already timed in for this session")
	ErrAlreadyCompleted       = errors.New("attendance already completed for today")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
)
