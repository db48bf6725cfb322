package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// User directory errors
	case errors.Is(err, user.ErrUserNotFound):
		Error(w, http.StatusNotFound, "CARD_NOT_REGISTERED", "Card is not registered to any user", nil)
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Tap rejections
	case errors.Is(err, attendance.ErrNoScheduleConfigured):
		Error(w, http.StatusUnprocessableEntity, "NO_SCHEDULE", "No work schedule configured for this user", nil)
	case errors.Is(err, attendance.ErrSessionScheduleMissing):
		Error(w, http.StatusUnprocessableEntity, "SESSION_NOT_SCHEDULED", "No schedule configured for the selected session", nil)
	case errors.Is(err, attendance.ErrNoPriorTimeIn):
		Error(w, http.StatusUnprocessableEntity, "NO_PRIOR_TIME_IN", "No time-in found for this session", nil)
	case errors.Is(err, attendance.ErrAlreadyTimedIn):
		Error(w, http.StatusConflict, "ALREADY_TIMED_IN", "Already timed in for this session", nil)
	case errors.Is(err, attendance.ErrAlreadyCompleted):
		Error(w, http.StatusConflict, "ALREADY_COMPLETED", "Attendance already completed for today", nil)

	// Record errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
