package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/validator"
)

// ========================================
// TAP DTOs
// ========================================

type TapRequest struct {
	CardID    string `json:"card_id"`
	Session   string `json:"session"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp,omitempty"` // RFC3339 from the station clock; empty = now

	tappedAt time.Time
}

func (r *TapRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CardID) {
		errs = append(errs, validator.ValidationError{
			Field:   "card_id",
			Message: "card_id is required",
		})
	} else if !validator.IsValidCardID(r.CardID) {
		errs = append(errs, validator.ValidationError{
			Field:   "card_id",
			Message: "card_id is not a valid card UID",
		})
	}

	if !validator.IsInSlice(strings.ToLower(r.Session), SelectableSessionValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "session",
			Message: "session must be one of: morning, afternoon",
		})
	}

	if !validator.IsInSlice(strings.ToLower(r.Action), ActionValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of: time_in, time_out",
		})
	}

	if r.Timestamp != "" {
		ts, ok := validator.IsValidDateTime(r.Timestamp)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be RFC3339, e.g. 2025-01-15T08:16:00+08:00",
			})
		} else {
			r.tappedAt = ts
		}
	}

	if len(errs) > 0 {
		return errs
	}

	r.CardID = validator.NormalizeCardID(r.CardID)
	r.Session = strings.ToLower(r.Session)
	r.Action = strings.ToLower(r.Action)
	return nil
}

// TappedAt returns the parsed station timestamp, or the zero time when the
// request did not carry one. Only meaningful after Validate.
func (r *TapRequest) TappedAt() time.Time {
	return r.tappedAt
}

type OutcomeResponse struct {
	Session         string   `json:"session"`
	Status          string   `json:"status"`
	LateMinutes     int      `json:"late_minutes"`
	OvertimeMinutes int      `json:"overtime_minutes"`
	LatePenalty     string   `json:"late_penalty"`
	OvertimePenalty string   `json:"overtime_penalty"`
	TotalPenalty    string   `json:"total_penalty"`
	Notes           []string `json:"notes"`
}

type TapResponse struct {
	UserName string          `json:"user_name"`
	Role     string          `json:"role"`
	Action   string          `json:"action"`
	Message  string          `json:"message"`
	Outcome  OutcomeResponse `json:"outcome"`
	Record   RecordResponse  `json:"record"`
}

// ========================================
// RECORD DTOs
// ========================================

type RecordResponse struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	UserName        string   `json:"user_name,omitempty"`
	UserRole        *string  `json:"user_role,omitempty"`
	Date            string   `json:"date"`
	Session         string   `json:"session"`
	TimeIn          string   `json:"time_in"`
	TimeOut         *string  `json:"time_out,omitempty"`
	Status          string   `json:"status"`
	LateMinutes     int      `json:"late_minutes"`
	OvertimeMinutes int      `json:"overtime_minutes"`
	PenaltyAmount   string   `json:"penalty_amount"`
	Notes           []string `json:"notes"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type RecordFilter struct {
	// Search & Filter
	UserID    *string `json:"user_id,omitempty"`
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Session   *string `json:"session,omitempty"`
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, time_in, time_out, penalty_amount
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Session != nil {
		valid := append([]string{string(SessionFullDay)}, SelectableSessionValues...)
		if !validator.IsInSlice(*f.Session, valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "session",
				Message: "session must be one of: morning, afternoon, full_day",
			})
		}
	}

	if f.Status != nil {
		if !validator.IsInSlice(*f.Status, StatusValues) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: on_time, late, exempted, holiday",
			})
		}
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "time_in", "time_out", "penalty_amount"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, time_in, time_out, penalty_amount",
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListRecordResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Showing    string           `json:"showing"`
	Records    []RecordResponse `json:"records"`
}
