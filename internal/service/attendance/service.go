package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/exemption"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/history"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/holiday"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const holidayNote = "Holiday: no penalty applied"

// Config holds scan service configuration
type Config struct {
	Location *time.Location   // station timezone; default: time.Local
	Now      func() time.Time // default: time.Now
}

type ScanServiceImpl struct {
	user.UserRepository
	attendance.RecordRepository
	holiday.HolidayRepository
	exemption.ExemptionRepository
	tx     attendance.Transactor
	sink   history.Sink
	config Config
}

// waiver suspends the calculator for one tap.
type waiver struct {
	status attendance.Status
	note   string
}

func dateKey(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

// Tap implements attendance.ScanService.
func (s *ScanServiceImpl) Tap(ctx context.Context, req attendance.TapRequest) (attendance.TapResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TapResponse{}, err
	}

	tappedAt := req.TappedAt()
	if tappedAt.IsZero() {
		tappedAt = s.config.Now().In(s.config.Location)
	}

	// v7 ids sort by creation time in the station log
	eventID, err := uuid.NewV7()
	if err != nil {
		return attendance.TapResponse{}, fmt.Errorf("generate event id: %w", err)
	}

	event := history.TapEvent{
		ID:            eventID.String(),
		StationID:     stationFromContext(ctx),
		CardHash:      history.HashCardID(req.CardID),
		Session:       req.Session,
		Action:        req.Action,
		PenaltyAmount: decimal.Zero.StringFixed(2),
		OccurredAt:    tappedAt,
	}

	resp, err := s.tap(ctx, req, tappedAt, &event)
	if err != nil {
		event.Accepted = false
		event.Message = err.Error()
	} else {
		event.Accepted = true
		event.Message = resp.Message
	}
	s.emit(ctx, event)

	return resp, err
}

func (s *ScanServiceImpl) tap(ctx context.Context, req attendance.TapRequest, tappedAt time.Time, event *history.TapEvent) (attendance.TapResponse, error) {
	u, err := s.UserRepository.GetByCardID(ctx, req.CardID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return attendance.TapResponse{}, user.ErrUserNotFound
		}
		return attendance.TapResponse{}, fmt.Errorf("failed to resolve card: %w", err)
	}
	event.UserID = u.ID
	event.UserName = u.FullName
	event.Role = string(u.Role)

	date := dateKey(tappedAt)
	selected := attendance.Session(req.Session)
	session := EffectiveSession(u.Role, selected)
	event.Session = string(session)

	hol, err := s.HolidayRepository.GetByDate(ctx, date)
	if err != nil {
		return attendance.TapResponse{}, fmt.Errorf("failed to check holiday: %w", err)
	}

	var w *waiver
	if hol != nil {
		w = &waiver{status: attendance.StatusHoliday, note: holidayNote}
	} else {
		if err := checkSchedule(u, selected); err != nil {
			return attendance.TapResponse{}, err
		}

		exemptions, err := s.ExemptionRepository.GetActiveForDate(ctx, u.ID, date)
		if err != nil {
			return attendance.TapResponse{}, fmt.Errorf("failed to get exemptions: %w", err)
		}
		for _, e := range exemptions {
			if e.Covers(tappedAt) {
				w = &waiver{status: attendance.StatusExempted, note: "Exempted: " + e.Reason}
				break
			}
		}
	}

	var (
		record  attendance.Record
		outcome attendance.Outcome
		message string
	)
	action := attendance.Action(req.Action)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		switch action {
		case attendance.ActionTimeIn:
			record, outcome, err = s.timeIn(ctx, u, date, session, tappedAt, w)
			message = fmt.Sprintf("%s timed in for %s session", u.FullName, record.Session.Label())
		default:
			record, outcome, err = s.timeOut(ctx, u, date, session, tappedAt, w)
			message = fmt.Sprintf("%s timed out of %s session", u.FullName, record.Session.Label())
		}
		return err
	})
	if err != nil {
		return attendance.TapResponse{}, err
	}

	event.Session = string(record.Session)
	event.Status = string(record.Status)
	event.LateMinutes = record.LateMinutes
	event.OvertimeMinutes = record.OvertimeMinutes
	event.PenaltyAmount = record.PenaltyAmount.StringFixed(2)

	slog.InfoContext(ctx, "tap accepted",
		"user_id", u.ID,
		"action", action,
		"session", record.Session,
		"status", record.Status,
		"penalty", record.PenaltyAmount.StringFixed(2),
	)

	return attendance.TapResponse{
		UserName: u.FullName,
		Role:     string(u.Role),
		Action:   string(action),
		Message:  message,
		Outcome:  mapOutcomeToResponse(outcome),
		Record:   mapRecordToResponse(record),
	}, nil
}

// checkSchedule rejects dual-session users whose hours cannot support the
// selected session. SA always uses the fixed day window.
func checkSchedule(u user.User, selected attendance.Session) error {
	if u.Role.IsSingleSession() {
		return nil
	}

	cfg := u.WorkSchedule
	if cfg.IsEmpty() {
		return attendance.ErrNoScheduleConfigured
	}

	switch selected {
	case attendance.SessionMorning:
		if !cfg.HasMorning() && cfg.AfternoonComplete() {
			return attendance.ErrSessionScheduleMissing
		}
	case attendance.SessionAfternoon:
		if !cfg.HasAfternoon() && cfg.MorningComplete() {
			return attendance.ErrSessionScheduleMissing
		}
	}
	return nil
}

func (s *ScanServiceImpl) timeIn(ctx context.Context, u user.User, date time.Time, session attendance.Session, tappedAt time.Time, w *waiver) (attendance.Record, attendance.Outcome, error) {
	open, err := s.RecordRepository.FindOpenRecord(ctx, u.ID, date, session)
	if err != nil {
		return attendance.Record{}, attendance.Outcome{}, fmt.Errorf("failed to find open record: %w", err)
	}
	if open != nil {
		return attendance.Record{}, attendance.Outcome{}, attendance.ErrAlreadyTimedIn
	}

	if u.Role.IsSingleSession() {
		latest, err := s.RecordRepository.FindLatestRecord(ctx, u.ID, date, session)
		if err != nil {
			return attendance.Record{}, attendance.Outcome{}, fmt.Errorf("failed to find latest record: %w", err)
		}
		if latest != nil && !latest.IsOpen() {
			return attendance.Record{}, attendance.Outcome{}, attendance.ErrAlreadyCompleted
		}
	}

	var outcome attendance.Outcome
	if w != nil {
		outcome = attendance.Outcome{
			Session:         session,
			Status:          w.status,
			LatePenalty:     decimal.Zero,
			OvertimePenalty: decimal.Zero,
			TotalPenalty:    decimal.Zero,
			Notes:           []string{w.note},
		}
	} else {
		outcome = CalculatePenalties(tappedAt, nil, session, u.Role, u.WorkSchedule)
	}

	record, err := s.RecordRepository.Create(ctx, attendance.Record{
		UserID:        u.ID,
		Date:          date,
		Session:       outcome.Session,
		TimeIn:        tappedAt,
		Status:        outcome.Status,
		LateMinutes:   outcome.LateMinutes,
		PenaltyAmount: outcome.TotalPenalty,
		Notes:         outcome.Notes,
	})
	if err != nil {
		return attendance.Record{}, attendance.Outcome{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, outcome, nil
}

func (s *ScanServiceImpl) timeOut(ctx context.Context, u user.User, date time.Time, session attendance.Session, tappedAt time.Time, w *waiver) (attendance.Record, attendance.Outcome, error) {
	open, err := s.RecordRepository.FindOpenRecord(ctx, u.ID, date, session)
	if err != nil {
		return attendance.Record{}, attendance.Outcome{}, fmt.Errorf("failed to find open record: %w", err)
	}

	windows := ResolveWindows(u.Role, u.WorkSchedule)
	if open == nil {
		// Operator may have left the selector on the wrong session
		if inferred := windows.InferSession(tappedAt); inferred != session {
			open, err = s.RecordRepository.FindOpenRecord(ctx, u.ID, date, inferred)
			if err != nil {
				return attendance.Record{}, attendance.Outcome{}, fmt.Errorf("failed to find open record: %w", err)
			}
		}
	}
	if open == nil {
		return attendance.Record{}, attendance.Outcome{}, attendance.ErrNoPriorTimeIn
	}

	outcome := attendance.Outcome{
		Session:         open.Session,
		Status:          open.Status,
		LateMinutes:     open.LateMinutes,
		LatePenalty:     open.PenaltyAmount,
		OvertimePenalty: decimal.Zero,
		TotalPenalty:    open.PenaltyAmount,
		Notes:           []string{},
	}
	if w != nil {
		outcome.Notes = append(outcome.Notes, w.note)
	} else {
		overtime := OvertimeCharge(tappedAt, windows)
		if overtime.Minutes > 0 {
			outcome.OvertimeMinutes = overtime.Minutes
			outcome.OvertimePenalty = overtime.Amount
			outcome.Notes = append(outcome.Notes, overtime.Note)
		}
		outcome.TotalPenalty = CombineStoredPenalty(open.PenaltyAmount, outcome.OvertimePenalty)
	}

	record := *open
	record.TimeOut = &tappedAt
	record.OvertimeMinutes = outcome.OvertimeMinutes
	record.PenaltyAmount = outcome.TotalPenalty
	record.Notes = append(append([]string{}, open.Notes...), outcome.Notes...)

	if err := s.RecordRepository.Update(ctx, record); err != nil {
		return attendance.Record{}, attendance.Outcome{}, fmt.Errorf("failed to close attendance record: %w", err)
	}

	return record, outcome, nil
}

// emit never fails the tap; the record is already committed.
func (s *ScanServiceImpl) emit(ctx context.Context, event history.TapEvent) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Record(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to record tap event", "event_id", event.ID, "error", err)
	}
}

func stationFromContext(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	stationID, _ := claims["station_id"].(string)
	return stationID
}

// GetRecord implements attendance.ScanService.
func (s *ScanServiceImpl) GetRecord(ctx context.Context, id string) (attendance.RecordResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.RecordResponse{}, attendance.ErrRecordNotFound
	}

	record, err := s.RecordRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{}, attendance.ErrRecordNotFound
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return mapRecordToResponse(record), nil
}

// ListRecords implements attendance.ScanService.
func (s *ScanServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordResponse{}, err
	}

	records, total, err := s.RecordRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListRecordResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapRecordToResponse(record))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListRecordResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Records:    responses,
	}, nil
}

// GetMyRecords implements attendance.ScanService.
func (s *ScanServiceImpl) GetMyRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordResponse, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return attendance.ListRecordResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return attendance.ListRecordResponse{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	filter.UserID = &userID
	return s.ListRecords(ctx, filter)
}

func mapOutcomeToResponse(o attendance.Outcome) attendance.OutcomeResponse {
	notes := o.Notes
	if notes == nil {
		notes = []string{}
	}
	return attendance.OutcomeResponse{
		Session:         string(o.Session),
		Status:          string(o.Status),
		LateMinutes:     o.LateMinutes,
		OvertimeMinutes: o.OvertimeMinutes,
		LatePenalty:     o.LatePenalty.StringFixed(2),
		OvertimePenalty: o.OvertimePenalty.StringFixed(2),
		TotalPenalty:    o.TotalPenalty.StringFixed(2),
		Notes:           notes,
	}
}

func mapRecordToResponse(r attendance.Record) attendance.RecordResponse {
	var userName string
	if r.UserName != nil {
		userName = *r.UserName
	}

	notes := r.Notes
	if notes == nil {
		notes = []string{}
	}

	return attendance.RecordResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		UserName:        userName,
		UserRole:        r.UserRole,
		Date:            r.Date.Format("2006-01-02"),
		Session:         string(r.Session),
		TimeIn:          r.TimeIn.Format(time.RFC3339),
		TimeOut:         timePtrToString(r.TimeOut),
		Status:          string(r.Status),
		LateMinutes:     r.LateMinutes,
		OvertimeMinutes: r.OvertimeMinutes,
		PenaltyAmount:   r.PenaltyAmount.StringFixed(2),
		Notes:           notes,
		CreatedAt:       r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:       r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func NewScanService(
	userRepo user.UserRepository,
	recordRepo attendance.RecordRepository,
	holidayRepo holiday.HolidayRepository,
	exemptionRepo exemption.ExemptionRepository,
	tx attendance.Transactor,
	sink history.Sink,
	cfg Config,
) attendance.ScanService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &ScanServiceImpl{
		UserRepository:      userRepo,
		RecordRepository:    recordRepo,
		HolidayRepository:   holidayRepo,
		ExemptionRepository: exemptionRepo,
		tx:                  tx,
		sink:                sink,
		config:              cfg,
	}
}
