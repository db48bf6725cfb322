package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const recordColumns = `
	r.id, r.user_id, r.date, r.session, r.time_in, r.time_out, r.status,
	r.late_minutes, r.overtime_minutes, r.penalty_amount::text, COALESCE(r.notes, '{}'),
	r.created_at, r.updated_at,
	u.full_name AS user_name,
	u.role AS user_role`

type attendanceRepositoryImpl struct {
	db *database.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (attendance.Record, error) {
	var (
		rec     attendance.Record
		session string
		status  string
		penalty string
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &session, &rec.TimeIn, &rec.TimeOut, &status,
		&rec.LateMinutes, &rec.OvertimeMinutes, &penalty, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.UserName,
		&rec.UserRole,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	rec.Session = attendance.Session(session)
	rec.Status = attendance.Status(status)
	rec.PenaltyAmount, err = decimal.NewFromString(penalty)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("invalid penalty_amount %q: %w", penalty, err)
	}
	return rec, nil
}

// FindOpenRecord implements attendance.RecordRepository.
func (a *attendanceRepositoryImpl) FindOpenRecord(ctx context.Context, userID string, date time.Time, session attendance.Session) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1 AND r.date = $2 AND r.session = $3 AND r.time_out IS NULL
		ORDER BY r.time_in DESC
		LIMIT 1
		FOR UPDATE OF r
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, date, string(session)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open record: %w", err)
	}
	return &rec, nil
}

// FindLatestRecord implements attendance.RecordRepository.
func (a *attendanceRepositoryImpl) FindLatestRecord(ctx context.Context, userID string, date time.Time, session attendance.Session) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1 AND r.date = $2 AND r.session = $3
		ORDER BY r.time_in DESC
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, date, string(session)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest record: %w", err)
	}
	return &rec, nil
}

// Create implements attendance.RecordRepository.
func (a *attendanceRepositoryImpl) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			user_id, date, session, time_in, time_out, status,
			late_minutes, overtime_minutes, penalty_amount, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10)
		RETURNING id, created_at, updated_at
	`

	notes := record.Notes
	if notes == nil {
		notes = []string{}
	}

	err := q.QueryRow(ctx, query,
		record.UserID, record.Date, string(record.Session), record.TimeIn, record.TimeOut, string(record.Status),
		record.LateMinutes, record.OvertimeMinutes, record.PenaltyAmount.StringFixed(2), notes,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // one open record per user, date and session
			return attendance.Record{}, attendance.ErrAlreadyTimedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	record.Notes = notes
	return record, nil
}

// Update implements attendance.RecordRepository.
func (a *attendanceRepositoryImpl) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			time_out = $1,
			status = $2,
			late_minutes = $3,
			overtime_minutes = $4,
			penalty_amount = $5::numeric,
			notes = $6,
			updated_at = NOW()
		WHERE id = $7
	`

	cmdTag, err := q.Exec(ctx, query,
		record.TimeOut, string(record.Status), record.LateMinutes, record.OvertimeMinutes,
		record.PenaltyAmount.StringFixed(2), record.Notes, record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

// GetByID implements attendance.RecordRepository.
func (a *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}
	return rec, nil
}

// List implements attendance.RecordRepository.
func (a *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	addCond := func(cond string, value interface{}) {
		baseWhere += fmt.Sprintf(" AND "+cond, argIdx)
		args = append(args, value)
		argIdx++
	}

	if filter.UserID != nil && *filter.UserID != "" {
		addCond("r.user_id = $%d", *filter.UserID)
	}
	if filter.Date != nil && *filter.Date != "" {
		addCond("r.date = $%d", *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		addCond("r.date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		addCond("r.date <= $%d", *filter.EndDate)
	}
	if filter.Session != nil && *filter.Session != "" {
		addCond("r.session = $%d", *filter.Session)
	}
	if filter.Status != nil && *filter.Status != "" {
		addCond("r.status = $%d", *filter.Status)
	}

	countQuery := "SELECT COUNT(*) FROM attendance_records r WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	// Build ORDER BY
	orderByField := "r.date"
	switch filter.SortBy {
	case "time_in":
		orderByField = "r.time_in"
	case "time_out":
		orderByField = "r.time_out"
	case "penalty_amount":
		orderByField = "r.penalty_amount"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE %s
		ORDER BY %s %s, r.time_in DESC
		LIMIT $%d OFFSET $%d
	`, recordColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, total, nil
}

func NewAttendanceRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRepositoryImpl{db: db}
}
