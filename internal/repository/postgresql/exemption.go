package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/exemption"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/database"
)

type exemptionRepositoryImpl struct {
	db *database.DB
}

// GetActiveForDate implements exemption.ExemptionRepository.
// Approved leave spanning the date exempts the whole day; an approved gate
// pass exempts the window between leaving and returning.
func (r *exemptionRepositoryImpl) GetActiveForDate(ctx context.Context, userID string, date time.Time) ([]exemption.Exemption, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT scope, window_start, window_end, reason, source FROM (
			SELECT 'full_day' AS scope, NULL::text AS window_start, NULL::text AS window_end,
				COALESCE(reason, 'Approved leave') AS reason, 'leave' AS source
			FROM leave_requests
			WHERE user_id = $1 AND status = 'approved' AND $2::date BETWEEN start_date AND end_date
			UNION ALL
			SELECT 'time_window', time_out::text, time_in::text,
				COALESCE(reason, 'Gate pass'), 'gate_pass'
			FROM gate_passes
			WHERE user_id = $1 AND status = 'approved' AND date = $2::date
		) e
		ORDER BY scope, window_start
	`

	rows, err := q.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query exemptions: %w", err)
	}
	defer rows.Close()

	var exemptions []exemption.Exemption
	for rows.Next() {
		var (
			scope, reason, source string
			start, end            *string
		)
		if err := rows.Scan(&scope, &start, &end, &reason, &source); err != nil {
			return nil, fmt.Errorf("failed to scan exemption: %w", err)
		}
		exemptions = append(exemptions, exemption.Exemption{
			UserID: userID,
			Date:   date,
			Scope:  exemption.Scope(scope),
			Start:  parseTimeColumn(start),
			End:    parseTimeColumn(end),
			Reason: reason,
			Source: exemption.Source(source),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exemptions: %w", err)
	}

	return exemptions, nil
}

func parseTimeColumn(s *string) *schedule.TimeOfDay {
	if s == nil {
		return nil
	}
	t, err := schedule.ParseTimeOfDay(*s)
	if err != nil {
		return nil
	}
	return &t
}

func NewExemptionRepository(db *database.DB) exemption.ExemptionRepository {
	return &exemptionRepositoryImpl{db: db}
}
