package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

// GetByCardID implements user.UserRepository.
func (r *userRepositoryImpl) GetByCardID(ctx context.Context, cardID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	// card_id may be stored with separators or lower-case hex
	query := `
		SELECT id, card_id, full_name, COALESCE(email, ''), role,
			morning_start::text, morning_end::text,
			afternoon_start::text, afternoon_end::text
		FROM users
		WHERE UPPER(REPLACE(card_id, ':', '')) = $1
		LIMIT 1
	`

	var (
		u                            user.User
		role                         string
		morningStart, morningEnd     *string
		afternoonStart, afternoonEnd *string
	)
	err := q.QueryRow(ctx, query, cardID).Scan(
		&u.ID,
		&u.CardID,
		&u.FullName,
		&u.Email,
		&role,
		&morningStart,
		&morningEnd,
		&afternoonStart,
		&afternoonEnd,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by card: %w", err)
	}

	u.Role, err = user.ParseRole(role)
	if err != nil {
		return user.User{}, fmt.Errorf("user %s has role %q: %w", u.ID, role, err)
	}
	u.WorkSchedule = schedule.ParseWorkScheduleConfig(morningStart, morningEnd, afternoonStart, afternoonEnd)

	return u, nil
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}
