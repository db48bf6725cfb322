package attendance

import (
	"context"
	"time"
)

// RecordRepository is the record store keyed by user, date and session.
type RecordRepository interface {
	// FindOpenRecord returns the latest record without a time-out, or nil.
	// Inside a transaction the row is locked until commit.
	FindOpenRecord(ctx context.Context, userID string, date time.Time, session Session) (*Record, error)

	// FindLatestRecord returns the most recent record for the session regardless of state, or nil.
	FindLatestRecord(ctx context.Context, userID string, date time.Time, session Session) (*Record, error)

	Create(ctx context.Context, record Record) (Record, error)

	// Update writes time-out, status, minutes, penalty and notes.
	Update(ctx context.Context, record Record) error

	// GetByID returns ErrRecordNotFound when absent.
	GetByID(ctx context.Context, id string) (Record, error)

	List(ctx context.Context, filter RecordFilter) ([]Record, int64, error)
}

// Transactor runs fn in a single store transaction carried by the context.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
