package holiday

import (
	"context"
	"time"
)

type Holiday struct {
	Date time.Time
	Name string
}

// HolidayRepository answers whether penalties are suspended for a date.
type HolidayRepository interface {
	// GetByDate returns the holiday on date, or nil.
	GetByDate(ctx context.Context, date time.Time) (*Holiday, error)
}
