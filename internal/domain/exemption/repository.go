package exemption

import (
	"context"
	"time"
)

// ExemptionRepository looks up approved leave and gate passes.
type ExemptionRepository interface {
	// GetActiveForDate returns the exemptions approved for the user on date.
	// Full-day exemptions come first.
	GetActiveForDate(ctx context.Context, userID string, date time.Time) ([]Exemption, error)
}
