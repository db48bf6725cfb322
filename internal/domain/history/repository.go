package history

import (
	"context"
	"time"
)

// TapHistoryRepository is the station's append-only tap log.
type TapHistoryRepository interface {
	Sink

	// Recent returns the newest events first.
	Recent(ctx context.Context, limit int) ([]TapEvent, error)

	// PurgeBefore deletes events older than cutoff and returns how many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service is the scan flow's sink and the console's view of the tap log.
type Service interface {
	Sink

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]TapEvent, error)

	// Subscribe streams live events until ctx is done or cleanup is called.
	Subscribe(ctx context.Context) (<-chan TapEvent, func())

	// Close flushes queued events and stops the writer.
	Close()
}
