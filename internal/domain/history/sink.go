package history

import (
	"context"
	"errors"
)

// Sink receives tap events. Implementations must be safe for concurrent use.
type Sink interface {
	Record(ctx context.Context, event TapEvent) error
}

// MultiSink delivers each event to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, event TapEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
