package history

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/history"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/sse"
)

// TapTopic is the hub topic the scanner console listens on.
const TapTopic = "taps"

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Config holds tap history configuration
type Config struct {
	BatchSize     int           // default: 50
	FlushInterval time.Duration // default: 2 seconds
	QueueSize     int           // default: 1000
}

// BroadcastSink pushes tap events to live console subscribers.
type BroadcastSink struct {
	hub *sse.Hub
}

func NewBroadcastSink(hub *sse.Hub) *BroadcastSink {
	return &BroadcastSink{hub: hub}
}

func (b *BroadcastSink) Record(_ context.Context, event history.TapEvent) error {
	b.hub.Publish(sse.Event{
		Topic: TapTopic,
		Event: "tap",
		Data:  event,
	})
	return nil
}

type service struct {
	repo   history.TapHistoryRepository
	hub    *sse.Hub
	config Config
	sinks  history.MultiSink

	queue  chan history.TapEvent
	closed atomic.Bool
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewHistoryService creates the tap history with a background writer. Taps
// reach live subscribers immediately; the log is written in batches.
func NewHistoryService(repo history.TapHistoryRepository, hub *sse.Hub, cfg Config) history.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		queue:  make(chan history.TapEvent, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}
	s.sinks = history.MultiSink{NewBroadcastSink(hub), queueSink{s}}

	s.wg.Add(1)
	go s.writer()

	slog.Info("tap history started", "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)
	return s
}

// queueSink hands events to the background writer without blocking.
type queueSink struct{ s *service }

func (q queueSink) Record(_ context.Context, event history.TapEvent) error {
	if q.s.closed.Load() {
		return history.ErrClosed
	}
	select {
	case q.s.queue <- event:
		return nil
	default:
		return history.ErrQueueFull
	}
}

func (s *service) writer() {
	defer s.wg.Done()

	batch := make([]history.TapEvent, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		written := 0
		for _, event := range batch {
			if err := s.repo.Record(ctx, event); err != nil {
				slog.Error("failed to write tap event", "event_id", event.ID, "error", err)
				continue
			}
			written++
		}
		slog.Debug("tap history flushed", "written", written, "batch", len(batch))

		batch = batch[:0]
	}

	for {
		select {
		case event := <-s.queue:
			batch = append(batch, event)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case event := <-s.queue:
					batch = append(batch, event)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Record implements history.Sink.
func (s *service) Record(ctx context.Context, event history.TapEvent) error {
	return s.sinks.Record(ctx, event)
}

// Recent implements history.Service.
func (s *service) Recent(ctx context.Context, limit int) ([]history.TapEvent, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.repo.Recent(ctx, limit)
}

// Subscribe implements history.Service.
func (s *service) Subscribe(ctx context.Context) (<-chan history.TapEvent, func()) {
	events, unsubscribe := s.hub.Subscribe(TapTopic)
	out := make(chan history.TapEvent, cap(events))

	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				tap, ok := ev.Data.(history.TapEvent)
				if !ok {
					continue
				}
				select {
				case out <- tap:
				default:
				}
			case <-ctx.Done():
				unsubscribe()
				return
			}
		}
	}()

	return out, unsubscribe
}

// Close implements history.Service.
func (s *service) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
	slog.Info("tap history stopped")
}
