package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/history"
)

type HistoryJobs struct {
	repo      history.TapHistoryRepository
	retention time.Duration
	location  *time.Location
	now       func() time.Time
}

// NewHistoryJobs keeps the station tap log to retentionDays.
func NewHistoryJobs(repo history.TapHistoryRepository, retentionDays int, loc *time.Location) *HistoryJobs {
	return &HistoryJobs{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		location:  loc,
		now:       time.Now,
	}
}

// RegisterJobs purges nightly at 03:00 station time, outside scanning hours.
func (j *HistoryJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddDailyJob("purge_tap_history", DailyAt{Hour: 3, Location: j.location}, j.PurgeTapHistory)
}

// PurgeTapHistory deletes events older than the retention window.
func (j *HistoryJobs) PurgeTapHistory(ctx context.Context) error {
	if j.retention <= 0 {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	removed, err := j.repo.PurgeBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge tap history: %w", err)
	}

	if removed > 0 {
		slog.Info("Tap history purged", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
	}
	return nil
}
