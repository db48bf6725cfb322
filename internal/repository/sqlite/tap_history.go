// Package sqlite keeps the scanner station's local tap log.
//
// The log is append-only apart from the retention purge. Events are stored
// with both their original timestamp (for display, offset preserved) and a
// unix-nanosecond key used for ordering and purging.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/history"
	_ "github.com/mattn/go-sqlite3"
)

// TapHistoryStore implements history.TapHistoryRepository on SQLite.
type TapHistoryStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens the tap log at dbPath and creates its schema.
// Use ":memory:" for an in-memory log.
func New(dbPath string) (*TapHistoryStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: a :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	store := &TapHistoryStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *TapHistoryStore) Close() error {
	return s.db.Close()
}

func (s *TapHistoryStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tap_history (
		id TEXT PRIMARY KEY,
		station_id TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL DEFAULT '',
		user_name TEXT NOT NULL DEFAULT '',
		card_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		session TEXT NOT NULL,
		action TEXT NOT NULL,
		accepted INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		late_minutes INTEGER NOT NULL DEFAULT 0,
		overtime_minutes INTEGER NOT NULL DEFAULT 0,
		penalty_amount TEXT NOT NULL DEFAULT '0.00',
		message TEXT NOT NULL DEFAULT '',
		occurred_at TEXT NOT NULL,
		occurred_unix INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tap_history_occurred
		ON tap_history(occurred_unix DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record implements history.Sink.
func (s *TapHistoryStore) Record(ctx context.Context, event history.TapEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tap_history (
			id, station_id, user_id, user_name, card_hash, role, session, action,
			accepted, status, late_minutes, overtime_minutes, penalty_amount, message,
			occurred_at, occurred_unix
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID, event.StationID, event.UserID, event.UserName, event.CardHash, event.Role,
		event.Session, event.Action, event.Accepted, event.Status, event.LateMinutes,
		event.OvertimeMinutes, event.PenaltyAmount, event.Message,
		event.OccurredAt.Format(time.RFC3339Nano), event.OccurredAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tap event: %w", err)
	}
	return nil
}

// Recent implements history.TapHistoryRepository.
func (s *TapHistoryStore) Recent(ctx context.Context, limit int) ([]history.TapEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, station_id, user_id, user_name, card_hash, role, session, action,
			accepted, status, late_minutes, overtime_minutes, penalty_amount, message, occurred_at
		FROM tap_history
		ORDER BY occurred_unix DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tap history: %w", err)
	}
	defer rows.Close()

	events := make([]history.TapEvent, 0, limit)
	for rows.Next() {
		var (
			ev         history.TapEvent
			occurredAt string
		)
		err := rows.Scan(
			&ev.ID, &ev.StationID, &ev.UserID, &ev.UserName, &ev.CardHash, &ev.Role, &ev.Session, &ev.Action,
			&ev.Accepted, &ev.Status, &ev.LateMinutes, &ev.OvertimeMinutes, &ev.PenaltyAmount, &ev.Message, &occurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tap event: %w", err)
		}
		ev.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("invalid occurred_at %q: %w", occurredAt, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tap history: %w", err)
	}

	return events, nil
}

// PurgeBefore implements history.TapHistoryRepository.
func (s *TapHistoryStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM tap_history WHERE occurred_unix < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge tap history: %w", err)
	}
	return result.RowsAffected()
}

var _ history.TapHistoryRepository = (*TapHistoryStore)(nil)
