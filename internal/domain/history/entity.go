package history

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// TapEvent is one line of the scanner history. It is appended for every
// tap, successful or rejected.
type TapEvent struct {
	ID              string    `json:"id"`
	StationID       string    `json:"station_id,omitempty"`
	UserID          string    `json:"user_id,omitempty"`
	UserName        string    `json:"user_name,omitempty"`
	CardHash        string    `json:"card_hash"`
	Role            string    `json:"role,omitempty"`
	Session         string    `json:"session"`
	Action          string    `json:"action"`
	Accepted        bool      `json:"accepted"`
	Status          string    `json:"status,omitempty"`
	LateMinutes     int       `json:"late_minutes"`
	OvertimeMinutes int       `json:"overtime_minutes"`
	PenaltyAmount   string    `json:"penalty_amount"`
	Message         string    `json:"message"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// HashCardID returns the BLAKE2b-256 hex digest of a card UID. Raw UIDs
// never leave the scan flow.
func HashCardID(cardID string) string {
	sum := blake2b.Sum256([]byte(cardID))
	return hex.EncodeToString(sum[:])
}
