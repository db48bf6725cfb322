package user

import "context"

// UserRepository is the user directory consulted on every tap.
type UserRepository interface {
	// GetByCardID resolves a normalized card UID. Returns ErrUserNotFound when no user holds the card.
	GetByCardID(ctx context.Context, cardID string) (User, error)
}
