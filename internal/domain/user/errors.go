package user

import "errors"

var (
	ErrUserNotFound            = errors.New("no user registered for this card")
	ErrUnknownRole             = errors.New("unknown role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
