package history

import "errors"

var (
	ErrQueueFull = errors.New("tap history queue is full")
	ErrClosed    = errors.New("tap history is closed")
)
