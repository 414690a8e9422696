package chat

import "errors"

var (
	// ErrNotFound means the session does not exist for that owner.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidInput means the message text is empty after trimming.
	ErrInvalidInput = errors.New("message required")
	// ErrSessionCompleted means the session no longer accepts messages.
	ErrSessionCompleted = errors.New("session already completed")
)
