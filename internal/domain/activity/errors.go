package activity

import "errors"

var (
	// ErrInvalidInput indicates a missing or malformed entry.
	ErrInvalidInput = errors.New("invalid activity input")
)
