package focus

import "errors"

var (
	// ErrInvalidInput indicates a missing or malformed argument.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotLoaded indicates an operation before Load.
	ErrNotLoaded = errors.New("state not loaded")
)
