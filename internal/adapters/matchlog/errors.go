package matchlog

import "errors"

// Sentinel error kinds for match log loading. Callers use errors.Is.
var (
	ErrMissingColumn     = errors.New("required column not found")
	ErrUnsupportedFormat = errors.New("unsupported match log format")
	ErrFetch             = errors.New("fetch match log failed")
	ErrInvalidSource     = errors.New("invalid match log source")
	ErrEmpty             = errors.New("match log is empty")
)
