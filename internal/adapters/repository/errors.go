package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotReady = errors.New("no snapshot published yet")
)
