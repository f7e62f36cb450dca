package matchgen

import "errors"

// ErrInvalidConfig is returned when the generator cannot produce matches.
var ErrInvalidConfig = errors.New("invalid generator config")
