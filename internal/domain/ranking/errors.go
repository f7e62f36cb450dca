package ranking

import "errors"

// Sentinel kinds for matches the fold does not score. Decide returns them;
// the engine records them on the skipped MatchResult.
var (
	ErrMissingPlayer    = errors.New("match has a missing participant")
	ErrSelfMatch        = errors.New("match has the same player on both sides")
	ErrTiedScore        = errors.New("match ended with equal scores")
	ErrUnknownTiePolicy = errors.New("unknown tie policy")
)
