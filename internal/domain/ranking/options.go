package ranking

import "github.com/okian/rally/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTiePolicy selects how matches with equal scores are treated.
func WithTiePolicy(p TiePolicy) Option {
	return func(e *Engine) {
		if p.Valid() {
			e.policy = p
		}
	}
}

// WithLogger sets the logger used to report skipped matches at debug level.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
