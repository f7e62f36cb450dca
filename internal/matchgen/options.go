package matchgen

import (
	"time"

	"github.com/okian/rally/pkg/logger"
)

// Option configures a Generator.
type Option func(*Generator)

// WithPlayers sets the size of the player pool.
func WithPlayers(n int) Option {
	return func(g *Generator) { g.players = n }
}

// WithDays sets the number of consecutive match days.
func WithDays(n int) Option {
	return func(g *Generator) { g.days = n }
}

// WithPerDay sets the number of matches played each day.
func WithPerDay(n int) Option {
	return func(g *Generator) { g.perDay = n }
}

// WithStart sets the first match day.
func WithStart(t time.Time) Option {
	return func(g *Generator) { g.start = t }
}

// WithSeed makes the output reproducible. Zero picks a random seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithTieRate sets the percentage of matches that end level.
func WithTieRate(pct int) Option {
	return func(g *Generator) { g.tieRate = pct }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}
