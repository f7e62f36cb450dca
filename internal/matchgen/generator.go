// Package matchgen produces synthetic match logs in the sheet format, for
// demos and load testing of the ranking service.
package matchgen

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/okian/rally/internal/adapters/matchlog"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/pkg/logger"
)

// Match scoring: the winner reaches winningScore, the loser stays below it.
const (
	winningScore = 11
	maxTieScore  = 10
)

// Generator builds random match logs.
type Generator struct {
	players int
	days    int
	perDay  int
	tieRate int
	start   time.Time
	seed    uint64
	logger  logger.Logger
}

// New creates a Generator. Defaults: 8 players, 14 days, 6 matches per
// day, 5% ties, starting 2025-01-06.
func New(opts ...Option) *Generator {
	g := &Generator{
		players: 8,
		days:    14,
		perDay:  6,
		tieRate: 5,
		start:   time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) validate() error {
	switch {
	case g.players < 2:
		return fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidConfig, g.players)
	case g.days < 1:
		return fmt.Errorf("%w: days must be positive, got %d", ErrInvalidConfig, g.days)
	case g.perDay < 1:
		return fmt.Errorf("%w: per-day must be positive, got %d", ErrInvalidConfig, g.perDay)
	case g.tieRate < 0 || g.tieRate > 100:
		return fmt.Errorf("%w: tie rate must be within 0..100, got %d", ErrInvalidConfig, g.tieRate)
	}
	return nil
}

// Generate returns days*perDay matches with IDs starting at 1, in date
// order. Every match pits two distinct players from a pool of unique first
// names.
func (g *Generator) Generate(ctx context.Context) ([]model.Match, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	faker := gofakeit.New(g.seed)
	pool := names(faker, g.players)

	matches := make([]model.Match, 0, g.days*g.perDay)
	start := model.Day(g.start)
	for d := 0; d < g.days; d++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate day %d: %w", d+1, err)
		}
		date := start.AddDate(0, 0, d)
		for i := 0; i < g.perDay; i++ {
			a := faker.Number(0, len(pool)-1)
			b := faker.Number(0, len(pool)-2)
			if b >= a {
				b++
			}
			sa, sb := g.score(faker)
			matches = append(matches, model.Match{
				ID:      int64(len(matches) + 1),
				Date:    date,
				PlayerA: pool[a],
				PlayerB: pool[b],
				ScoreA:  sa,
				ScoreB:  sb,
			})
		}
	}

	g.logger.Info(ctx, "generated match log",
		logger.Int("players", g.players),
		logger.Int("days", g.days),
		logger.Int("matches", len(matches)),
	)
	return matches, nil
}

func (g *Generator) score(f *gofakeit.Faker) (int, int) {
	if f.Number(1, 100) <= g.tieRate {
		s := f.Number(0, maxTieScore)
		return s, s
	}
	loser := f.Number(0, winningScore-2)
	if f.Bool() {
		return winningScore, loser
	}
	return loser, winningScore
}

// names draws n distinct first names, suffixing repeats.
func names(f *gofakeit.Faker, n int) []string {
	seen := make(map[string]int, n)
	out := make([]string, 0, n)
	for len(out) < n {
		name := f.FirstName()
		seen[name]++
		if c := seen[name]; c > 1 {
			name += strconv.Itoa(c)
			if seen[name] > 0 {
				continue
			}
			seen[name] = 1
		}
		out = append(out, name)
	}
	return out
}

// WriteCSV writes matches under the sheet's header with dates formatted by
// dateLayout, the same shape matchlog reads back.
func WriteCSV(w io.Writer, matches []model.Match, dateLayout string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(matchlog.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range matches {
		rec := []string{
			strconv.FormatInt(m.ID, 10),
			m.Date.Format(dateLayout),
			m.PlayerA,
			m.PlayerB,
			strconv.Itoa(m.ScoreA),
			strconv.Itoa(m.ScoreB),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write match %d: %w", m.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
