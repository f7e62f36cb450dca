// Package analytics derives highlights and player statistics from the
// ranking history and the raw match log.
package analytics

import (
	"errors"
	"sort"
	"time"

	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/ranking"
)

// Sentinel kinds for analytics lookups.
var (
	ErrUnknownDate   = errors.New("no ranking for date")
	ErrUnknownPlayer = errors.New("player not found")
)

// TopScorer is the player with the largest point delta of a day.
type TopScorer struct {
	Player string
	Delta  int
}

// Upset is a win by the player who held fewer points before the day.
type Upset struct {
	MatchID int64
	Winner  string
	Loser   string
	Gap     int // loser's previous points minus winner's previous points
}

// Highlights summarizes one day.
type Highlights struct {
	Date         time.Time
	TopScorer    TopScorer
	BiggestUpset *Upset // nil when the day had no upset
}

// DayHighlights computes the top scorer and biggest upset for date.
//
// The upset is re-derived from points, not from the engine's rank-based
// bonus: each scored match compares the sides' points at the end of the
// previous computed day (everyone at the initial score on the first day).
func DayHighlights(res ranking.Result, date time.Time) (Highlights, error) {
	d, ok := res.Day(date)
	if !ok {
		return Highlights{}, ErrUnknownDate
	}

	h := Highlights{Date: d.Date, TopScorer: topScorer(d.Deltas)}

	prev := map[string]int{}
	if p, ok := res.Previous(d.Date); ok {
		for _, s := range p.Standings {
			prev[s.Player] = s.Points
		}
	}
	pointsBefore := func(player string) int {
		if v, ok := prev[player]; ok {
			return v
		}
		return ranking.PointsInitial
	}

	for _, r := range d.Results {
		if r.Skipped != nil {
			continue
		}
		w, l := pointsBefore(r.Winner), pointsBefore(r.Loser)
		if w >= l {
			continue
		}
		gap := l - w
		// Results are in match ID order, so a strict comparison keeps the
		// earliest match on equal gaps.
		if h.BiggestUpset == nil || gap > h.BiggestUpset.Gap {
			h.BiggestUpset = &Upset{MatchID: r.Match.ID, Winner: r.Winner, Loser: r.Loser, Gap: gap}
		}
	}
	return h, nil
}

// topScorer picks the maximum delta; equal deltas go to the lowest
// player identifier.
func topScorer(deltas map[string]int) TopScorer {
	players := make([]string, 0, len(deltas))
	for p := range deltas {
		players = append(players, p)
	}
	sort.Strings(players)

	var best TopScorer
	for i, p := range players {
		if i == 0 || deltas[p] > best.Delta {
			best = TopScorer{Player: p, Delta: deltas[p]}
		}
	}
	return best
}

// MovementKind classifies a position change between consecutive days.
type MovementKind string

const (
	MovementNew  MovementKind = "new"
	MovementUp   MovementKind = "up"
	MovementDown MovementKind = "down"
	MovementSame MovementKind = "same"
)

// Movement describes how a player's position changed since the previous day.
type Movement struct {
	Kind   MovementKind
	Places int // always non-negative
}

// Row is a standing annotated with its position, delta and movement.
type Row struct {
	Position int
	Player   string
	Points   int
	Delta    int
	Movement Movement
}

// Movements annotates every standing of date with the change in position
// relative to the previous computed day. Players absent from the previous
// snapshot, and everybody on the first day, are new.
func Movements(res ranking.Result, date time.Time) ([]Row, error) {
	d, ok := res.Day(date)
	if !ok {
		return nil, ErrUnknownDate
	}

	prevPos := map[string]int{}
	if p, ok := res.Previous(d.Date); ok {
		for i, s := range p.Standings {
			prevPos[s.Player] = i + 1
		}
	}

	rows := make([]Row, len(d.Standings))
	for i, s := range d.Standings {
		pos := i + 1
		rows[i] = Row{
			Position: pos,
			Player:   s.Player,
			Points:   s.Points,
			Delta:    d.Deltas[s.Player],
			Movement: movement(prevPos[s.Player], pos),
		}
	}
	return rows, nil
}

func movement(prev, cur int) Movement {
	switch {
	case prev == 0:
		return Movement{Kind: MovementNew}
	case prev > cur:
		return Movement{Kind: MovementUp, Places: prev - cur}
	case prev < cur:
		return Movement{Kind: MovementDown, Places: cur - prev}
	default:
		return Movement{Kind: MovementSame}
	}
}

// HistoryPoint is a player's end-of-day position and points.
type HistoryPoint struct {
	Date     time.Time
	Position int
	Points   int
	Delta    int
}

// History returns the player's position for every computed day.
func History(res ranking.Result, player string) ([]HistoryPoint, error) {
	out := make([]HistoryPoint, 0, len(res.Days))
	for _, d := range res.Days {
		pos := d.Position(player)
		if pos == 0 {
			return nil, ErrUnknownPlayer
		}
		pts, _ := d.Points(player)
		out = append(out, HistoryPoint{Date: d.Date, Position: pos, Points: pts, Delta: d.Deltas[player]})
	}
	if len(out) == 0 {
		return nil, ErrUnknownPlayer
	}
	return out, nil
}

// Players lists distinct participants in ascending order.
func Players(matches []model.Match) []string {
	seen := map[string]struct{}{}
	for _, m := range matches {
		for _, p := range []string{m.PlayerA, m.PlayerB} {
			if p != "" {
				seen[p] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
