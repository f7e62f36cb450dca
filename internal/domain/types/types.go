// Package types contains the JSON read shapes shared by the HTTP API and the CLI.
package types

import (
	"time"

	"github.com/okian/rally/internal/domain/analytics"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = time.DateOnly

// Entry represents a leaderboard entry
type Entry struct {
	Rank     int    `json:"rank"`
	Player   string `json:"player"`
	Points   int    `json:"points"`
	Delta    int    `json:"delta"`
	Movement string `json:"movement"`
	Places   int    `json:"places,omitempty"`
}

// Leaderboard is the standings of one day.
type Leaderboard struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// Upset is the biggest upset of a day.
type Upset struct {
	MatchID int64  `json:"match_id"`
	Winner  string `json:"winner"`
	Loser   string `json:"loser"`
	Gap     int    `json:"gap"`
}

// Highlights is the day summary.
type Highlights struct {
	Date         string `json:"date"`
	TopScorer    string `json:"top_scorer"`
	TopDelta     int    `json:"top_delta"`
	BiggestUpset *Upset `json:"biggest_upset,omitempty"`
}

// Opponent is a head-to-head record.
type Opponent struct {
	Opponent string `json:"opponent"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// Profile is a player's aggregate record.
type Profile struct {
	Player    string     `json:"player"`
	Matches   int        `json:"matches"`
	Wins      int        `json:"wins"`
	Losses    int        `json:"losses"`
	WinRate   float64    `json:"win_rate"`
	Nemesis   *Opponent  `json:"nemesis,omitempty"`
	Favorite  *Opponent  `json:"favorite,omitempty"`
	Opponents []Opponent `json:"opponents"`
}

// HistoryPoint is one day of a player's ranking history.
type HistoryPoint struct {
	Date     string `json:"date"`
	Position int    `json:"position"`
	Points   int    `json:"points"`
	Delta    int    `json:"delta"`
}

// NewLeaderboard converts annotated rows, keeping at most limit entries
// (all when limit <= 0).
func NewLeaderboard(date time.Time, rows []analytics.Row, limit int) Leaderboard {
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	lb := Leaderboard{Date: date.Format(DateLayout), Entries: make([]Entry, len(rows))}
	for i, r := range rows {
		lb.Entries[i] = NewEntry(r)
	}
	return lb
}

// NewEntry converts one annotated row.
func NewEntry(r analytics.Row) Entry {
	return Entry{
		Rank:     r.Position,
		Player:   r.Player,
		Points:   r.Points,
		Delta:    r.Delta,
		Movement: string(r.Movement.Kind),
		Places:   r.Movement.Places,
	}
}

// NewHighlights converts day highlights.
func NewHighlights(h analytics.Highlights) Highlights {
	out := Highlights{
		Date:      h.Date.Format(DateLayout),
		TopScorer: h.TopScorer.Player,
		TopDelta:  h.TopScorer.Delta,
	}
	if u := h.BiggestUpset; u != nil {
		out.BiggestUpset = &Upset{MatchID: u.MatchID, Winner: u.Winner, Loser: u.Loser, Gap: u.Gap}
	}
	return out
}

// NewProfile converts a player profile.
func NewProfile(p analytics.PlayerProfile) Profile {
	out := Profile{
		Player:    p.Player,
		Matches:   p.Matches,
		Wins:      p.Wins,
		Losses:    p.Losses,
		WinRate:   p.WinRate,
		Opponents: make([]Opponent, len(p.Opponents)),
	}
	for i, o := range p.Opponents {
		out.Opponents[i] = Opponent(o)
	}
	if p.Nemesis != nil {
		n := Opponent(*p.Nemesis)
		out.Nemesis = &n
	}
	if p.Favorite != nil {
		f := Opponent(*p.Favorite)
		out.Favorite = &f
	}
	return out
}

// NewHistory converts a ranking history.
func NewHistory(h []analytics.HistoryPoint) []HistoryPoint {
	out := make([]HistoryPoint, len(h))
	for i, p := range h {
		out[i] = HistoryPoint{Date: p.Date.Format(DateLayout), Position: p.Position, Points: p.Points, Delta: p.Delta}
	}
	return out
}
