// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Match is one played game between two players, as delivered by the match log.
type Match struct {
	ID      int64     // orderable identifier; intra-day processing order
	Date    time.Time // calendar day, normalized with Day
	PlayerA string    // first participant; empty when unresolvable
	PlayerB string    // second participant; empty when unresolvable
	ScoreA  int       // non-negative
	ScoreB  int       // non-negative
}

// HasPlayers reports whether both participants are present.
func (m Match) HasPlayers() bool {
	return strings.TrimSpace(m.PlayerA) != "" && strings.TrimSpace(m.PlayerB) != ""
}

// Involves reports whether player took part in the match.
func (m Match) Involves(player string) bool {
	return player != "" && (m.PlayerA == player || m.PlayerB == player)
}

// Opponent returns the other participant, or "" if player did not play.
func (m Match) Opponent(player string) string {
	switch player {
	case "":
		return ""
	case m.PlayerA:
		return m.PlayerB
	case m.PlayerB:
		return m.PlayerA
	}
	return ""
}

// Day strips the time-of-day and zone from t, keeping its calendar date.
// All dates flowing through the engine are compared as Day values.
func Day(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// Standing is one row of a ranking snapshot.
type Standing struct {
	Player string
	Points int
}

// Refresh reasons.
const (
	ReasonStartup = "startup"
	ReasonTTL     = "ttl"
	ReasonAPI     = "api"
)

// RefreshRequest asks the refresher to reload the match log and recompute.
type RefreshRequest struct {
	ID          string    // uuid, for log correlation
	Reason      string    // one of the Reason constants
	RequestedAt time.Time // enqueue time
}

// NewRefreshRequest stamps a request with a fresh ID.
func NewRefreshRequest(reason string, now time.Time) RefreshRequest {
	return RefreshRequest{ID: uuid.NewString(), Reason: reason, RequestedAt: now}
}
