package analytics

import (
	"sort"

	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/ranking"
)

// OpponentRecord is the head-to-head tally against one opponent.
type OpponentRecord struct {
	Opponent string
	Wins     int
	Losses   int
}

// PlayerProfile aggregates a player's results over the whole match log.
type PlayerProfile struct {
	Player    string
	Matches   int
	Wins      int
	Losses    int
	WinRate   float64          // percentage, 0 when no scored matches
	Opponents []OpponentRecord // first-encounter order
	Nemesis   *OpponentRecord  // most losses against; nil when none
	Favorite  *OpponentRecord  // most wins over; nil when none
}

// Profile computes the player's record. Matches are read in date then
// match ID order. Matches with a missing participant, and ties the policy
// does not score, count for neither side.
func Profile(player string, matches []model.Match, policy ranking.TiePolicy) (PlayerProfile, error) {
	ordered := make([]model.Match, 0, len(matches))
	appeared := false
	for _, m := range matches {
		if !m.Involves(player) {
			continue
		}
		appeared = true
		ordered = append(ordered, m)
	}
	if !appeared {
		return PlayerProfile{}, ErrUnknownPlayer
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := model.Day(ordered[i].Date), model.Day(ordered[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return ordered[i].ID < ordered[j].ID
	})

	p := PlayerProfile{Player: player}
	index := map[string]int{}
	for _, m := range ordered {
		winner, _, err := ranking.Decide(m, policy)
		if err != nil {
			continue
		}
		opp := m.Opponent(player)
		i, ok := index[opp]
		if !ok {
			i = len(p.Opponents)
			index[opp] = i
			p.Opponents = append(p.Opponents, OpponentRecord{Opponent: opp})
		}
		if winner == player {
			p.Wins++
			p.Opponents[i].Wins++
		} else {
			p.Losses++
			p.Opponents[i].Losses++
		}
	}

	p.Matches = p.Wins + p.Losses
	if p.Matches > 0 {
		p.WinRate = float64(p.Wins) / float64(p.Matches) * 100
	}

	for i := range p.Opponents {
		o := p.Opponents[i]
		if o.Losses > 0 && (p.Nemesis == nil || o.Losses > p.Nemesis.Losses) {
			p.Nemesis = &o
		}
		if o.Wins > 0 && (p.Favorite == nil || o.Wins > p.Favorite.Wins) {
			p.Favorite = &o
		}
	}
	return p, nil
}
