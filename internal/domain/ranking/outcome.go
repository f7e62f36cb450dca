package ranking

import (
	"fmt"
	"strings"

	"github.com/okian/rally/internal/domain/model"
)

// TiePolicy decides what a match with equal scores means.
type TiePolicy string

const (
	// TieSkip leaves tied matches unscored. Default.
	TieSkip TiePolicy = "skip"
	// TieSecondPlayer declares player B the winner of a tie, which is what a
	// plain "A wins if strictly greater, else B" comparison does.
	TieSecondPlayer TiePolicy = "second_player"
)

// Valid reports whether p is a known policy.
func (p TiePolicy) Valid() bool {
	return p == TieSkip || p == TieSecondPlayer
}

// ParseTiePolicy accepts "skip" or "second_player" (case-insensitive, "" means skip).
func ParseTiePolicy(s string) (TiePolicy, error) {
	p := TiePolicy(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return TieSkip, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTiePolicy, s)
	}
	return p, nil
}

// Decide returns the winner and loser of m. The side with the strictly
// greater score wins; ties follow policy.
func Decide(m model.Match, policy TiePolicy) (winner, loser string, err error) {
	if !m.HasPlayers() {
		return "", "", ErrMissingPlayer
	}
	if m.PlayerA == m.PlayerB {
		return "", "", ErrSelfMatch
	}
	switch {
	case m.ScoreA > m.ScoreB:
		return m.PlayerA, m.PlayerB, nil
	case m.ScoreB > m.ScoreA:
		return m.PlayerB, m.PlayerA, nil
	}
	if policy == TieSecondPlayer {
		return m.PlayerB, m.PlayerA, nil
	}
	return "", "", ErrTiedScore
}

// Gain itemizes the points a winner earns from one match.
type Gain struct {
	Base    int // PointsWin
	Upset   int // BonusUpset when the winner was ranked worse than the loser
	TopRank int // BonusTop1/2/3 when the loser was ranked 1, 2 or 3
}

// Total is the sum applied to the winner's score.
func (g Gain) Total() int { return g.Base + g.Upset + g.TopRank }

// WinnerGain computes the winner's gain from the pre-day ranks of both
// sides. Upset and top-rank bonuses stack.
func WinnerGain(winnerRank, loserRank int) Gain {
	g := Gain{Base: PointsWin}
	if winnerRank > loserRank {
		g.Upset = BonusUpset
	}
	switch loserRank {
	case 1:
		g.TopRank = BonusTop1
	case 2:
		g.TopRank = BonusTop2
	case 3:
		g.TopRank = BonusTop3
	}
	return g
}
