// Package ranking turns a match log into a day-by-day sequence of ranking
// snapshots.
//
// The computation is a sequential fold over calendar days in ascending order.
// Each day starts from the standings left by the previous day; bonuses are
// decided against that pre-day ranking, which stays fixed while the day's
// matches are applied in ascending match ID order.
//
// Ranks order players by points descending, then by player identifier
// ascending. The same order is used for the stored snapshots, so output is
// reproducible regardless of input row order.
package ranking

import (
	"context"
	"sort"
	"time"

	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/pkg/logger"
)

// Scoring constants. They are fixed and not configurable at runtime.
const (
	PointsWin     = 10
	PointsLoss    = -10
	PointsInitial = 1000
	BonusTop1     = 25
	BonusTop2     = 20
	BonusTop3     = 15
	BonusUpset    = 5
)

// MatchResult records how one match was scored.
type MatchResult struct {
	Match      model.Match
	Winner     string
	Loser      string
	WinnerRank int   // pre-day rank
	LoserRank  int   // pre-day rank
	Gain       Gain  // applied to the winner
	Skipped    error // non-nil when the match was not scored (ErrTiedScore, ErrSelfMatch)
}

// Day is the immutable outcome of one calendar day.
type Day struct {
	Date time.Time
	// Standings after the day's matches, points descending.
	Standings []model.Standing
	// Deltas holds each known player's point change from this day only. The
	// loss amount is recorded unclamped.
	Deltas map[string]int
	// Results lists the day's matches in processing order.
	Results []MatchResult
}

// Position returns the 1-based position of player in the day's standings,
// or 0 when the player is not ranked.
func (d Day) Position(player string) int {
	for i, s := range d.Standings {
		if s.Player == player {
			return i + 1
		}
	}
	return 0
}

// Points returns the player's end-of-day points.
func (d Day) Points(player string) (int, bool) {
	for _, s := range d.Standings {
		if s.Player == player {
			return s.Points, true
		}
	}
	return 0, false
}

// Result is the full date-ordered history produced by Compute.
type Result struct {
	Days    []Day
	players []string
}

// Empty reports whether no day was computed.
func (r Result) Empty() bool { return len(r.Days) == 0 }

// Players returns the sorted player universe.
func (r Result) Players() []string {
	out := make([]string, len(r.players))
	copy(out, r.players)
	return out
}

// Dates returns the computed dates in ascending order.
func (r Result) Dates() []time.Time {
	out := make([]time.Time, len(r.Days))
	for i, d := range r.Days {
		out[i] = d.Date
	}
	return out
}

// index returns the position of date in Days, or -1.
func (r Result) index(date time.Time) int {
	date = model.Day(date)
	i := sort.Search(len(r.Days), func(i int) bool { return !r.Days[i].Date.Before(date) })
	if i < len(r.Days) && r.Days[i].Date.Equal(date) {
		return i
	}
	return -1
}

// Day returns the snapshot for date.
func (r Result) Day(date time.Time) (Day, bool) {
	i := r.index(date)
	if i < 0 {
		return Day{}, false
	}
	return r.Days[i], true
}

// Previous returns the snapshot of the computed day before date.
func (r Result) Previous(date time.Time) (Day, bool) {
	i := r.index(date)
	if i <= 0 {
		return Day{}, false
	}
	return r.Days[i-1], true
}

// Latest returns the most recent snapshot.
func (r Result) Latest() (Day, bool) {
	if len(r.Days) == 0 {
		return Day{}, false
	}
	return r.Days[len(r.Days)-1], true
}

// Engine computes rankings with a fixed tie policy.
type Engine struct {
	policy TiePolicy
	logger logger.Logger
}

// New creates an Engine. The zero configuration skips tied matches.
func New(opts ...Option) *Engine {
	e := &Engine{
		policy: TieSkip,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the configured tie policy.
func (e *Engine) Policy() TiePolicy { return e.policy }

// Compute runs a fresh engine over matches.
func Compute(matches []model.Match, opts ...Option) Result {
	return New(opts...).Compute(matches)
}

// Compute folds matches into daily snapshots. The input slice is not
// modified and no state survives the call.
func (e *Engine) Compute(matches []model.Match) Result {
	ctx := context.Background()

	played := make([]model.Match, 0, len(matches))
	for _, m := range matches {
		if !m.HasPlayers() {
			e.logger.Debug(ctx, "skipping match", logger.Int64("match_id", m.ID), logger.Error(ErrMissingPlayer))
			continue
		}
		m.Date = model.Day(m.Date)
		played = append(played, m)
	}
	if len(played) == 0 {
		return Result{}
	}

	sort.SliceStable(played, func(i, j int) bool {
		if !played[i].Date.Equal(played[j].Date) {
			return played[i].Date.Before(played[j].Date)
		}
		return played[i].ID < played[j].ID
	})

	st := newState(played)
	res := Result{players: st.players}
	for start := 0; start < len(played); {
		end := start + 1
		for end < len(played) && played[end].Date.Equal(played[start].Date) {
			end++
		}
		res.Days = append(res.Days, e.playDay(ctx, st, played[start:end]))
		start = end
	}
	return res
}

// playDay applies one day's matches, already in match ID order.
func (e *Engine) playDay(ctx context.Context, st *state, matches []model.Match) Day {
	date := matches[0].Date
	ranks := st.ranks()

	deltas := make(map[string]int, len(st.players))
	for _, p := range st.players {
		deltas[p] = 0
	}

	results := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		winner, loser, err := Decide(m, e.policy)
		if err != nil {
			e.logger.Debug(ctx, "skipping match",
				logger.Int64("match_id", m.ID),
				logger.Date("date", date),
				logger.Error(err),
			)
			results = append(results, MatchResult{Match: m, Skipped: err})
			continue
		}

		wr, lr := st.rank(ranks, winner), st.rank(ranks, loser)
		gain := WinnerGain(wr, lr)

		st.points[winner] += gain.Total()
		st.points[loser] = max(0, st.points[loser]+PointsLoss)

		deltas[winner] += gain.Total()
		deltas[loser] += PointsLoss

		results = append(results, MatchResult{
			Match:      m,
			Winner:     winner,
			Loser:      loser,
			WinnerRank: wr,
			LoserRank:  lr,
			Gain:       gain,
		})
	}

	return Day{
		Date:      date,
		Standings: st.standings(),
		Deltas:    deltas,
		Results:   results,
	}
}

// state is the score mapping owned by a single Compute call.
type state struct {
	points  map[string]int
	players []string // sorted universe
}

func newState(matches []model.Match) *state {
	points := make(map[string]int)
	for _, m := range matches {
		points[m.PlayerA] = PointsInitial
		points[m.PlayerB] = PointsInitial
	}
	players := make([]string, 0, len(points))
	for p := range points {
		players = append(players, p)
	}
	sort.Strings(players)
	return &state{points: points, players: players}
}

// standings returns a fresh snapshot ordered by points desc, player asc.
func (s *state) standings() []model.Standing {
	out := make([]model.Standing, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, model.Standing{Player: p, Points: s.points[p]})
	}
	// players is already sorted ascending, so a stable sort on points alone
	// keeps the identifier tie-break.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}

// ranks maps each player to its 1-based position in the current standings.
func (s *state) ranks() map[string]int {
	ranks := make(map[string]int, len(s.players))
	for i, row := range s.standings() {
		ranks[row.Player] = i + 1
	}
	return ranks
}

// rank looks player up in a pre-day rank map. Players missing from it rank
// after everybody else.
func (s *state) rank(ranks map[string]int, player string) int {
	if r, ok := ranks[player]; ok {
		return r
	}
	return len(s.players) + 1
}
