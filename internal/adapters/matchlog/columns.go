package matchlog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/rally/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Column aliases. The first name of each list is the sheet's original header.
var (
	colMatchID = []string{"ID_Partida", "match_id", "id"}
	colDate    = []string{"Data", "date"}
	colPlayerA = []string{"Jogador_1", "player_a", "player1"}
	colPlayerB = []string{"Jogador_2", "player_b", "player2"}
	colScoreA  = []string{"Resultado_J1", "score_a", "score1"}
	colScoreB  = []string{"Resultado_J2", "score_b", "score2"}
)

// Header returns the column row of the original sheet.
func Header() []string {
	return []string{colMatchID[0], colDate[0], colPlayerA[0], colPlayerB[0], colScoreA[0], colScoreB[0]}
}

// Report counts what happened to the rows of one load.
type Report struct {
	Rows    int // data rows read, header excluded
	Dropped int // empty rows and rows with an unparseable date
	Coerced int // kept rows where an id or score was forced to 0
}

// Kept is the number of rows turned into matches.
func (r Report) Kept() int { return r.Rows - r.Dropped }

// layout resolves header positions for the six columns.
type layout struct {
	id, date, a, b, sa, sb int
}

func resolveLayout(header []string) (layout, error) {
	l := layout{}
	for _, c := range []struct {
		dst   *int
		names []string
	}{
		{&l.id, colMatchID},
		{&l.date, colDate},
		{&l.a, colPlayerA},
		{&l.b, colPlayerB},
		{&l.sa, colScoreA},
		{&l.sb, colScoreB},
	} {
		*c.dst = findColumn(header, c.names)
		if *c.dst < 0 {
			return layout{}, fmt.Errorf("%w: %s", ErrMissingColumn, c.names[0])
		}
	}
	return l, nil
}

// findColumn searches for a column by multiple possible names
// (case-insensitive). Spaces, underscores and hyphens are ignored.
func findColumn(header []string, names []string) int {
	for i, col := range header {
		for _, name := range names {
			if normalizeHeader(col) == normalizeHeader(name) {
				return i
			}
		}
	}
	return -1
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// decoder turns tabular records into matches.
type decoder struct {
	dateLayout string

	serialDates bool // accept Excel serial numbers in the date column
	date1904    bool
}

// decode reads records whose first non-empty row is the header.
func (d decoder) decode(records [][]string) ([]model.Match, Report, error) {
	start := 0
	for start < len(records) && blank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, Report{}, ErrEmpty
	}
	l, err := resolveLayout(records[start])
	if err != nil {
		return nil, Report{}, err
	}

	var (
		rep     Report
		matches []model.Match
	)
	for _, rec := range records[start+1:] {
		rep.Rows++
		if blank(rec) {
			rep.Dropped++
			continue
		}
		date, ok := d.parseDate(cell(rec, l.date))
		if !ok {
			rep.Dropped++
			continue
		}
		id, c1 := parseCount(cell(rec, l.id))
		sa, c2 := parseCount(cell(rec, l.sa))
		sb, c3 := parseCount(cell(rec, l.sb))
		if c1 || c2 || c3 {
			rep.Coerced++
		}
		matches = append(matches, model.Match{
			ID:      id,
			Date:    date,
			PlayerA: strings.TrimSpace(cell(rec, l.a)),
			PlayerB: strings.TrimSpace(cell(rec, l.b)),
			ScoreA:  int(sa),
			ScoreB:  int(sb),
		})
	}
	return matches, rep, nil
}

// parseDate tries the configured layout, then ISO, then an Excel serial
// number when the decoder reads a workbook.
func (d decoder) parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{d.dateLayout, time.DateOnly} {
		if layout == "" {
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return model.Day(t), true
		}
	}
	if d.serialDates {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 {
			if t, err := excelize.ExcelDateToTime(f, d.date1904); err == nil {
				return model.Day(t), true
			}
		}
	}
	return time.Time{}, false
}

// parseCount reads a non-negative integer. Decimals are truncated; empty,
// non-numeric and negative values become 0 and report coerced.
func parseCount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, true
		}
		return n, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0, true
	}
	return int64(f), false
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
