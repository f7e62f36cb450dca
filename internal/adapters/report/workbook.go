// Package report renders the ranking history as an XLSX workbook and
// player rank histories as PNG charts.
package report

import (
	"fmt"
	"io"

	"github.com/okian/rally/internal/domain/analytics"
	"github.com/okian/rally/internal/domain/ranking"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SheetRankings   = "Rankings"
	SheetPlayers    = "Players"
	SheetHighlights = "Highlights"
)

const dateLayout = "2006-01-02"

// WriteWorkbook writes one row per player per day to Rankings, the sorted
// player universe to Players and the daily highlights to Highlights.
func WriteWorkbook(w io.Writer, res ranking.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetRankings); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetPlayers); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetHighlights); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	rows := [][]any{{"date", "position", "player", "points", "delta"}}
	for _, d := range res.Days {
		for i, s := range d.Standings {
			rows = append(rows, []any{d.Date.Format(dateLayout), i + 1, s.Player, s.Points, d.Deltas[s.Player]})
		}
	}
	if err := writeRows(f, SheetRankings, rows); err != nil {
		return err
	}

	rows = [][]any{{"player"}}
	for _, p := range res.Players() {
		rows = append(rows, []any{p})
	}
	if err := writeRows(f, SheetPlayers, rows); err != nil {
		return err
	}

	rows = [][]any{{"date", "top_scorer", "top_delta", "upset_match_id", "upset_winner", "upset_loser", "upset_gap"}}
	for _, d := range res.Days {
		h, err := analytics.DayHighlights(res, d.Date)
		if err != nil {
			return err
		}
		row := []any{d.Date.Format(dateLayout), h.TopScorer.Player, h.TopScorer.Delta}
		if u := h.BiggestUpset; u != nil {
			row = append(row, u.MatchID, u.Winner, u.Loser, u.Gap)
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, SheetHighlights, rows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
