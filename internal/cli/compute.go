package cli

import (
	"fmt"
	"io"

	"github.com/okian/rally/internal/domain/types"
	"github.com/spf13/cobra"
)

// ComputeResult is the JSON shape of the compute command.
type ComputeResult struct {
	Leaderboard types.Leaderboard `json:"leaderboard"`
	Highlights  types.Highlights  `json:"highlights"`
}

// NewComputeCommand creates the compute command.
func NewComputeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Print the standings and highlights of a day",
		Long: `Compute the full ranking history and print one day's standings with
point deltas and position changes, followed by the day's top scorer and
biggest upset. The latest day is used unless --date is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := types.ParseDate(date, rootOpts.now())
			if err != nil {
				return err
			}
			svc, err := load(ctx, rootOpts)
			if err != nil {
				return err
			}
			lb, err := svc.Leaderboard(ctx, d, limit)
			if err != nil {
				return err
			}
			h, err := svc.Highlights(ctx, d)
			if err != nil {
				return err
			}
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Print(ComputeResult{Leaderboard: lb, Highlights: h}, func(w io.Writer) error {
				return writeCompute(w, lb, h)
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "day to show (YYYY-MM-DD, DD/MM/YYYY or e.g. \"yesterday\")")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the top N players (0 for all)")
	return cmd
}

func writeCompute(w io.Writer, lb types.Leaderboard, h types.Highlights) error {
	fmt.Fprintf(w, "Ranking for %s\n\n", lb.Date)
	fmt.Fprintln(w, "POS\tPLAYER\tPOINTS\tDELTA\tMOVE")
	for _, e := range lb.Entries {
		fmt.Fprintf(w, "%d\t%s\t%d\t%+d\t%s\n", e.Rank, e.Player, e.Points, e.Delta, movement(e))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Top scorer:\t%s (%+d)\n", h.TopScorer, h.TopDelta)
	if u := h.BiggestUpset; u != nil {
		fmt.Fprintf(w, "Biggest upset:\t%s beat %s (match %d, gap %d)\n", u.Winner, u.Loser, u.MatchID, u.Gap)
	} else {
		fmt.Fprintln(w, "Biggest upset:\tnone")
	}
	return nil
}

func movement(e types.Entry) string {
	switch e.Movement {
	case "up":
		return fmt.Sprintf("▲%d", e.Places)
	case "down":
		return fmt.Sprintf("▼%d", e.Places)
	case "same":
		return "="
	default:
		return "new"
	}
}
