package cli

import (
	"fmt"
	"io"

	"github.com/okian/rally/internal/domain/types"
	"github.com/spf13/cobra"
)

// PlayerResult is the JSON shape of the player command.
type PlayerResult struct {
	Profile types.Profile        `json:"profile"`
	History []types.HistoryPoint `json:"history"`
}

// NewPlayerCommand creates the player command.
func NewPlayerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "player <name>",
		Short: "Print a player's record and ranking history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := load(ctx, rootOpts)
			if err != nil {
				return err
			}
			p, err := svc.Profile(ctx, args[0])
			if err != nil {
				return err
			}
			h, err := svc.History(ctx, args[0])
			if err != nil {
				return err
			}
			res := PlayerResult{Profile: p, History: types.NewHistory(h)}
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Print(res, func(w io.Writer) error {
				return writePlayer(w, res)
			})
		},
	}
}

func writePlayer(w io.Writer, res PlayerResult) error {
	p := res.Profile
	fmt.Fprintf(w, "%s\n\n", p.Player)
	fmt.Fprintf(w, "Matches:\t%d\n", p.Matches)
	fmt.Fprintf(w, "Wins:\t%d\n", p.Wins)
	fmt.Fprintf(w, "Losses:\t%d\n", p.Losses)
	fmt.Fprintf(w, "Win rate:\t%.1f%%\n", p.WinRate)
	if p.Nemesis != nil {
		fmt.Fprintf(w, "Nemesis:\t%s (%d losses)\n", p.Nemesis.Opponent, p.Nemesis.Losses)
	}
	if p.Favorite != nil {
		fmt.Fprintf(w, "Favorite:\t%s (%d wins)\n", p.Favorite.Opponent, p.Favorite.Wins)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPPONENT\tWINS\tLOSSES")
	for _, o := range p.Opponents {
		fmt.Fprintf(w, "%s\t%d\t%d\n", o.Opponent, o.Wins, o.Losses)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "DATE\tPOS\tPOINTS\tDELTA")
	for _, h := range res.History {
		fmt.Fprintf(w, "%s\t%d\t%d\t%+d\n", h.Date, h.Position, h.Points, h.Delta)
	}
	return nil
}
