package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/rally/internal/adapters/report"
	"github.com/spf13/cobra"
)

const outputFileMode = 0o644

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		out   string
		chart string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ranking history as an XLSX workbook",
		Long: `Write every day's standings, the player list and the daily highlights
to an XLSX workbook. With --chart, write a PNG of that player's rank
history instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := load(ctx, rootOpts)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if chart != "" {
				history, err := svc.History(ctx, chart)
				if err != nil {
					return err
				}
				players, err := svc.Players(ctx)
				if err != nil {
					return err
				}
				png, err := report.RankHistoryChart(chart, history, len(players), report.DefaultPalette)
				if err != nil {
					return err
				}
				buf.Write(png)
			} else {
				snap, err := svc.Snapshot(ctx)
				if err != nil {
					return err
				}
				if err := report.WriteWorkbook(&buf, snap.Result); err != nil {
					return err
				}
			}

			if out == "" {
				out = "rankings.xlsx"
				if chart != "" {
					out = chart + ".png"
				}
			}
			if err := os.WriteFile(filepath.Clean(out), buf.Bytes(), outputFileMode); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default rankings.xlsx, or <player>.png with --chart)")
	cmd.Flags().StringVar(&chart, "chart", "", "write the rank history chart of this player")
	return cmd
}
