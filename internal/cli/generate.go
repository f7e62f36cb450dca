package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/rally/internal/matchgen"
	"github.com/okian/rally/pkg/logger"
	"github.com/spf13/cobra"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		players, days, perDay, tieRate int
		seed                           uint64
		out                            string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random match log as CSV",
		Long: `Generate a synthetic match log in the sheet's CSV format. Dates are
written with --date-layout so the file can be fed back with --source.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := matchgen.New(
				matchgen.WithPlayers(players),
				matchgen.WithDays(days),
				matchgen.WithPerDay(perDay),
				matchgen.WithTieRate(tieRate),
				matchgen.WithSeed(seed),
				matchgen.WithLogger(logger.Get().Named("matchgen")),
			)
			matches, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return matchgen.WriteCSV(cmd.OutOrStdout(), matches, rootOpts.DateLayout)
			}
			f, err := os.Create(filepath.Clean(out))
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := matchgen.WriteCSV(f, matches, rootOpts.DateLayout); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().IntVar(&players, "players", 8, "number of players")
	cmd.Flags().IntVar(&days, "days", 14, "number of match days")
	cmd.Flags().IntVar(&perDay, "per-day", 6, "matches per day")
	cmd.Flags().IntVar(&tieRate, "tie-rate", 5, "percentage of tied matches")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 for a random log)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty or -)")
	return cmd
}
