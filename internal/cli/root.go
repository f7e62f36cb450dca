// Package cli implements the rally command line: offline ranking
// computation, player profiles, workbook export and match log generation.
package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/okian/rally/internal/adapters/matchlog"
	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/config"
	"github.com/okian/rally/internal/domain/ranking"
	"github.com/okian/rally/pkg/logger"
	"github.com/spf13/cobra"
)

// cliMaxLimit lets the CLI print whole leaderboards.
const cliMaxLimit = 1 << 20

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Source     string
	Format     string // "json" | "text"
	TiePolicy  string
	DateLayout string
	Verbose    bool

	now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rally CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "rally",
		Short: "rally - daily rankings from a match log",
		Long: `Compute day-by-day player rankings from a match log.

The log is read from a CSV or XLSX file, an HTTP(S) CSV export or a
sqlite://path?table=name database. Each day's bonuses are decided against
the previous day's ranking.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := ranking.ParseTiePolicy(opts.TiePolicy); err != nil {
				return err
			}
			return initLogger(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Source, "source", "s", config.DefaultSource, "match log location (file, http(s) URL or sqlite://path?table=name)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.TiePolicy, "tie-policy", string(ranking.TieSkip), "how tied scores are handled (skip|second_player)")
	cmd.PersistentFlags().StringVar(&opts.DateLayout, "date-layout", config.DefaultDateLayout, "Go time layout of the date column")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewComputeCommand(opts))
	cmd.AddCommand(NewPlayerCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))

	return cmd
}

// initLogger sends logs to stderr so JSON output on stdout stays clean.
func initLogger(cmd *cobra.Command, opts *RootOptions) error {
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return err
	}
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// load reads the source once and returns a service holding the snapshot.
func load(ctx context.Context, opts *RootOptions) (*service.Service, error) {
	policy, err := ranking.ParseTiePolicy(opts.TiePolicy)
	if err != nil {
		return nil, err
	}
	log := logger.Get().Named("cli")
	src, err := matchlog.NewSource(opts.Source,
		matchlog.WithDateLayout(opts.DateLayout),
		matchlog.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	svc := service.New(src,
		service.WithTiePolicy(policy),
		service.WithMaxLeaderboardLimit(cliMaxLimit),
		service.WithLogger(log),
	)
	if _, err := svc.Refresh(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
