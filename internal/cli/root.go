package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/policycheck/internal/collect"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Clock and IDs allow overriding time and run ids (for testing).
	// If nil, SystemClock and UUIDv7Generator are used.
	Clock collect.Clock
	IDs   collect.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the policycheck CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policycheck",
		Short: "policycheck - score agent responses against a policy suite",
		Long: `Score an agent's free-text responses against a phased suite of lexical
policy rules and report a pass/fail verdict.

One phase may require every critical case to pass; every other phase must
reach its pass-rate threshold on its own.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewCollectCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger builds the diagnostic logger; Debug with --verbose, Info otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) now() time.Time {
	if o.Clock == nil {
		return collect.SystemClock{}.Now()
	}
	return o.Clock.Now()
}

func (o *RootOptions) clock() collect.Clock {
	if o.Clock == nil {
		return collect.SystemClock{}
	}
	return o.Clock
}

func (o *RootOptions) ids() collect.IDGenerator {
	if o.IDs == nil {
		return collect.UUIDv7Generator{}
	}
	return o.IDs
}
