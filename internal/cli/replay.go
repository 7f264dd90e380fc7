package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/policycheck/internal/collect"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	ReportOptions
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <transcript>",
		Short: "Re-score a saved collection transcript",
		Long: `Re-score the responses recorded in a transcript written by "policycheck collect".

The report carries the transcript's run id. A transcript recorded against a
different suite version is still scored, with a warning.

Exit codes:
  0 - Verdict: SUCCESS
  1 - Verdict: FAILURE
  2 - Command error (transcript not found, invalid configuration, etc.)

Examples:
  policycheck replay transcripts/transcript-20261018T093000Z-0192....yaml
  policycheck replay audit.yaml --threshold phase4=0.6 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	addReportFlags(cmd, &opts.ReportOptions)

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	reg, err := loadRegistry(formatter, opts.Thresholds)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err != nil {
		msg := fmt.Sprintf("transcript not found: %s", path)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return WrapExitError(ExitCommandError, msg, err)
	}
	tr, err := collect.LoadTranscript(path)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid transcript", err)
	}

	if tr.Suite != reg.Name || tr.Version != reg.Version {
		logger.Warn("transcript recorded against a different suite",
			"transcript_suite", tr.Suite, "transcript_version", tr.Version,
			"suite", reg.Name, "version", reg.Version)
	}
	logger.Info("transcript loaded", "path", path, "run_id", tr.RunID, "entries", len(tr.Entries))

	runID := tr.RunID
	if runID == "" {
		runID = opts.ids().Generate()
	}
	return scoreAndReport(opts.RootOptions, &opts.ReportOptions, formatter, logger, reg, tr.Responses(), runID)
}
