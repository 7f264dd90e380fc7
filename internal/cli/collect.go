package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/policycheck/internal/collect"
)

// CollectOptions holds flags for the collect command.
type CollectOptions struct {
	*RootOptions
	ReportOptions
	TranscriptDir string
}

// NewCollectCommand creates the collect command.
func NewCollectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CollectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Prompt for responses interactively, then score them",
		Long: `Walk through every case of the suite, print its prompt, and read the
agent's response pasted on stdin. End each paste with a line containing only
"."; an empty paste skips the case. End of input stops collection early.

The raw transcript is saved to --transcript-dir before scoring, so a run can
be audited or re-scored later with "policycheck replay".

Examples:
  policycheck collect
  policycheck collect --transcript-dir ./audit --out-dir ./reports`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(opts, cmd)
		},
	}

	addReportFlags(cmd, &opts.ReportOptions)
	cmd.Flags().StringVar(&opts.TranscriptDir, "transcript-dir", "transcripts", "directory for the raw transcript")

	return cmd
}

func runCollect(opts *CollectOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	reg, err := loadRegistry(formatter, opts.Thresholds)
	if err != nil {
		return err
	}

	// Keep stdout clean for the JSON document.
	var promptOut io.Writer = cmd.OutOrStdout()
	if opts.Format == "json" {
		promptOut = cmd.ErrOrStderr()
	}

	rec := collect.NewRecorder(opts.TranscriptDir, reg.Name, reg.Version, opts.clock(), opts.ids(), logger)
	logger.Info("collecting responses", "run_id", rec.RunID(), "cases", reg.CaseCount())

	src := collect.Record(collect.NewPromptSource(reg.Phases(), cmd.InOrStdin(), promptOut), rec)
	responses, collectErr := collect.Drain(src)

	if _, err := rec.Save(); err != nil {
		_ = formatter.Error(ErrCodeWriteFail, err.Error(), nil)
		return WrapExitError(ExitCommandError, "save transcript", err)
	}
	if collectErr != nil {
		_ = formatter.Error(ErrCodeBadInput, collectErr.Error(), nil)
		return WrapExitError(ExitCommandError, "collection interrupted", collectErr)
	}

	return scoreAndReport(opts.RootOptions, &opts.ReportOptions, formatter, logger, reg, responses, rec.RunID())
}
