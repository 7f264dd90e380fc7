package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/policycheck/internal/collect"
	"github.com/roach88/policycheck/internal/harness"
	"github.com/roach88/policycheck/internal/registry"
	"github.com/roach88/policycheck/internal/report"
)

// ReportOptions holds the flags shared by every command that scores.
type ReportOptions struct {
	Thresholds       []string
	OutDir           string
	IncludeResponses bool
}

// ScoreOptions holds flags for the score command.
type ScoreOptions struct {
	*RootOptions
	ReportOptions
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "score [responses-file]",
		Short: "Score a responses file against the suite",
		Long: `Score collected responses against the built-in suite and print the report.

The responses file is YAML or JSON shaped as {phase: {case: response}}.
With no file, or with "-", the document is read from stdin. A null response
is scored as empty text. Cases without a response fail. Responses for unknown
cases are logged and ignored.

Exit codes:
  0 - Verdict: SUCCESS
  1 - Verdict: FAILURE
  2 - Command error (unreadable file, invalid configuration, etc.)

Examples:
  policycheck score responses.json
  cat responses.json | policycheck score
  policycheck score responses.yaml --out-dir ./reports
  policycheck score responses.yaml --threshold phase4=0.6 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stdinPath
			if len(args) == 1 {
				path = args[0]
			}
			return runScore(opts, path, cmd)
		},
	}

	addReportFlags(cmd, &opts.ReportOptions)

	return cmd
}

// stdinPath selects stdin as the responses source.
const stdinPath = "-"

func addReportFlags(cmd *cobra.Command, ro *ReportOptions) {
	addThresholdFlag(cmd, &ro.Thresholds)
	cmd.Flags().StringVar(&ro.OutDir, "out-dir", "", "also write report-<timestamp>-<run-id>.txt and .json to this directory")
	cmd.Flags().BoolVar(&ro.IncludeResponses, "include-responses", false, "include raw responses in the JSON report")
}

func runScore(opts *ScoreOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	reg, err := loadRegistry(formatter, opts.Thresholds)
	if err != nil {
		return err
	}

	responses, err := loadResponses(formatter, path, cmd)
	if err != nil {
		return err
	}
	logger.Info("responses loaded", "path", path, "count", responses.Count())

	return scoreAndReport(opts.RootOptions, &opts.ReportOptions, formatter, logger, reg, responses, opts.ids().Generate())
}

func loadResponses(formatter *OutputFormatter, path string, cmd *cobra.Command) (harness.Responses, error) {
	if path == stdinPath {
		responses, err := collect.ReadResponses(cmd.InOrStdin())
		if err != nil {
			_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "invalid responses on stdin", err)
		}
		return responses, nil
	}

	if _, err := os.Stat(path); err != nil {
		msg := fmt.Sprintf("responses file not found: %s", path)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return nil, WrapExitError(ExitCommandError, msg, err)
	}
	responses, err := collect.LoadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "invalid responses file", err)
	}
	return responses, nil
}

// scoreAndReport runs every phase, prints the report, optionally writes
// report files, and maps the verdict to an exit code.
func scoreAndReport(
	root *RootOptions,
	ro *ReportOptions,
	formatter *OutputFormatter,
	logger *slog.Logger,
	reg *registry.Registry,
	responses harness.Responses,
	runID string,
) error {
	phases := reg.Phases()
	warnInputGaps(logger, phases, responses)

	results := harness.RunAll(phases, responses)
	verdict := harness.Aggregate(results)
	for _, a := range verdict.Anomalies {
		logger.Warn("scoring anomaly", "kind", a.Kind, "phase", a.PhaseID, "message", a.Message)
	}

	at := root.now()
	header := report.HeaderFor(reg, runID, at)
	text := report.Render(header, results, verdict)
	doc := report.NewDocument(header, results, verdict, ro.IncludeResponses)

	if ro.OutDir != "" {
		js, err := report.RenderJSON(doc)
		if err != nil {
			return WrapExitError(ExitCommandError, "encode report", err)
		}
		paths, err := report.WriteFiles(ro.OutDir, at, runID, text, js)
		if err != nil {
			_ = formatter.Error(ErrCodeWriteFail, err.Error(), nil)
			return WrapExitError(ExitCommandError, "write report", err)
		}
		for _, p := range paths {
			logger.Info("report written", "path", p)
		}
	}

	failMsg := verdictFailure(verdict)
	var out any = text
	if root.Format == "json" {
		out = doc
	}
	if err := formatter.Result(verdict.Success, out, ErrCodeVerdict, failMsg); err != nil {
		return WrapExitError(ExitCommandError, "write output", err)
	}

	logger.Debug("run complete", "run_id", runID, "success", verdict.Success,
		"critical_failures", len(verdict.CriticalFailures))
	if !verdict.Success {
		return NewExitError(ExitFailure, failMsg)
	}
	return nil
}

// warnInputGaps logs responses that match no case and phases that received
// no responses at all. Neither changes scoring.
func warnInputGaps(logger *slog.Logger, phases []registry.Phase, responses harness.Responses) {
	for _, ref := range harness.Unmatched(phases, responses) {
		logger.Warn("response matches no case", "phase", ref.PhaseID, "case", ref.CaseID)
	}
	for _, p := range phases {
		if len(p.Cases) > 0 && len(responses[p.ID]) == 0 {
			logger.Warn("no responses for phase", "phase", p.ID)
		}
	}
}

func verdictFailure(v harness.Verdict) string {
	below := 0
	for _, pv := range v.Phases {
		if !pv.Excluded && !pv.OK {
			below++
		}
	}
	return fmt.Sprintf("verdict: FAILURE (%d critical failure(s), %d phase(s) below threshold)",
		len(v.CriticalFailures), below)
}
