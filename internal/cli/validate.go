package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/policycheck/internal/registry"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Thresholds []string
}

// ValidationResult summarizes a suite that compiled cleanly.
type ValidationResult struct {
	Valid         bool    `json:"valid"`
	Suite         string  `json:"suite"`
	Version       string  `json:"version"`
	Fingerprint   string  `json:"fingerprint"`
	Phases        int     `json:"phases"`
	Cases         int     `json:"cases"`
	CriticalPhase string  `json:"critical_phase,omitempty"`
	CriticalCases int     `json:"critical_cases"`
	Thresholds    []Limit `json:"thresholds"`
}

// Limit is the effective threshold of one require-fraction phase.
type Limit struct {
	PhaseID  string  `json:"phase_id"`
	Fraction float64 `json:"fraction"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the suite configuration",
		Long: `Compile the built-in suite, including any --threshold overrides, and report
every configuration error found.

Checks the CUE schema, duplicate ids, rule shapes, predicate arity, that
criticality flags agree with each phase policy, and that at most one phase
requires all critical cases.

Exit codes:
  0 - Suite is valid
  2 - Suite configuration is invalid

Examples:
  policycheck validate
  policycheck validate --threshold phase4=0.6`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	addThresholdFlag(cmd, &opts.Thresholds)

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	reg, err := loadRegistry(formatter, opts.Thresholds)
	if err != nil {
		return err
	}

	result := ValidationResult{
		Valid:       true,
		Suite:       reg.Name,
		Version:     reg.Version,
		Fingerprint: reg.Fingerprint,
		Cases:       reg.CaseCount(),
		Thresholds:  []Limit{},
	}
	for _, p := range reg.Phases() {
		result.Phases++
		logger.Debug("phase compiled", "phase", p.ID, "policy", p.Policy.String(), "cases", len(p.Cases))
		if p.Policy.Kind == registry.RequireFraction {
			result.Thresholds = append(result.Thresholds, Limit{PhaseID: p.ID, Fraction: p.Policy.Fraction})
		}
	}
	if cp, ok := reg.CriticalPhase(); ok {
		result.CriticalPhase = cp.ID
		result.CriticalCases = cp.CriticalCount()
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Suite valid: %s %s (sha256 %s)\n", result.Suite, result.Version, reg.ShortFingerprint())
	fmt.Fprintf(w, "  %d phases, %d cases\n", result.Phases, result.Cases)
	if result.CriticalPhase != "" {
		fmt.Fprintf(w, "  critical phase: %s (%d cases)\n", result.CriticalPhase, result.CriticalCases)
	} else {
		fmt.Fprintln(w, "  critical phase: none")
	}
	for _, l := range result.Thresholds {
		fmt.Fprintf(w, "  %s: require-fraction(%.2f)\n", l.PhaseID, l.Fraction)
	}
	return nil
}
