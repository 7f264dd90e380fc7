package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/policycheck/internal/registry"
)

// CLI error codes. Suite configuration errors reuse the registry's
// E200-E299 codes.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeNotFound   = "E005" // Path not found or unreadable
	ErrCodeBadInput   = "E008" // Responses or transcript document malformed
	ErrCodeWriteFail  = "E007" // Report or transcript write error
	ErrCodeBadFlag    = "E009" // Flag value malformed
	ErrCodeVerdict    = "E_VERDICT_FAILED"
	ErrCodeTestFailed = "E_TEST_FAILED"
)

// addThresholdFlag registers the repeatable --threshold phase=p flag.
func addThresholdFlag(cmd *cobra.Command, dst *[]string) {
	cmd.Flags().StringArrayVar(dst, "threshold", nil,
		"override a require-fraction phase threshold, e.g. phase4=0.6 (repeatable)")
}

// parseThresholds turns phase=p pairs into registry overrides.
func parseThresholds(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		id, raw, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("threshold %q: expected phase=fraction", pair)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("threshold %q: %w", pair, err)
		}
		if _, dup := out[id]; dup {
			return nil, fmt.Errorf("threshold for phase %q given twice", id)
		}
		out[id] = p
	}
	return out, nil
}

// loadRegistry compiles the embedded suite with any threshold overrides.
// Every failure is a command error: configuration problems abort before
// anything is scored.
func loadRegistry(f *OutputFormatter, thresholds []string) (*registry.Registry, error) {
	overrides, err := parseThresholds(thresholds)
	if err != nil {
		_ = f.Error(ErrCodeBadFlag, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "invalid --threshold", err)
	}

	reg, err := registry.Default(registry.WithThresholds(overrides))
	if err != nil {
		code, details := configErrorDetails(err)
		_ = f.Error(code, "invalid suite configuration", details)
		if f.Format != "json" {
			for _, e := range details {
				fmt.Fprintf(f.Writer, "  %s\n", e)
			}
		}
		return nil, WrapExitError(ExitCommandError, "invalid suite configuration", err)
	}
	return reg, nil
}

// configErrorDetails extracts the first error code and the full list of
// registry configuration errors, in the order the registry reported them.
func configErrorDetails(err error) (string, []*registry.ConfigError) {
	var errs registry.ConfigErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return errs[0].Code, errs
	}
	var single *registry.ConfigError
	if errors.As(err, &single) {
		return single.Code, []*registry.ConfigError{single}
	}
	return ErrCodeGeneric, nil
}
