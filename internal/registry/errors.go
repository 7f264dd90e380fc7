package registry

import (
	"fmt"
	"strings"
)

// Configuration error codes (E200-E299)
const (
	ErrCodeCUE              = "E200" // table failed to build or unify with the schema
	ErrCodeDuplicateCase    = "E201" // case id repeated within a phase
	ErrCodePolicyMismatch   = "E202" // criticality flags disagree with the phase policy
	ErrCodeUnknownRuleKind  = "E203" // rule kind is not lexical or predicate
	ErrCodeUnknownPredicate = "E204" // predicate name not in the predicate table
	ErrCodeBadRule          = "E205" // predicate arguments or terms are malformed
	ErrCodeThreshold        = "E206" // fraction outside (0, 1]
	ErrCodeCriticalPhases   = "E207" // more than one require-all-critical phase
	ErrCodeDuplicatePhase   = "E208" // phase id repeated
	ErrCodeUnknownPolicy    = "E209" // policy kind not recognized
	ErrCodeOverride         = "E210" // threshold override names an unknown or critical phase
)

// ConfigError is a fatal registry configuration error.
type ConfigError struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
}

// ConfigErrors collects every configuration error found in one table.
type ConfigErrors []*ConfigError

// Error implements the error interface.
func (errs ConfigErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return fmt.Sprintf("registry: %d configuration error(s):\n  %s", len(errs), strings.Join(lines, "\n  "))
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (errs ConfigErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// Codes returns the error codes in order, for diagnostics and tests.
func (errs ConfigErrors) Codes() []string {
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}
