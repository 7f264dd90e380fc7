package registry

import (
	"fmt"

	"github.com/roach88/policycheck/internal/rule"
)

// PolicyKind selects how a phase's pass threshold is decided.
type PolicyKind int

const (
	// RequireAllCritical: every case is critical and all must pass.
	RequireAllCritical PolicyKind = iota + 1
	// RequireFraction: no case is critical; Fraction of cases must pass.
	RequireFraction
)

// Policy kind names used in suite tables.
const (
	PolicyRequireAllCritical = "require-all-critical"
	PolicyRequireFraction    = "require-fraction"
)

// Policy is a phase's threshold policy.
type Policy struct {
	Kind     PolicyKind
	Fraction float64 // only meaningful for RequireFraction
}

// AllCritical returns the require-all-critical policy.
func AllCritical() Policy { return Policy{Kind: RequireAllCritical} }

// Fraction returns a require-fraction(p) policy.
func Fraction(p float64) Policy { return Policy{Kind: RequireFraction, Fraction: p} }

// Threshold returns the pass fraction the phase must reach.
func (p Policy) Threshold() float64 {
	if p.Kind == RequireAllCritical {
		return 1
	}
	return p.Fraction
}

func (p Policy) String() string {
	switch p.Kind {
	case RequireAllCritical:
		return PolicyRequireAllCritical
	case RequireFraction:
		return fmt.Sprintf("%s(%.2f)", PolicyRequireFraction, p.Fraction)
	default:
		return fmt.Sprintf("policy(%d)", int(p.Kind))
	}
}

// TestCase is one stimulus and the rule that scores the response to it.
type TestCase struct {
	ID       string
	Name     string
	Prompt   string
	Rule     rule.Spec
	Critical bool
}

// Phase is an ordered group of cases sharing one threshold policy.
type Phase struct {
	ID     string
	Name   string
	Policy Policy
	Cases  []TestCase
}

// CriticalCount returns the number of cases flagged critical.
func (p Phase) CriticalCount() int {
	n := 0
	for _, c := range p.Cases {
		if c.Critical {
			n++
		}
	}
	return n
}

// Case looks up a case by id.
func (p Phase) Case(id string) (TestCase, bool) {
	for _, c := range p.Cases {
		if c.ID == id {
			return c, true
		}
	}
	return TestCase{}, false
}
