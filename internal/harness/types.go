package harness

import "github.com/roach88/policycheck/internal/registry"

// TestResult is the outcome of one case.
type TestResult struct {
	CaseID   string `json:"case_id"`
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Critical bool   `json:"critical"`

	// Answered is false when no response was supplied for the case.
	Answered bool `json:"answered"`

	// Reason explains the pass/fail decision.
	Reason string `json:"reason"`

	// Response is the raw text as supplied, kept for audit.
	Response string `json:"response,omitempty"`
}

// PhaseResult is the outcome of one phase.
type PhaseResult struct {
	PhaseID string          `json:"phase_id"`
	Name    string          `json:"name"`
	Policy  registry.Policy `json:"-"`
	Results []TestResult    `json:"results"`

	Passed         int `json:"passed"`
	Total          int `json:"total"`
	CriticalPassed int `json:"critical_passed"`
	CriticalTotal  int `json:"critical_total"`
}

// Fraction returns Passed/Total, or 0 for an empty phase.
func (p PhaseResult) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Passed) / float64(p.Total)
}

// Failed returns the results that did not pass, in case order.
func (p PhaseResult) Failed() []TestResult {
	var out []TestResult
	for _, r := range p.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// CaseRef identifies a case across phases.
type CaseRef struct {
	PhaseID string `json:"phase_id"`
	CaseID  string `json:"case_id"`
	Name    string `json:"name"`
}

// AnomalyKind classifies a non-fatal evaluation anomaly.
type AnomalyKind string

// Anomaly kinds.
const (
	AnomalyNoCriticalPhase    AnomalyKind = "no_critical_phase"
	AnomalyEmptyCriticalPhase AnomalyKind = "empty_critical_phase"
	AnomalyEmptyPhase         AnomalyKind = "empty_phase"
)

// Anomaly is a condition that does not abort the run but must be visible in
// the report.
type Anomaly struct {
	Kind    AnomalyKind `json:"kind"`
	PhaseID string      `json:"phase_id,omitempty"`
	Message string      `json:"message"`
}

// PhaseVerdict is the threshold decision for one require-fraction phase.
type PhaseVerdict struct {
	PhaseID   string  `json:"phase_id"`
	Passed    int     `json:"passed"`
	Total     int     `json:"total"`
	Threshold float64 `json:"threshold"`
	OK        bool    `json:"ok"`

	// Excluded is true for phases with no cases; they do not affect the verdict.
	Excluded bool `json:"excluded,omitempty"`
}

// Verdict is the single outcome of a run plus its supporting evidence.
type Verdict struct {
	Success bool `json:"success"`

	CriticalPhaseID string `json:"critical_phase_id,omitempty"`
	CriticalOK      bool   `json:"critical_ok"`
	CriticalPassed  int    `json:"critical_passed"`
	CriticalTotal   int    `json:"critical_total"`

	// Phases holds one decision per require-fraction phase, in phase order.
	Phases []PhaseVerdict `json:"phases"`

	// Pooled* summarise all require-fraction phases together.
	// Informational only; never used to decide Success.
	PooledPassed   int     `json:"pooled_passed"`
	PooledTotal    int     `json:"pooled_total"`
	PooledFraction float64 `json:"pooled_fraction"`

	CriticalFailures []CaseRef `json:"critical_failures"`
	Anomalies        []Anomaly `json:"anomalies"`
}
