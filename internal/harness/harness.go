package harness

import (
	"fmt"

	"github.com/roach88/policycheck/internal/registry"
)

// ScenarioResult is the outcome of checking one scenario.
type ScenarioResult struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	Phases  []PhaseResult `json:"phases"`
	Verdict Verdict       `json:"verdict"`
}

// AddError records a failed expectation.
func (r *ScenarioResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// RunScenario scores a scenario's responses against reg and checks the
// verdict against the scenario's expectations.
//
// A returned error means the scenario could not be scored at all (its
// threshold overrides do not fit the table); expectation mismatches are
// reported in the result instead.
func RunScenario(reg *registry.Registry, s *Scenario) (*ScenarioResult, error) {
	phases := reg.Phases()
	if len(s.Thresholds) > 0 {
		var err error
		phases, err = registry.Override(phases, s.Thresholds)
		if err != nil {
			return nil, err
		}
	}

	result := &ScenarioResult{Pass: true, Errors: []string{}}
	result.Phases = RunAll(phases, s.Responses)
	result.Verdict = Aggregate(result.Phases)

	for _, ref := range Unmatched(phases, s.Responses) {
		result.AddError(fmt.Sprintf("response for unknown case %s", ref))
	}
	for _, e := range CheckExpectation(result.Phases, result.Verdict, s.Expect) {
		result.AddError(e.Error())
	}
	return result, nil
}
