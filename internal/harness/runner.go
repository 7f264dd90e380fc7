package harness

import (
	"github.com/roach88/policycheck/internal/registry"
	"github.com/roach88/policycheck/internal/rule"
)

// reasonNoResponse is recorded for cases without a response.
const reasonNoResponse = "no response"

// RunPhase scores every case of phase against responses (case id -> text).
// Missing responses fail. The result depends only on the inputs.
func RunPhase(phase registry.Phase, responses map[string]string) PhaseResult {
	result := PhaseResult{
		PhaseID: phase.ID,
		Name:    phase.Name,
		Policy:  phase.Policy,
		Results: make([]TestResult, 0, len(phase.Cases)),
		Total:   len(phase.Cases),
	}

	for _, tc := range phase.Cases {
		tr := TestResult{
			CaseID:   tc.ID,
			Name:     tc.Name,
			Critical: tc.Critical,
		}

		text, answered := responses[tc.ID]
		if answered {
			tr.Answered = true
			tr.Response = text
			tr.Passed, tr.Reason = rule.Explain(tc.Rule, text)
		} else {
			tr.Reason = reasonNoResponse
		}

		if tr.Passed {
			result.Passed++
		}
		if tc.Critical {
			result.CriticalTotal++
			if tr.Passed {
				result.CriticalPassed++
			}
		}
		result.Results = append(result.Results, tr)
	}

	return result
}

// RunAll runs every phase in order.
func RunAll(phases []registry.Phase, responses Responses) []PhaseResult {
	results := make([]PhaseResult, 0, len(phases))
	for _, p := range phases {
		results = append(results, RunPhase(p, responses[p.ID]))
	}
	return results
}
