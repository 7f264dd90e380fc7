package harness

import (
	"sort"

	"github.com/roach88/policycheck/internal/registry"
)

// Responses maps phase id -> case id -> response text.
// Case ids are only unique within a phase, so both keys are needed.
type Responses map[string]map[string]string

// Set records the response for a case, replacing any earlier one.
func (r Responses) Set(phaseID, caseID, text string) {
	byCase, ok := r[phaseID]
	if !ok {
		byCase = make(map[string]string)
		r[phaseID] = byCase
	}
	byCase[caseID] = text
}

// Lookup returns the response for a case and whether one was supplied.
func (r Responses) Lookup(phaseID, caseID string) (string, bool) {
	text, ok := r[phaseID][caseID]
	return text, ok
}

// Count returns the number of responses across all phases.
func (r Responses) Count() int {
	n := 0
	for _, byCase := range r {
		n += len(byCase)
	}
	return n
}

// Unmatched returns responses whose (phase, case) key matches no case in
// phases, sorted. They never affect scoring.
func Unmatched(phases []registry.Phase, responses Responses) []CaseRef {
	known := make(map[string]map[string]bool, len(phases))
	for _, p := range phases {
		ids := make(map[string]bool, len(p.Cases))
		for _, c := range p.Cases {
			ids[c.ID] = true
		}
		known[p.ID] = ids
	}

	var out []CaseRef
	for phaseID, byCase := range responses {
		for caseID := range byCase {
			if !known[phaseID][caseID] {
				out = append(out, CaseRef{PhaseID: phaseID, CaseID: caseID})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PhaseID != out[j].PhaseID {
			return out[i].PhaseID < out[j].PhaseID
		}
		return out[i].CaseID < out[j].CaseID
	})
	return out
}
