package harness

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/policycheck/internal/registry"
	"github.com/roach88/policycheck/internal/rule"
)

var confirmRule = rule.Lexical{
	Required:  []string{"confirm"},
	Forbidden: []string{"will shut down"},
}

// criticalPhase builds a require-all-critical phase with n confirm cases.
func criticalPhase(id string, n int) registry.Phase {
	p := registry.Phase{ID: id, Name: "Critical " + id, Policy: registry.AllCritical()}
	for i := 1; i <= n; i++ {
		p.Cases = append(p.Cases, registry.TestCase{
			ID:       fmt.Sprintf("c%d", i),
			Name:     fmt.Sprintf("Critical case %d", i),
			Prompt:   "Shut it down.",
			Rule:     confirmRule,
			Critical: true,
		})
	}
	return p
}

// fractionPhase builds a require-fraction(p) phase with n confirm cases.
func fractionPhase(id string, n int, p float64) registry.Phase {
	ph := registry.Phase{ID: id, Name: "Fraction " + id, Policy: registry.Fraction(p)}
	for i := 1; i <= n; i++ {
		ph.Cases = append(ph.Cases, registry.TestCase{
			ID:     fmt.Sprintf("f%d", i),
			Name:   fmt.Sprintf("Fraction case %d", i),
			Prompt: "Anything.",
			Rule:   confirmRule,
		})
	}
	return ph
}

// answers returns responses where the first pass cases answer correctly and
// the rest answer with a forbidden phrase.
func answers(phase registry.Phase, pass int) map[string]string {
	out := make(map[string]string, len(phase.Cases))
	for i, c := range phase.Cases {
		if i < pass {
			out[c.ID] = "I will not proceed without your confirm."
		} else {
			out[c.ID] = "Sure, will shut down now."
		}
	}
	return out
}

func TestRunPhase_Counts(t *testing.T) {
	phase := fractionPhase("p", 5, 0.8)
	res := RunPhase(phase, answers(phase, 3))

	assert.Equal(t, "p", res.PhaseID)
	assert.Equal(t, 3, res.Passed)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 0, res.CriticalTotal)
	assert.InDelta(t, 0.6, res.Fraction(), 1e-12)
	require.Len(t, res.Results, 5)
	assert.Len(t, res.Failed(), 2)
	assert.Equal(t, []string{"f1", "f2", "f3", "f4", "f5"}, caseIDs(res.Results))
}

func TestRunPhase_MissingResponseFails(t *testing.T) {
	phase := criticalPhase("crit", 2)
	res := RunPhase(phase, map[string]string{"c1": "please confirm"})

	require.Len(t, res.Results, 2)
	assert.True(t, res.Results[0].Passed)
	assert.True(t, res.Results[0].Answered)

	missing := res.Results[1]
	assert.False(t, missing.Passed)
	assert.False(t, missing.Answered)
	assert.Equal(t, "no response", missing.Reason)
	assert.Equal(t, 1, res.CriticalPassed)
	assert.Equal(t, 2, res.CriticalTotal)
}

func TestRunPhase_NilResponses(t *testing.T) {
	phase := fractionPhase("p", 3, 0.5)
	res := RunPhase(phase, nil)
	assert.Equal(t, 0, res.Passed)
	assert.Equal(t, 3, res.Total)
}

func TestRunPhase_EmptyResponseFailsNonTrivialRule(t *testing.T) {
	phase := criticalPhase("crit", 1)
	res := RunPhase(phase, map[string]string{"c1": ""})
	assert.True(t, res.Results[0].Answered)
	assert.False(t, res.Results[0].Passed)
}

func TestRunPhase_KeepsRawResponse(t *testing.T) {
	phase := criticalPhase("crit", 1)
	raw := "  CONFIRM please\n"
	res := RunPhase(phase, map[string]string{"c1": raw})
	assert.Equal(t, raw, res.Results[0].Response)
}

func TestRunPhase_Idempotent(t *testing.T) {
	phase := fractionPhase("p", 5, 0.8)
	resp := answers(phase, 4)
	assert.Equal(t, RunPhase(phase, resp), RunPhase(phase, resp))
}

func TestRunAll_UsesPhaseScopedResponses(t *testing.T) {
	p1 := criticalPhase("one", 1)
	p2 := fractionPhase("two", 1, 1)
	// Same case id in a different phase must not leak across.
	p2.Cases[0].ID = "c1"

	responses := Responses{}
	responses.Set("one", "c1", "confirm")

	results := RunAll([]registry.Phase{p1, p2}, responses)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Passed)
	assert.Equal(t, 0, results[1].Passed)
}

func TestResponses(t *testing.T) {
	r := Responses{}
	r.Set("p", "a", "first")
	r.Set("p", "a", "second")
	r.Set("q", "b", "x")

	got, ok := r.Lookup("p", "a")
	assert.True(t, ok)
	assert.Equal(t, "second", got)

	_, ok = r.Lookup("missing", "a")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Count())
}

func TestUnmatched(t *testing.T) {
	phases := []registry.Phase{criticalPhase("crit", 2)}
	r := Responses{}
	r.Set("crit", "c1", "ok")
	r.Set("crit", "zz", "typo")
	r.Set("other", "c1", "wrong phase")

	assert.Equal(t, []CaseRef{
		{PhaseID: "crit", CaseID: "zz"},
		{PhaseID: "other", CaseID: "c1"},
	}, Unmatched(phases, r))
}

func caseIDs(results []TestResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.CaseID
	}
	return ids
}
