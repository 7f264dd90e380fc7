package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/policycheck/internal/harness"
)

// Document is the machine-readable form of a report.
type Document struct {
	Suite       string          `json:"suite"`
	Version     string          `json:"version"`
	Fingerprint string          `json:"fingerprint"`
	RunID       string          `json:"run_id,omitempty"`
	GeneratedAt string          `json:"generated_at,omitempty"`
	Verdict     harness.Verdict `json:"verdict"`
	Phases      []PhaseDocument `json:"phases"`
}

// PhaseDocument is one phase result with its policy spelled out.
type PhaseDocument struct {
	PhaseID        string               `json:"phase_id"`
	Name           string               `json:"name"`
	Policy         string               `json:"policy"`
	Threshold      float64              `json:"threshold"`
	Passed         int                  `json:"passed"`
	Total          int                  `json:"total"`
	CriticalPassed int                  `json:"critical_passed"`
	CriticalTotal  int                  `json:"critical_total"`
	Results        []harness.TestResult `json:"results"`
}

// NewDocument assembles a Document. Raw responses are dropped unless
// includeResponses is set.
func NewDocument(h Header, results []harness.PhaseResult, v harness.Verdict, includeResponses bool) Document {
	doc := Document{
		Suite:       h.Suite,
		Version:     h.Version,
		Fingerprint: h.Fingerprint,
		RunID:       h.RunID,
		Verdict:     v,
		Phases:      make([]PhaseDocument, 0, len(results)),
	}
	if !h.GeneratedAt.IsZero() {
		doc.GeneratedAt = h.GeneratedAt.UTC().Format(time.RFC3339)
	}

	for _, r := range results {
		tests := make([]harness.TestResult, len(r.Results))
		copy(tests, r.Results)
		if !includeResponses {
			for i := range tests {
				tests[i].Response = ""
			}
		}
		doc.Phases = append(doc.Phases, PhaseDocument{
			PhaseID:        r.PhaseID,
			Name:           r.Name,
			Policy:         r.Policy.String(),
			Threshold:      r.Policy.Threshold(),
			Passed:         r.Passed,
			Total:          r.Total,
			CriticalPassed: r.CriticalPassed,
			CriticalTotal:  r.CriticalTotal,
			Results:        tests,
		})
	}
	return doc
}

// RenderJSON produces a pretty-printed JSON representation of the document.
func RenderJSON(doc Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: json marshal: %w", err)
	}
	return append(b, '\n'), nil
}
