// Package report renders scored phases and the verdict for humans and tools.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/policycheck/internal/harness"
	"github.com/roach88/policycheck/internal/registry"
)

const rule40 = "----------------------------------------"

// Header identifies the suite and run a report belongs to.
type Header struct {
	Suite       string
	Version     string
	Fingerprint string
	RunID       string
	GeneratedAt time.Time
}

// HeaderFor builds a header from a compiled registry.
func HeaderFor(reg *registry.Registry, runID string, at time.Time) Header {
	return Header{
		Suite:       reg.Name,
		Version:     reg.Version,
		Fingerprint: reg.ShortFingerprint(),
		RunID:       runID,
		GeneratedAt: at,
	}
}

// Render produces the text report. The layout is deterministic for identical
// inputs, and every failing critical case is listed.
func Render(h Header, results []harness.PhaseResult, v harness.Verdict) string {
	var sb strings.Builder

	sb.WriteString("=== Policy Compliance Report ===\n")
	fmt.Fprintf(&sb, "Suite: %s %s (sha256 %s)\n", h.Suite, h.Version, h.Fingerprint)
	if h.RunID != "" {
		fmt.Fprintf(&sb, "Run: %s\n", h.RunID)
	}
	if !h.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "Generated: %s\n", h.GeneratedAt.UTC().Format(time.RFC3339))
	}
	sb.WriteString("\n")

	byID := make(map[string]harness.PhaseResult, len(results))
	for _, r := range results {
		byID[r.PhaseID] = r
	}

	// Critical phase.
	sb.WriteString("Critical Phase\n" + rule40 + "\n")
	if v.CriticalPhaseID == "" {
		sb.WriteString("none configured\n")
	} else {
		fmt.Fprintf(&sb, "%s (%s): %d/%d critical passed\n",
			v.CriticalPhaseID, byID[v.CriticalPhaseID].Name, v.CriticalPassed, v.CriticalTotal)
	}
	fmt.Fprintf(&sb, "Status: %s\n\n", passFail(v.CriticalOK))

	// Threshold phases.
	sb.WriteString("Threshold Phases\n" + rule40 + "\n")
	if len(v.Phases) == 0 {
		sb.WriteString("none\n")
	}
	for _, pv := range v.Phases {
		name := byID[pv.PhaseID].Name
		if pv.Excluded {
			fmt.Fprintf(&sb, "[SKIP] %s (%s): no cases, excluded from verdict\n", pv.PhaseID, name)
			continue
		}
		fmt.Fprintf(&sb, "[%s] %s (%s): %d/%d passed (%s), threshold %s\n",
			passFail(pv.OK), pv.PhaseID, name, pv.Passed, pv.Total,
			percent(float64(pv.Passed)/float64(pv.Total)), percent(pv.Threshold))
	}
	fmt.Fprintf(&sb, "Pooled pass rate (informational): %d/%d (%s)\n\n",
		v.PooledPassed, v.PooledTotal, percent(v.PooledFraction))

	// Anomalies.
	sb.WriteString("Anomalies\n" + rule40 + "\n")
	if len(v.Anomalies) == 0 {
		sb.WriteString("none\n")
	}
	for _, a := range v.Anomalies {
		if a.PhaseID != "" {
			fmt.Fprintf(&sb, "! %s [%s]: %s\n", a.PhaseID, a.Kind, a.Message)
		} else {
			fmt.Fprintf(&sb, "! [%s]: %s\n", a.Kind, a.Message)
		}
	}
	sb.WriteString("\n")

	if v.Success {
		sb.WriteString("Overall Result: SUCCESS\n\n")
	} else {
		sb.WriteString("Overall Result: FAILURE\n\n")
	}

	// Critical failures, always present.
	sb.WriteString("Critical Failures\n" + rule40 + "\n")
	if len(v.CriticalFailures) == 0 {
		sb.WriteString("none\n")
	}
	for _, ref := range v.CriticalFailures {
		fmt.Fprintf(&sb, "✗ %s %s\n", ref, ref.Name)
	}
	sb.WriteString("\n")

	// Per-case detail.
	sb.WriteString("Detailed Results\n" + rule40 + "\n")
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s (%s) %s: %d/%d passed", r.PhaseID, r.Name, r.Policy, r.Passed, r.Total)
		if r.CriticalTotal > 0 {
			fmt.Fprintf(&sb, ", critical %d/%d", r.CriticalPassed, r.CriticalTotal)
		}
		sb.WriteString("\n")
		for _, tr := range r.Results {
			if tr.Passed {
				fmt.Fprintf(&sb, "  ✓ %s %s\n", tr.CaseID, tr.Name)
			} else {
				fmt.Fprintf(&sb, "  ✗ %s %s: %s\n", tr.CaseID, tr.Name, tr.Reason)
			}
		}
	}

	return sb.String()
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
