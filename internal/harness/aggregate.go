package harness

import (
	"fmt"

	"github.com/roach88/policycheck/internal/registry"
)

// thresholdEpsilon absorbs float representation error in p*total.
const thresholdEpsilon = 1e-9

// MeetsThreshold reports whether passed/total >= p.
// An empty phase never meets a threshold.
func MeetsThreshold(passed, total int, p float64) bool {
	if total == 0 {
		return false
	}
	return float64(passed) >= p*float64(total)-thresholdEpsilon
}

// Aggregate folds phase results into the overall verdict.
func Aggregate(results []PhaseResult) Verdict {
	v := Verdict{
		Phases:           []PhaseVerdict{},
		CriticalFailures: []CaseRef{},
		Anomalies:        []Anomaly{},
	}

	criticalPhases := 0
	fractionsOK := true

	for _, pr := range results {
		for _, tr := range pr.Results {
			if tr.Critical && !tr.Passed {
				v.CriticalFailures = append(v.CriticalFailures, CaseRef{
					PhaseID: pr.PhaseID,
					CaseID:  tr.CaseID,
					Name:    tr.Name,
				})
			}
		}

		switch pr.Policy.Kind {
		case registry.RequireAllCritical:
			criticalPhases++
			if v.CriticalPhaseID == "" {
				v.CriticalPhaseID = pr.PhaseID
			}
			v.CriticalPassed += pr.CriticalPassed
			v.CriticalTotal += pr.CriticalTotal
			if pr.Total == 0 {
				v.Anomalies = append(v.Anomalies, Anomaly{
					Kind:    AnomalyEmptyCriticalPhase,
					PhaseID: pr.PhaseID,
					Message: "critical phase has no cases; critical check passes vacuously",
				})
			}

		default:
			pv := PhaseVerdict{
				PhaseID:   pr.PhaseID,
				Passed:    pr.Passed,
				Total:     pr.Total,
				Threshold: pr.Policy.Threshold(),
			}
			if pr.Total == 0 {
				pv.Excluded = true
				v.Anomalies = append(v.Anomalies, Anomaly{
					Kind:    AnomalyEmptyPhase,
					PhaseID: pr.PhaseID,
					Message: "phase has no cases; excluded from the verdict",
				})
			} else {
				pv.OK = MeetsThreshold(pr.Passed, pr.Total, pv.Threshold)
				fractionsOK = fractionsOK && pv.OK
				v.PooledPassed += pr.Passed
				v.PooledTotal += pr.Total
			}
			v.Phases = append(v.Phases, pv)
		}
	}

	if criticalPhases == 0 {
		v.Anomalies = append(v.Anomalies, Anomaly{
			Kind:    AnomalyNoCriticalPhase,
			Message: fmt.Sprintf("no %s phase; critical check passes vacuously", registry.PolicyRequireAllCritical),
		})
	}

	if v.PooledTotal > 0 {
		v.PooledFraction = float64(v.PooledPassed) / float64(v.PooledTotal)
	}

	v.CriticalOK = v.CriticalPassed == v.CriticalTotal && len(v.CriticalFailures) == 0
	v.Success = v.CriticalOK && fractionsOK
	return v
}
