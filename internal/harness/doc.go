// Package harness scores collected responses against a compiled registry and
// decides the overall verdict.
//
// Scoring is a pure computation: RunPhase evaluates every case of a phase
// against the supplied responses, and Aggregate folds the phase results into
// a Verdict. Nothing here performs I/O or keeps state between runs.
//
// # Missing responses
//
// A case with no response is scored as failed. It is never skipped, so a
// phase cannot pass by omission.
//
// # Verdict
//
// The verdict succeeds iff
//
//  1. every case of the require-all-critical phase passed, and
//  2. every require-fraction phase independently reached its own threshold.
//
// Thresholds are never pooled. The pooled pass fraction across the
// require-fraction phases is computed for reporting only.
//
// Conditions that look like registry bugs (no critical phase, a critical
// phase with no cases, an empty require-fraction phase) are reported as
// Anomalies. Empty require-fraction phases are excluded from the verdict
// rather than counted as passing.
//
// # Usage
//
//	reg, err := registry.Default()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results := harness.RunAll(reg.Phases(), responses)
//	verdict := harness.Aggregate(results)
package harness
