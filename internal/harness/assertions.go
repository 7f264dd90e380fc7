package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ExpectationError is returned when a scenario expectation does not hold.
type ExpectationError struct {
	Field    string // which expectation failed
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	return fmt.Sprintf("expect.%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// CheckExpectation compares a verdict against an expectation and returns one
// error per mismatch, in a stable order.
func CheckExpectation(results []PhaseResult, v Verdict, want Expectation) []*ExpectationError {
	var errs []*ExpectationError

	if want.Success != nil && *want.Success != v.Success {
		errs = append(errs, &ExpectationError{
			Field:    "success",
			Expected: fmt.Sprint(*want.Success),
			Actual:   fmt.Sprint(v.Success),
		})
	}

	if want.CriticalFailures != nil {
		expected := sortedCopy(want.CriticalFailures)
		actual := make([]string, len(v.CriticalFailures))
		for i, ref := range v.CriticalFailures {
			actual[i] = ref.String()
		}
		sort.Strings(actual)
		if !slices.Equal(expected, actual) {
			errs = append(errs, &ExpectationError{
				Field:    "critical_failures",
				Expected: listString(expected),
				Actual:   listString(actual),
			})
		}
	}

	if len(want.Passed) > 0 {
		byID := make(map[string]PhaseResult, len(results))
		for _, r := range results {
			byID[r.PhaseID] = r
		}
		ids := make([]string, 0, len(want.Passed))
		for id := range want.Passed {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			r, ok := byID[id]
			if !ok {
				errs = append(errs, &ExpectationError{
					Field:    "passed." + id,
					Expected: fmt.Sprintf("%d passing", want.Passed[id]),
					Actual:   "no such phase",
				})
				continue
			}
			if r.Passed != want.Passed[id] {
				errs = append(errs, &ExpectationError{
					Field:    "passed." + id,
					Expected: fmt.Sprintf("%d/%d", want.Passed[id], r.Total),
					Actual:   fmt.Sprintf("%d/%d", r.Passed, r.Total),
				})
			}
		}
	}

	if want.Anomalies != nil {
		expected := make([]string, len(want.Anomalies))
		for i, k := range want.Anomalies {
			expected[i] = string(k)
		}
		actual := make([]string, len(v.Anomalies))
		for i, a := range v.Anomalies {
			actual[i] = string(a.Kind)
		}
		if !slices.Equal(expected, actual) {
			errs = append(errs, &ExpectationError{
				Field:    "anomalies",
				Expected: listString(expected),
				Actual:   listString(actual),
			})
		}
	}

	return errs
}

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

func listString(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	return "[" + strings.Join(items, ", ") + "]"
}
