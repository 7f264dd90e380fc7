package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a canned set of responses together with the verdict a suite
// table is expected to produce for them. Scenarios pin the behavior of the
// rules themselves: a table edit that changes how known answers score shows
// up as a failing scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Responses maps phase id -> case id -> response text.
	Responses Responses `yaml:"responses"`

	// Thresholds optionally overrides require-fraction thresholds by phase id.
	Thresholds map[string]float64 `yaml:"thresholds,omitempty"`

	// Expect is the verdict the scenario must produce.
	Expect Expectation `yaml:"expect"`
}

// Expectation describes the expected verdict. Only fields that are set are
// checked.
type Expectation struct {
	// Success is the expected overall verdict (required).
	Success *bool `yaml:"success"`

	// CriticalFailures lists "phase/case" refs that must fail, exactly.
	// Nil means not checked; an empty list means no critical case may fail.
	CriticalFailures []string `yaml:"critical_failures,omitempty"`

	// Passed maps phase id -> expected number of passing cases.
	Passed map[string]int `yaml:"passed,omitempty"`

	// Anomalies lists expected anomaly kinds, in order.
	Anomalies []AnomalyKind `yaml:"anomalies,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos do not silently disable checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Expect.Success == nil {
		return fmt.Errorf("expect.success is required")
	}
	if s.Responses == nil {
		s.Responses = Responses{}
	}

	for i, ref := range s.Expect.CriticalFailures {
		if _, _, ok := splitRef(ref); !ok {
			return fmt.Errorf("expect.critical_failures[%d]: %q is not of the form phase/case", i, ref)
		}
	}
	for phase, n := range s.Expect.Passed {
		if n < 0 {
			return fmt.Errorf("expect.passed[%s]: must be non-negative", phase)
		}
	}
	for i, kind := range s.Expect.Anomalies {
		switch kind {
		case AnomalyNoCriticalPhase, AnomalyEmptyCriticalPhase, AnomalyEmptyPhase:
		default:
			return fmt.Errorf("expect.anomalies[%d]: unknown anomaly kind %q", i, kind)
		}
	}
	return nil
}

// splitRef splits "phase/case".
func splitRef(ref string) (phase, id string, ok bool) {
	phase, id, ok = strings.Cut(ref, "/")
	return phase, id, ok && phase != "" && id != ""
}

// String renders a ref as "phase/case".
func (r CaseRef) String() string {
	return r.PhaseID + "/" + r.CaseID
}
