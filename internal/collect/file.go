package collect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/policycheck/internal/harness"
)

// LoadFile reads a responses document of the form {phase: {case: response}}.
// JSON documents are accepted as well since JSON is valid YAML.
func LoadFile(path string) (harness.Responses, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses %s: %w", path, err)
	}
	responses, err := ParseResponses(data)
	if err != nil {
		return nil, fmt.Errorf("parse responses %s: %w", path, err)
	}
	return responses, nil
}

// ReadResponses decodes a responses document from r, typically stdin.
func ReadResponses(r io.Reader) (harness.Responses, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	responses, err := ParseResponses(data)
	if err != nil {
		return nil, fmt.Errorf("parse responses: %w", err)
	}
	return responses, nil
}

// ParseResponses decodes a responses document. A null leaf is read as the
// empty string. Other non-string leaves are rejected rather than coerced.
func ParseResponses(data []byte) (harness.Responses, error) {
	responses := harness.Responses{}

	var root yaml.Node
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root)
	if errors.Is(err, io.EOF) {
		return responses, nil
	}
	if err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return responses, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of phase ids", doc.Line)
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		phaseKey, cases := doc.Content[i], doc.Content[i+1]
		if cases.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: phase %q: expected a mapping of case ids", cases.Line, phaseKey.Value)
		}
		for j := 0; j+1 < len(cases.Content); j += 2 {
			caseKey, value := cases.Content[j], cases.Content[j+1]
			if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
				responses.Set(phaseKey.Value, caseKey.Value, "")
				continue
			}
			if value.Kind != yaml.ScalarNode || value.Tag != "!!str" {
				return nil, fmt.Errorf("line %d: %s/%s: response must be a string", value.Line, phaseKey.Value, caseKey.Value)
			}
			responses.Set(phaseKey.Value, caseKey.Value, value.Value)
		}
	}
	return responses, nil
}
