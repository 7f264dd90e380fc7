package collect

import (
	"errors"
	"fmt"
	"io"

	"github.com/roach88/policycheck/internal/harness"
	"github.com/roach88/policycheck/internal/registry"
)

// Entry is one collected response.
type Entry struct {
	PhaseID  string
	CaseID   string
	Prompt   string
	Response string
}

// Source produces entries one at a time. Next returns io.EOF when there are no
// more entries.
type Source interface {
	Next() (Entry, error)
}

// StaticSource replays canned responses in registry order.
type StaticSource struct {
	entries []Entry
	idx     int
}

// NewStaticSource yields an entry for every case in phases that has a response.
// Responses for unknown cases are not yielded; see harness.Unmatched.
func NewStaticSource(phases []registry.Phase, responses harness.Responses) *StaticSource {
	s := &StaticSource{}
	for _, phase := range phases {
		for _, tc := range phase.Cases {
			text, ok := responses.Lookup(phase.ID, tc.ID)
			if !ok {
				continue
			}
			s.entries = append(s.entries, Entry{
				PhaseID:  phase.ID,
				CaseID:   tc.ID,
				Prompt:   tc.Prompt,
				Response: text,
			})
		}
	}
	return s
}

// Next implements Source.
func (s *StaticSource) Next() (Entry, error) {
	if s.idx >= len(s.entries) {
		return Entry{}, io.EOF
	}
	e := s.entries[s.idx]
	s.idx++
	return e, nil
}

// Drain reads src to completion and collects the responses. A later entry for
// the same case replaces an earlier one.
func Drain(src Source) (harness.Responses, error) {
	responses := harness.Responses{}
	for {
		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			return responses, nil
		}
		if err != nil {
			return nil, fmt.Errorf("collect responses: %w", err)
		}
		responses.Set(e.PhaseID, e.CaseID, e.Response)
	}
}
