package collect

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/policycheck/internal/registry"
)

// EndOfPaste terminates a pasted response when it appears alone on a line.
const EndOfPaste = "."

// PromptSource asks an operator for each case in turn. The prompt is written
// to out and the pasted response read from in until a line holding only
// EndOfPaste. An empty paste skips the case, which is then scored as missing.
type PromptSource struct {
	in    *bufio.Scanner
	out   io.Writer
	cases []Entry
	idx   int
	done  bool
}

// NewPromptSource prompts for every case of phases in registry order.
func NewPromptSource(phases []registry.Phase, in io.Reader, out io.Writer) *PromptSource {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	p := &PromptSource{in: scanner, out: out}
	for _, phase := range phases {
		for _, tc := range phase.Cases {
			p.cases = append(p.cases, Entry{PhaseID: phase.ID, CaseID: tc.ID, Prompt: tc.Prompt})
		}
	}
	return p
}

// Next implements Source.
func (p *PromptSource) Next() (Entry, error) {
	for !p.done && p.idx < len(p.cases) {
		e := p.cases[p.idx]
		p.idx++

		fmt.Fprintf(p.out, "\n[%s/%s] (%d of %d)\n%s\n", e.PhaseID, e.CaseID, p.idx, len(p.cases), e.Prompt)
		fmt.Fprintf(p.out, "Paste the response, then a line containing only %q (empty to skip):\n", EndOfPaste)

		text, err := p.readPaste()
		if err != nil {
			return Entry{}, fmt.Errorf("read response for %s/%s: %w", e.PhaseID, e.CaseID, err)
		}
		if strings.TrimSpace(text) == "" {
			fmt.Fprintln(p.out, "(skipped)")
			continue
		}
		e.Response = text
		return e, nil
	}
	return Entry{}, io.EOF
}

// readPaste reads lines up to the terminator. End of input also ends the
// paste and stops further prompting.
func (p *PromptSource) readPaste() (string, error) {
	var lines []string
	for p.in.Scan() {
		line := strings.TrimRight(p.in.Text(), "\r")
		if line == EndOfPaste {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
	if err := p.in.Err(); err != nil {
		return "", err
	}
	p.done = true
	return strings.Join(lines, "\n"), nil
}
