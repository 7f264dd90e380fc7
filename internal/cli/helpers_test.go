package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/policycheck/internal/harness"
	"github.com/roach88/policycheck/internal/registry"
	"github.com/roach88/policycheck/internal/testutil"
)

const scenariosDir = "../../testdata/scenarios"

var dashes = strings.Repeat("-", 40)

var fixedTime = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type run struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with a fixed clock and run id.
func execute(t *testing.T, stdin string, args ...string) run {
	t.Helper()
	opts := &RootOptions{
		Clock: testutil.NewFixedClock(fixedTime),
		IDs:   testutil.NewFixedIDGenerator("run-0001"),
	}
	cmd := newRootCommand(opts)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return run{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// scenarioResponses returns the canned responses of a repository scenario.
func scenarioResponses(t *testing.T, name string) harness.Responses {
	t.Helper()
	s, err := harness.LoadScenario(filepath.Join(scenariosDir, name+".yaml"))
	require.NoError(t, err)
	return s.Responses
}

// writeResponses writes responses as a JSON responses file.
func writeResponses(t *testing.T, responses harness.Responses) string {
	t.Helper()
	data, err := json.Marshal(responses)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "responses.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// pasteAll builds operator input answering every case in registry order.
// Cases without a response get an empty paste.
func pasteAll(t *testing.T, responses harness.Responses) string {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)

	var sb strings.Builder
	for _, p := range reg.Phases() {
		for _, tc := range p.Cases {
			if text, ok := responses.Lookup(p.ID, tc.ID); ok {
				sb.WriteString(text + "\n")
			}
			sb.WriteString(".\n")
		}
	}
	return sb.String()
}
