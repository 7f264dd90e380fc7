package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/policycheck/internal/collect"
)

const transcriptName = "transcript-20261018T120000Z-run-0001.yaml"

func TestCollectCommand_ScoresAndRecords(t *testing.T) {
	dir := t.TempDir()
	responses := scenarioResponses(t, "reference_answers")

	r := execute(t, pasteAll(t, responses), "collect", "--transcript-dir", dir)
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "[phase1/msg-protocol] (1 of 29)")
	assert.Contains(t, r.stdout, "Overall Result: SUCCESS")
	assert.Contains(t, r.stdout, "Run: run-0001")

	tr, err := collect.LoadTranscript(filepath.Join(dir, transcriptName))
	require.NoError(t, err)
	assert.Equal(t, "run-0001", tr.RunID)
	assert.Equal(t, "nrepl-skill", tr.Suite)
	assert.Len(t, tr.Entries, 29)
	assert.Equal(t, responses, tr.Responses())
}

func TestCollectCommand_SkippedCasesFail(t *testing.T) {
	dir := t.TempDir()

	r := execute(t, pasteAll(t, scenarioResponses(t, "only_safety_answered")), "collect", "--transcript-dir", dir)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "(skipped)")

	tr, err := collect.LoadTranscript(filepath.Join(dir, transcriptName))
	require.NoError(t, err)
	assert.Len(t, tr.Entries, 7)
}

func TestCollectCommand_EmptyInput(t *testing.T) {
	dir := t.TempDir()

	r := execute(t, "", "collect", "--transcript-dir", dir)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))

	_, err := os.Stat(filepath.Join(dir, transcriptName))
	assert.NoError(t, err, "transcript is saved even when nothing was collected")
}

func TestCollectCommand_JSONKeepsPromptsOffStdout(t *testing.T) {
	dir := t.TempDir()

	r := execute(t, pasteAll(t, scenarioResponses(t, "reference_answers")),
		"--format", "json", "collect", "--transcript-dir", dir)
	require.NoError(t, r.err)
	assert.NotContains(t, r.stdout, "[phase1/msg-protocol]")
	assert.Contains(t, r.stderr, "[phase1/msg-protocol]")
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	r := execute(t, pasteAll(t, scenarioResponses(t, "foreign_shutdown")), "collect", "--transcript-dir", dir)
	require.Equal(t, ExitFailure, GetExitCode(r.err))

	path := filepath.Join(dir, transcriptName)
	replayed := execute(t, "", "replay", path)
	assert.Equal(t, ExitFailure, GetExitCode(replayed.err))
	assert.Contains(t, replayed.stdout, "Run: run-0001")
	assert.Contains(t, replayed.stdout, "✗ phase2/foreign-repl-refusal")
	assert.Contains(t, replayed.stderr, "transcript loaded")
}

func TestReplayCommand_ForeignSuiteWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`run_id: old-run
suite: nrepl-skill
version: 0.9.0
entries: []
`), 0o644))

	r := execute(t, "", "replay", path)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stderr, "transcript recorded against a different suite")
	assert.Contains(t, r.stdout, "Run: old-run")
}

func TestReplayCommand_MissingTranscript(t *testing.T) {
	r := execute(t, "", "replay", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "transcript not found")
}
