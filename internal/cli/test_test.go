package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wrongExpectation = `name: wrong_expectation
description: "Claims success for a run with no responses"
expect:
  success: true
`

// copyScenarios copies the repository scenarios into a scratch directory.
func copyScenarios(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files, err := filepath.Glob(filepath.Join(scenariosDir, "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.Base(f)), data, 0o644))
	}
	return dir
}

func TestTestCommandMissingArgs(t *testing.T) {
	r := execute(t, "", "test")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	r := execute(t, "", "test", "/nonexistent/scenarios")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	r := execute(t, "", "test", t.TempDir())
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	r := execute(t, "", "--format", "json", "test", t.TempDir())
	require.NoError(t, r.err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
	assert.Empty(t, resp.Data.Scenarios)
}

func TestTestCommandRepositoryScenarios(t *testing.T) {
	r := execute(t, "", "test", scenariosDir)
	require.NoError(t, r.err, r.stdout)

	assert.Contains(t, r.stdout, "✓ reference_answers")
	assert.Contains(t, r.stdout, "✓ foreign_shutdown")
	assert.Contains(t, r.stdout, "Test Summary: 4 passed, 0 failed, 4 total")
	assert.Contains(t, r.stdout, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	r := execute(t, "", "test", scenariosDir, "--filter", "weak*")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(wrongExpectation), 0o644))

	r := execute(t, "", "test", dir)
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "✗ wrong_expectation")
	assert.Contains(t, r.stdout, "expect.success: expected true, got false")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(wrongExpectation), 0o644))

	r := execute(t, "", "--format", "json", "test", dir)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: x\nbogus: 1\n"), 0o644))

	r := execute(t, "", "test", dir)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "✗ broken.yaml")
	assert.Contains(t, r.stdout, "Load error")
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := copyScenarios(t)

	// Regenerate golden reports.
	r := execute(t, "", "test", dir, "--update")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "✓ reference_answers (golden updated)")

	golden := filepath.Join(dir, "golden", "reference_answers.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Overall Result: SUCCESS")
	assert.NotContains(t, string(data), "Run:", "golden reports carry no run id")

	// Golden files match on the next run.
	r = execute(t, "", "test", dir)
	require.NoError(t, r.err)

	// A drifted golden file fails the scenario.
	require.NoError(t, os.WriteFile(golden, []byte("stale\n"), 0o644))
	r = execute(t, "", "test", dir)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "Golden file mismatch")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "c.yaml"), []byte("x"), 0o644))

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, files)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	files, err := findScenarioFiles(scenariosDir, "reference*")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = findScenarioFiles(scenariosDir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "reference_answers.golden"),
		goldenFilePath(filepath.Join("scenarios", "reference_answers.yaml")))
}
