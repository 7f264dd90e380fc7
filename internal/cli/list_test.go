package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/policycheck/internal/registry"
)

func TestListCommand_Text(t *testing.T) {
	r := execute(t, "", "list")
	require.NoError(t, r.err)

	assert.Contains(t, r.stdout, "nrepl-skill 1.0.0 (29 cases)")
	assert.Contains(t, r.stdout, "require-all-critical")
	assert.Contains(t, r.stdout, "require-fraction(0.67)")
	assert.Contains(t, r.stdout, "! foreign-repl-refusal")
	assert.NotContains(t, r.stdout, "\n      ", "prompts are hidden by default")
}

func TestRenderListing_AlignsCaseNames(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	listing := []PhaseListing{{
		ID: "p", Name: "Phase", Policy: "require-fraction(0.50)",
		Cases: []CaseListing{
			{ID: "a", Name: "Short id", Prompt: "first prompt"},
			{ID: "foreign-repl-refusal", Name: "Long id", Critical: true},
		},
	}}
	out := renderListing(reg, listing)

	assert.Contains(t, out, "\n    a                    Short id\n")
	assert.Contains(t, out, "\n                         first prompt\n")
	assert.Contains(t, out, "\n  ! foreign-repl-refusal Long id\n")
}

func TestListCommand_SinglePhaseWithPrompts(t *testing.T) {
	r := execute(t, "", "list", "phase2", "--prompts")
	require.NoError(t, r.err)

	assert.Contains(t, r.stdout, "\nphase2 (")
	assert.NotContains(t, r.stdout, "\nphase1 (")
	assert.Contains(t, r.stdout, "\n      ")
}

func TestListCommand_UnknownPhase(t *testing.T) {
	r := execute(t, "", "list", "phase9")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.stdout, `unknown phase "phase9"`)
}

func TestListCommand_JSON(t *testing.T) {
	r := execute(t, "", "--format", "json", "list", "--prompts")
	require.NoError(t, r.err)

	var resp struct {
		Status string         `json:"status"`
		Data   []PhaseListing `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 6)

	total := 0
	for _, p := range resp.Data {
		total += len(p.Cases)
		for _, c := range p.Cases {
			assert.NotEmpty(t, c.Prompt, "%s/%s", p.ID, c.ID)
		}
	}
	assert.Equal(t, 29, total)
	assert.Equal(t, "require-all-critical", resp.Data[1].Policy)
}

func TestListCommand_TooManyArgs(t *testing.T) {
	r := execute(t, "", "list", "phase1", "phase2")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
}
