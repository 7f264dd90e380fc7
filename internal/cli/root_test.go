package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "policycheck", cmd.Use)
	assert.Contains(t, cmd.Long, "pass-rate threshold")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"list", "validate", "score", "collect", "replay", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestReportFlags(t *testing.T) {
	for _, name := range []string{"score", "collect", "replay"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := NewRootCommand().Find([]string{name})
			require.NoError(t, err)

			for _, flag := range []string{"threshold", "out-dir", "include-responses"} {
				assert.NotNil(t, cmd.Flags().Lookup(flag), "--%s on %s", flag, name)
			}
		})
	}
}

func TestCollectCommandFlags(t *testing.T) {
	cmd, _, err := NewRootCommand().Find([]string{"collect"})
	require.NoError(t, err)

	dirFlag := cmd.Flags().Lookup("transcript-dir")
	require.NotNil(t, dirFlag)
	assert.Equal(t, "transcripts", dirFlag.DefValue)
}

func TestValidateCommandFlags(t *testing.T) {
	cmd, _, err := NewRootCommand().Find([]string{"validate"})
	require.NoError(t, err)
	assert.NotNil(t, cmd.Flags().Lookup("threshold"))
}

func TestTestCommandFlags(t *testing.T) {
	cmd, _, err := NewRootCommand().Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := cmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	assert.NotNil(t, cmd.Flags().Lookup("filter"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	r := execute(t, "", "--format", "invalid", "list")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
}

func TestUnknownCommand(t *testing.T) {
	r := execute(t, "", "compile")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
}
