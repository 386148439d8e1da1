package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "hwhard", cmd.Use)
	assert.Contains(t, cmd.Long, "HWH_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"simulate"},
		{"run"},
		{"test"},
		{"replay"},
		{"blame"},
		{"catalog", "validate"},
		{"catalog", "list"},
		{"saves", "list"},
		{"saves", "create"},
		{"saves", "show"},
		{"batches", "list"},
		{"batches", "show"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
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

	catalogFlag := cmd.PersistentFlags().Lookup("catalog")
	require.NotNil(t, catalogFlag)
	assert.Equal(t, "", catalogFlag.DefValue)
}

func TestSimulateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	simCmd, _, err := cmd.Find([]string{"simulate"})
	require.NoError(t, err)

	games := simCmd.Flags().Lookup("games")
	require.NotNil(t, games)
	assert.Equal(t, "n", games.Shorthand)
	assert.Equal(t, "100", games.DefValue)

	strategy := simCmd.Flags().Lookup("strategy")
	require.NotNil(t, strategy)
	assert.Equal(t, "random", strategy.DefValue)

	for _, name := range []string{"seed", "workers", "max-iterations", "ship-when-safe", "db"} {
		assert.NotNil(t, simCmd.Flags().Lookup(name), name)
	}
}

func TestSavesRequiresDB(t *testing.T) {
	res := execute(t, "saves", "list")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `"db" not set`)
}

func TestInvalidFormat(t *testing.T) {
	res := execute(t, "catalog", "validate", "--format", "xml")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `invalid format "xml"`)
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
