package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/store"
)

func TestSimulateCommandText(t *testing.T) {
	res := execute(t, "simulate", "--games", "10", "--seed", "3")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Balance report")
	assert.Contains(t, res.stdout, "10 games, seed 3, strategy random")
	assert.Contains(t, res.stdout, "omni-juice")
	assert.Contains(t, res.stdout, "Game length")
}

func TestSimulateCommandJSONIsDeterministic(t *testing.T) {
	first := execute(t, "simulate", "-n", "10", "--seed", "9", "--workers", "1", "--strategy", "lowest-doom", "--format", "json")
	require.NoError(t, first.err)
	second := execute(t, "simulate", "-n", "10", "--seed", "9", "--workers", "4", "--strategy", "lowest-doom", "--format", "json")
	require.NoError(t, second.err)
	assert.Equal(t, first.stdout, second.stdout)

	var out SimulateResult
	env := decodeEnvelope(t, first.stdout, &out)
	assert.Equal(t, "ok", env.Status)
	assert.Empty(t, out.BatchID)
	require.NotNil(t, out.Report)
	assert.Len(t, out.Report.Games, 10)
	assert.Equal(t, int64(9), out.Report.Options.BaseSeed)
	assert.GreaterOrEqual(t, out.Report.Balance.Score, 0)
	assert.LessOrEqual(t, out.Report.Balance.Score, 100)
}

func TestSimulateCommandCustomCatalog(t *testing.T) {
	res := execute(t, "simulate", "-n", "2", "--catalog", shieldedCatalog, "--format", "json")
	require.NoError(t, res.err)

	var out SimulateResult
	decodeEnvelope(t, res.stdout, &out)
	require.Len(t, out.Report.Devices, 1)
	assert.Equal(t, "shielded-hub", out.Report.Devices[0].DeviceID)
}

func TestSimulateCommandInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown strategy", []string{"simulate", "--strategy", "yolo"}},
		{"no games", []string{"simulate", "--games", "0"}},
		{"negative workers", []string{"simulate", "--workers", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, ExitCommandError, GetExitCode(res.err))
			assert.Contains(t, res.stdout, "Error ["+ErrCodeGeneric+"]: invalid simulation flags")
		})
	}
}

func TestSimulateCommandBadEnv(t *testing.T) {
	t.Setenv("HWH_TOTAL_MONTHS", "0")
	res := execute(t, "simulate", "-n", "1")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error ["+ErrCodeConfig+"]")
}

func TestSimulateStoresBatch(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hwhard.db")

	res := execute(t, "simulate", "-n", "10", "--seed", "5", "--db", db, "--format", "json")
	require.NoError(t, res.err)
	var sim SimulateResult
	decodeEnvelope(t, res.stdout, &sim)
	require.NotEmpty(t, sim.BatchID)

	res = execute(t, "batches", "list", "--db", db, "--format", "json")
	require.NoError(t, res.err)
	var batches []store.BatchInfo
	decodeEnvelope(t, res.stdout, &batches)
	require.Len(t, batches, 1)
	assert.Equal(t, sim.BatchID, batches[0].ID)
	assert.Equal(t, int64(5), batches[0].BaseSeed)
	assert.Equal(t, sim.Report.Balance.Score, batches[0].Score)

	res = execute(t, "batches", "show", sim.BatchID, "--db", db, "--device", "omni-juice", "--format", "json")
	require.NoError(t, res.err)
	var detail BatchDetail
	decodeEnvelope(t, res.stdout, &detail)
	assert.Equal(t, sim.BatchID, detail.ID)
	assert.Len(t, detail.Report.Games, 10)
	require.NotNil(t, detail.Device)
	assert.Equal(t, 2, detail.Device.Games)

	res = execute(t, "batches", "show", sim.BatchID, "--db", db)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Balance report")
	assert.Contains(t, res.stdout, "games won")
}

func TestBatchesEmptyAndMissing(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hwhard.db")

	res := execute(t, "batches", "list", "--db", db)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No batches.")

	res = execute(t, "batches", "show", "nope", "--db", db)
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error ["+ErrCodeStore+"]: read batch")
}

func TestBar(t *testing.T) {
	assert.Equal(t, 0, bar(0, 0))
	assert.Equal(t, 40, bar(10, 10))
	assert.Equal(t, 20, bar(5, 10))
	assert.Equal(t, "33.3%", percent(1.0/3))
}
