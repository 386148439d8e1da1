package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/store"
)

func TestSavesRoundTrip(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hwhard.db")

	res := execute(t, "saves", "list", "--db", db)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No saves.")

	res = execute(t, "saves", "create", auditScenario, "--db", db, "--label", "audit", "--format", "json")
	require.NoError(t, res.err)
	var created SaveCreated
	decodeEnvelope(t, res.stdout, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "audit", created.Label)
	assert.Len(t, created.Digest, 64)

	res = execute(t, "saves", "list", "--db", db, "--format", "json")
	require.NoError(t, res.err)
	var saves []store.SaveInfo
	decodeEnvelope(t, res.stdout, &saves)
	require.Len(t, saves, 1)
	assert.Equal(t, created.ID, saves[0].ID)
	assert.Equal(t, state.PhaseSimulation, saves[0].Phase)
	assert.Equal(t, 2, saves[0].Month)
	assert.Equal(t, "omni-juice", saves[0].DeviceID)

	res = execute(t, "saves", "show", created.ID, "--db", db, "--format", "json")
	require.NoError(t, res.err)
	var restored SaveRestored
	decodeEnvelope(t, res.stdout, &restored)
	assert.Equal(t, created.Digest, restored.Digest)
	assert.Equal(t, 144750.0, restored.Snapshot.Budget)
	require.Len(t, restored.Snapshot.History, 1)
	assert.Equal(t, "minimal", restored.Snapshot.History[0].ChoiceID)

	res = execute(t, "saves", "show", created.ID, "--db", db)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "phase=simulation month=2 device=omni-juice funding=partial")
	assert.Contains(t, res.stdout, "digest "+created.Digest)
}

func TestSavesCreateDefaultsLabel(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hwhard.db")

	res := execute(t, "saves", "create", deflectScenario, "--db", db)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "(shield-deflection)")

	res = execute(t, "saves", "list", "--db", db)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "shield-deflection")
	assert.Contains(t, res.stdout, "shielded-hub")
}

func TestSavesShowUnknown(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hwhard.db")
	res := execute(t, "saves", "show", "missing", "--db", db)
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error ["+ErrCodeStore+"]: load save")
}

func TestSavesCreateBadScenario(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hwhard.db")
	res := execute(t, "saves", "create", malformedScenario, "--db", db)
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error ["+ErrCodeScenario+"]")
}
