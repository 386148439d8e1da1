package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogValidateEmbedded(t *testing.T) {
	res := execute(t, "catalog", "validate")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "✓ embedded: 5 devices")
}

func TestCatalogValidateDir(t *testing.T) {
	res := execute(t, "catalog", "validate", shieldedCatalog, "--format", "json")
	require.NoError(t, res.err)

	var out CatalogValidation
	env := decodeEnvelope(t, res.stdout, &out)
	assert.Equal(t, "ok", env.Status)
	assert.True(t, out.Valid)
	assert.Equal(t, 1, out.Report.Devices)
	assert.Equal(t, 2, out.Report.Events)
}

func TestCatalogValidateUsesCatalogFlag(t *testing.T) {
	res := execute(t, "catalog", "validate", "--catalog", shieldedCatalog)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, shieldedCatalog+": 1 devices, 2 events")
}

func writeCatalog(t *testing.T, devices, events string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "devices.yaml"), []byte(devices), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.yaml"), []byte(events), 0o644))
	return dir
}

func TestCatalogValidateDroppedEntries(t *testing.T) {
	dir := writeCatalog(t, `devices:
  - id: hub
    name: Hub
    archetype: infrastructure
    difficulty: normal
    initialTags: []
    initialBudget: 1000
  - id: hub
    name: Hub Again
    archetype: infrastructure
    difficulty: normal
    initialTags: []
    initialBudget: 2000
`, `events:
  - id: glitch
    title: Glitch
    triggerCondition: "month >"
    choices:
      - {id: ignore, cost: 0, doomImpact: 1, risk: low}
`)

	res := execute(t, "catalog", "validate", dir)
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "✗")
	assert.Contains(t, res.stdout, "dropped device[1] hub: duplicate id")
	assert.Contains(t, res.stdout, "warning event glitch")

	res = execute(t, "catalog", "validate", dir, "--format", "json")
	require.Error(t, res.err)
	var out CatalogValidation
	env := decodeEnvelope(t, res.stdout, &out)
	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeCatalog, env.Error.Code)
	assert.False(t, out.Valid)
	require.Len(t, out.Report.Dropped, 1)
	require.Len(t, out.Report.Warnings, 1)
}

func TestCatalogValidateMissingDir(t *testing.T) {
	res := execute(t, "catalog", "validate", "/nonexistent/catalog")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error ["+ErrCodeCatalog+"]")
}

func TestCatalogList(t *testing.T) {
	res := execute(t, "catalog", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "omni-juice")
	assert.Contains(t, res.stdout, "regulatory-audit")

	res = execute(t, "catalog", "list", "--catalog", shieldedCatalog, "--format", "json")
	require.NoError(t, res.err)
	var out CatalogListing
	decodeEnvelope(t, res.stdout, &out)
	require.Len(t, out.Devices, 1)
	assert.Equal(t, "shielded-hub", out.Devices[0].ID)
	require.Len(t, out.Events, 2)
	assert.Equal(t, "month > 100", out.Events[1].TriggerCondition)
}
