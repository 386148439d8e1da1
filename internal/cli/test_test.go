package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandMatchesGoldens(t *testing.T) {
	res := execute(t, "test", scenariosDir, "--golden", goldenDir)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "✓ partial-funding-audit")
	assert.Contains(t, res.stdout, "✓ shield-deflection")
	assert.Contains(t, res.stdout, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, res.stdout, "All scenarios passed")
}

func TestTestCommandJSON(t *testing.T) {
	res := execute(t, "test", scenariosDir, "--golden", goldenDir, "--format", "json")
	require.NoError(t, res.err)

	var out TestResult
	env := decodeEnvelope(t, res.stdout, &out)
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 2, out.Passed)
	for _, sr := range out.Scenarios {
		assert.Equal(t, goldenMatch, sr.Golden, sr.Name)
	}
}

func TestTestCommandFilter(t *testing.T) {
	res := execute(t, "test", scenariosDir, "--golden", goldenDir, "--filter", "shield-*", "--format", "json")
	require.NoError(t, res.err)

	var out TestResult
	decodeEnvelope(t, res.stdout, &out)
	require.Len(t, out.Scenarios, 1)
	assert.Equal(t, "shield-deflection", out.Scenarios[0].Name)
}

func TestTestCommandBadFilter(t *testing.T) {
	res := execute(t, "test", scenariosDir, "--filter", "[")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
}

func TestTestCommandUpdateThenMatch(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(auditScenario)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audit.yaml"), data, 0o644))

	res := execute(t, "test", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "✓ partial-funding-audit")

	res = execute(t, "test", dir, "--update")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "golden updated")

	written, err := os.ReadFile(filepath.Join(dir, "golden", "audit.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(goldenDir, "partial-funding-audit.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	res = execute(t, "test", dir, "--format", "json")
	require.NoError(t, res.err)
	var out TestResult
	decodeEnvelope(t, res.stdout, &out)
	require.Len(t, out.Scenarios, 1)
	assert.Equal(t, goldenMatch, out.Scenarios[0].Golden)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(auditScenario)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audit.yaml"), data, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "audit.golden"), []byte(`{"trace":[]}`), 0o644))

	res := execute(t, "test", dir)
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "does not match golden file")
	assert.Contains(t, res.stdout, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandFailures(t *testing.T) {
	dir := t.TempDir()
	for _, src := range []string{failingScenario, malformedScenario} {
		data, err := os.ReadFile(src)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.Base(src)), data, 0o644))
	}

	res := execute(t, "test", dir, "--format", "json")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))

	var out TestResult
	env := decodeEnvelope(t, res.stdout, &out)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, 2, out.Failed)
	assert.Equal(t, "failing", out.Scenarios[0].Name)
	assert.Equal(t, "typo", out.Scenarios[1].Name)
	assert.Contains(t, out.Scenarios[1].Errors[0], "load:")
}

func TestTestCommandMissingDir(t *testing.T) {
	res := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "scenarios directory not found")
}

func TestTestCommandMissingArgs(t *testing.T) {
	res := execute(t, "test")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "accepts 1 arg")
}
