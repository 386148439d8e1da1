package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSuite_AllPass(t *testing.T) {
	res, err := RunSuite(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Passed)
	assert.Zero(t, res.Failed)
	assert.Empty(t, res.Failures)
}

func TestRunSuite_CollectsFailures(t *testing.T) {
	res, err := RunSuite(filepath.Join("testdata", "invalid"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 0, res.Passed)
	require.Len(t, res.Failures, 2)

	// Sorted by path: failing.yaml before typo.yaml.
	assert.Equal(t, "failing", res.Failures[0].Scenario)
	assert.Contains(t, res.Failures[0].Errors[0], "budget = ")
	assert.Empty(t, res.Failures[1].Scenario)
	assert.Contains(t, res.Failures[1].Errors[0], "asserts")
}

func TestFindScenarios(t *testing.T) {
	paths, err := FindScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "scenarios", "partial-funding-audit.yaml"),
		filepath.Join("testdata", "scenarios", "shield-deflection.yaml"),
	}, paths)

	single, err := FindScenarios(paths[0])
	require.NoError(t, err)
	assert.Equal(t, paths[:1], single)

	_, err = FindScenarios(filepath.Join("testdata", "missing"))
	assert.Error(t, err)
}
