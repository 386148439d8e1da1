package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Fixtures shared with the harness package.
var (
	harnessTestdata   = filepath.Join("..", "harness", "testdata")
	scenariosDir      = filepath.Join(harnessTestdata, "scenarios")
	goldenDir         = filepath.Join(harnessTestdata, "golden")
	shieldedCatalog   = filepath.Join(harnessTestdata, "catalog", "shielded")
	auditScenario     = filepath.Join(scenariosDir, "partial-funding-audit.yaml")
	deflectScenario   = filepath.Join(scenariosDir, "shield-deflection.yaml")
	failingScenario   = filepath.Join(harnessTestdata, "invalid", "failing.yaml")
	malformedScenario = filepath.Join(harnessTestdata, "invalid", "typo.yaml")
)

type execResult struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with args and captures both streams.
func execute(t *testing.T, args ...string) execResult {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return execResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

// decodeEnvelope parses a JSON response and decodes its data into dst.
func decodeEnvelope(t *testing.T, raw string, dst any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env), raw)
	if dst != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}
