package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/canonical"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Seed         int64        `json:"seed"`
	Device       string       `json:"device,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// GoldenBytes renders the canonical JSON compared against golden files.
func GoldenBytes(scenario *Scenario, result *Result) ([]byte, error) {
	return canonical.Marshal(TraceSnapshot{
		ScenarioName: scenario.Name,
		Seed:         scenario.Seed,
		Device:       scenario.Device,
		Trace:        result.Trace,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}

	traceJSON, err := GoldenBytes(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
