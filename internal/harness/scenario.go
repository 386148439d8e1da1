package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/engine"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// Scenario is a scripted session with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed feeds the engine's seeded random provider.
	Seed int64 `yaml:"seed"`

	// Device, when set, opens the session with that device selected.
	Device string `yaml:"device,omitempty"`

	// Catalog is a directory with devices.yaml and events.yaml, relative to
	// the scenario file. Empty means the embedded default catalog.
	Catalog string `yaml:"catalog,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one command with optional expectations on the resulting snapshot.
type Step struct {
	// Command is a command kind such as "ADVANCE_TIME".
	Command string `yaml:"command"`

	// Args are the command's JSON-named arguments.
	Args map[string]any `yaml:"args,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks the snapshot after a step. Unset fields are not checked.
type Expect struct {
	// Diagnostic is the code the step must produce, e.g. PRECONDITION_FAILED.
	Diagnostic string `yaml:"diagnostic,omitempty"`

	Phase      state.Phase `yaml:"phase,omitempty"`
	Month      *int        `yaml:"month,omitempty"`
	Budget     *float64    `yaml:"budget,omitempty"`
	Doom       *float64    `yaml:"doom,omitempty"`
	Compliance *float64    `yaml:"compliance,omitempty"`

	// Crisis is the open crisis id; an empty string asserts none is open.
	Crisis *string `yaml:"crisis,omitempty"`
}

// Assertion validates the finished session.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": snapshot field at Field equals Value
	// - "phase_reached": Phase appeared after some step
	// - "history_count": exactly Count resolved crises
	// - "has_tag" / "lacks_tag": Tag is (not) active at the end
	Type string `yaml:"type"`

	// Field is a dotted path into the snapshot JSON, e.g. "selectedDevice.id".
	Field string `yaml:"field,omitempty"`
	Value any    `yaml:"value,omitempty"`

	Phase state.Phase `yaml:"phase,omitempty"`
	Count *int        `yaml:"count,omitempty"`
	Tag   string      `yaml:"tag,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState   = "final_state"
	AssertPhaseReached = "phase_reached"
	AssertHistoryCount = "history_count"
	AssertHasTag       = "has_tag"
	AssertLacksTag     = "lacks_tag"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative catalog path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Catalog != "" && !filepath.IsAbs(s.Catalog) {
		s.Catalog = filepath.Join(filepath.Dir(path), s.Catalog)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Command == "" {
			return fmt.Errorf("steps[%d]: command is required", i)
		}
		if _, err := engine.ParseCommand(step.Command, step.Args); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.Expect != nil && step.Expect.Phase != "" && !step.Expect.Phase.Valid() {
			return fmt.Errorf("steps[%d].expect: unknown phase %q", i, step.Expect.Phase)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for final_state", index)
		}
	case AssertPhaseReached:
		if !a.Phase.Valid() {
			return fmt.Errorf("assertions[%d]: phase_reached needs a known phase, got %q", index, a.Phase)
		}
	case AssertHistoryCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history_count", index)
		}
	case AssertHasTag, AssertLacksTag:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
