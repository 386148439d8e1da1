package harness

import (
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// TraceEvent records one dispatched command and the snapshot it left.
type TraceEvent struct {
	Seq         int64          `json:"seq"`
	Command     string         `json:"command"`
	Args        map[string]any `json:"args,omitempty"`
	Effects     []string       `json:"effects"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	Phase       state.Phase    `json:"phase"`
	Month       int            `json:"month"`
	Budget      float64        `json:"budget"`
	Doom        float64        `json:"doom"`
	Compliance  float64        `json:"compliance"`
	Tags        []string       `json:"tags"`
	Crisis      string         `json:"crisis,omitempty"`

	// Digest is the canonical snapshot digest after the command.
	Digest string `json:"-"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every dispatched command in order, prelude included.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the snapshot after the last step.
	Final state.Snapshot `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
