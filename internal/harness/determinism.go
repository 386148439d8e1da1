package harness

import (
	"fmt"
)

// DeterminismError reports the first step where two runs diverged.
type DeterminismError struct {
	Scenario string
	Step     int // index into the trace, prelude included
	Command  string
	First    string
	Second   string
}

// Error implements the error interface.
func (e *DeterminismError) Error() string {
	return fmt.Sprintf("scenario %q diverged at trace[%d] (%s): digest %s vs %s",
		e.Scenario, e.Step, e.Command, e.First, e.Second)
}

// VerifyDeterminism runs the scenario twice and compares the snapshot
// digest after every command. It returns a *DeterminismError on the first
// mismatch.
func VerifyDeterminism(scenario *Scenario, opts ...Option) error {
	h := New(opts...)
	first, err := h.Run(scenario)
	if err != nil {
		return err
	}
	second, err := h.Run(scenario)
	if err != nil {
		return err
	}

	if len(first.Trace) != len(second.Trace) {
		return fmt.Errorf("scenario %q: trace lengths differ: %d vs %d",
			scenario.Name, len(first.Trace), len(second.Trace))
	}
	for i := range first.Trace {
		a, b := first.Trace[i], second.Trace[i]
		if a.Digest != b.Digest {
			return &DeterminismError{
				Scenario: scenario.Name,
				Step:     i,
				Command:  a.Command,
				First:    a.Digest,
				Second:   b.Digest,
			}
		}
	}
	return nil
}
