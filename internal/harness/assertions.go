package harness

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s -> %s month=%d doom=%v\n", ev.Seq, ev.Command, ev.Phase, ev.Month, ev.Doom)
		}
	}

	return buf.String()
}

// assertFinalState compares the snapshot field at a dotted JSON path.
func assertFinalState(snap state.Snapshot, a Assertion) error {
	actual, err := lookupField(snap, a.Field)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("field %q to exist", a.Field),
			Actual:   err.Error(),
		}
	}
	if !valuesEqual(a.Value, actual) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("field %q = %v (type %T)", a.Field, a.Value, a.Value),
			Actual:   fmt.Sprintf("field %q = %v (type %T)", a.Field, actual, actual),
		}
	}
	return nil
}

// lookupField walks the snapshot's JSON form. Numeric path segments index
// arrays.
func lookupField(snap state.Snapshot, path string) (any, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	var cur any
	if err := json.Unmarshal(data, &cur); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("no field %q in %q", part, path)
			}
			cur = next
		case []any:
			var idx int
			if _, err := fmt.Sscanf(part, "%d", &idx); err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("bad index %q in %q (len %d)", part, path, len(node))
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("cannot descend into %T at %q", cur, part)
		}
	}
	return cur, nil
}

func assertPhaseReached(trace []TraceEvent, a Assertion) error {
	reached := reachedPhases(trace)
	for _, p := range reached {
		if p == a.Phase {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertPhaseReached,
		Expected: fmt.Sprintf("phase %s during the session", a.Phase),
		Actual:   fmt.Sprintf("phases reached: %v", reached),
		Trace:    trace,
	}
}

func assertHistoryCount(snap state.Snapshot, a Assertion) error {
	if len(snap.History) != *a.Count {
		return &AssertionError{
			Type:     AssertHistoryCount,
			Expected: fmt.Sprintf("%d resolved crises", *a.Count),
			Actual:   fmt.Sprintf("%d resolved crises", len(snap.History)),
		}
	}
	return nil
}

func assertTag(snap state.Snapshot, a Assertion) error {
	want := a.Type == AssertHasTag
	if snap.ActiveTags.Has(a.Tag) == want {
		return nil
	}
	expected := "tag %q active"
	if !want {
		expected = "tag %q absent"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf(expected, a.Tag),
		Actual:   fmt.Sprintf("active tags: %v", snap.ActiveTags.Slice()),
	}
}

// valuesEqual compares a YAML-decoded expectation with a JSON-decoded
// actual value. Numbers compare by value regardless of int or float.
func valuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if ef, ok := toFloat(expected); ok {
		af, ok := toFloat(actual)
		return ok && math.Abs(ef-af) <= floatTolerance
	}

	switch exp := expected.(type) {
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !valuesEqual(exp[i], act[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		// Subset semantics - only specified keys are validated.
		for k, v := range exp {
			if !valuesEqual(v, act[k]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(expected, actual)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalState:
			err = assertFinalState(result.Final, assertion)
		case AssertPhaseReached:
			err = assertPhaseReached(result.Trace, assertion)
		case AssertHistoryCount:
			if assertion.Count == nil {
				err = fmt.Errorf("assertion[%d]: history_count requires count", i)
			} else {
				err = assertHistoryCount(result.Final, assertion)
			}
		case AssertHasTag, AssertLacksTag:
			err = assertTag(result.Final, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
