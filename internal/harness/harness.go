package harness

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/canonical"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/config"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/engine"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// floatTolerance absorbs rounding in expected budget, doom and compliance.
const floatTolerance = 1e-6

// Harness runs scenarios against a fresh engine each time.
type Harness struct {
	catalog catalog.Catalog
	cfg     config.Config
	logger  *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithCatalog overrides the catalog for scenarios that do not name one.
func WithCatalog(cat catalog.Catalog) Option {
	return func(h *Harness) { h.catalog = cat }
}

// WithConfig sets the engine configuration.
//
// Default: config.Default()
func WithConfig(cfg config.Config) Option {
	return func(h *Harness) { h.cfg = cfg }
}

// WithLogger sets the logger handed to the engine. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		cfg:    config.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return New(opts...).Run(scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Resolve the catalog and create a seeded engine
// 2. Dispatch the device prelude (if any) and every step
// 3. Check each step's expect block
// 4. Evaluate assertions against the final snapshot
//
// The error return is for scenarios that cannot run at all; failed
// expectations are reported in Result.Errors.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	cat, err := h.resolveCatalog(scenario)
	if err != nil {
		return nil, err
	}

	eng := engine.New(cat,
		engine.WithConfig(h.cfg),
		engine.WithSeed(scenario.Seed),
		engine.WithLogger(h.logger),
	)

	result := NewResult()
	for _, step := range prelude(scenario.Device) {
		cmd, err := engine.ParseCommand(step.Command, step.Args)
		if err != nil {
			return nil, fmt.Errorf("prelude %s: %w", step.Command, err)
		}
		ev, err := record(eng, step, cmd)
		if err != nil {
			return nil, err
		}
		result.Trace = append(result.Trace, ev)
		for _, code := range ev.Diagnostics {
			result.AddError(fmt.Sprintf("prelude %s: unexpected diagnostic %s", step.Command, code))
		}
	}

	for i, step := range scenario.Steps {
		cmd, err := engine.ParseCommand(step.Command, step.Args)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		ev, err := record(eng, step, cmd)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.Trace = append(result.Trace, ev)
		for _, msg := range checkExpect(step.Expect, ev) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Command, msg))
		}
	}

	result.Final = eng.State()
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) resolveCatalog(scenario *Scenario) (catalog.Catalog, error) {
	if scenario.Catalog != "" {
		cat, _, err := catalog.LoadDir(scenario.Catalog, catalog.WithLogger(h.logger))
		if err != nil {
			return nil, fmt.Errorf("load scenario catalog: %w", err)
		}
		return cat, nil
	}
	if h.catalog != nil {
		return h.catalog, nil
	}
	cat, err := catalog.Default(catalog.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("load default catalog: %w", err)
	}
	return cat, nil
}

// prelude opens a session with deviceID selected.
func prelude(deviceID string) []Step {
	if deviceID == "" {
		return nil
	}
	return []Step{
		{Command: engine.KindInitialize},
		{Command: engine.KindGoToSetup, Args: map[string]any{"preferredId": deviceID}},
		{Command: engine.KindSelectDevice, Args: map[string]any{"deviceId": deviceID}},
		{Command: engine.KindStartSimulation},
	}
}

func record(eng *engine.Engine, step Step, cmd engine.Command) (TraceEvent, error) {
	effects := eng.Dispatch(cmd)
	snap := eng.State()

	digest, err := canonical.Digest(snap)
	if err != nil {
		return TraceEvent{}, fmt.Errorf("digest after %s: %w", step.Command, err)
	}

	ev := TraceEvent{
		Seq:        eng.Seq(),
		Command:    step.Command,
		Args:       step.Args,
		Effects:    make([]string, 0, len(effects)),
		Phase:      snap.Phase,
		Month:      snap.TimelineMonth,
		Budget:     snap.Budget,
		Doom:       snap.DoomLevel,
		Compliance: snap.ComplianceLevel,
		Tags:       snap.ActiveTags.Slice(),
		Digest:     digest,
	}
	for _, eff := range effects {
		ev.Effects = append(ev.Effects, engine.EffectName(eff))
	}
	for _, d := range engine.Diagnostics(effects) {
		ev.Diagnostics = append(ev.Diagnostics, string(d.Code))
	}
	if snap.CurrentCrisis != nil {
		ev.Crisis = snap.CurrentCrisis.ID
	}
	return ev, nil
}

// checkExpect returns one message per unmet expectation. Diagnostics are
// checked even without an expect block.
func checkExpect(exp *Expect, ev TraceEvent) []string {
	var msgs []string
	want := ""
	if exp != nil {
		want = exp.Diagnostic
	}
	switch {
	case want == "" && len(ev.Diagnostics) > 0:
		msgs = append(msgs, fmt.Sprintf("unexpected diagnostic %v", ev.Diagnostics))
	case want != "" && !containsString(ev.Diagnostics, want):
		msgs = append(msgs, fmt.Sprintf("expected diagnostic %s, got %v", want, ev.Diagnostics))
	}
	if exp == nil {
		return msgs
	}

	if exp.Phase != "" && exp.Phase != ev.Phase {
		msgs = append(msgs, fmt.Sprintf("phase = %s, expected %s", ev.Phase, exp.Phase))
	}
	if exp.Month != nil && *exp.Month != ev.Month {
		msgs = append(msgs, fmt.Sprintf("month = %d, expected %d", ev.Month, *exp.Month))
	}
	checkFloat := func(name string, want *float64, got float64) {
		if want != nil && math.Abs(*want-got) > floatTolerance {
			msgs = append(msgs, fmt.Sprintf("%s = %v, expected %v", name, got, *want))
		}
	}
	checkFloat("budget", exp.Budget, ev.Budget)
	checkFloat("doom", exp.Doom, ev.Doom)
	checkFloat("compliance", exp.Compliance, ev.Compliance)
	if exp.Crisis != nil && *exp.Crisis != ev.Crisis {
		msgs = append(msgs, fmt.Sprintf("crisis = %q, expected %q", ev.Crisis, *exp.Crisis))
	}
	return msgs
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// reachedPhases lists the phases seen after each step, in first-seen order.
func reachedPhases(trace []TraceEvent) []state.Phase {
	var out []state.Phase
	seen := map[state.Phase]bool{}
	for _, ev := range trace {
		if !seen[ev.Phase] {
			seen[ev.Phase] = true
			out = append(out, ev.Phase)
		}
	}
	return out
}
