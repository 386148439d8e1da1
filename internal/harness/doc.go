// Package harness replays scripted game sessions against the engine.
//
// A scenario is a YAML file naming a seed, an optional device, a list of
// commands with per-step expectations, and assertions over the final
// snapshot:
//
//	name: partial-funding-audit
//	description: Manual audit under partial funding
//	seed: 42
//	device: omni-juice
//	steps:
//	  - command: SHIP_PRODUCT
//	    expect: {phase: simulation, month: 1, budget: 153500}
//	  - command: TRIGGER_CRISIS
//	    args: {eventId: regulatory-audit}
//	    expect: {phase: crisis, crisis: regulatory-audit}
//	assertions:
//	  - {type: history_count, count: 0}
//
// When device is set, the session is opened with INITIALIZE, GO_TO_SETUP,
// SELECT_DEVICE and START_SIMULATION before the first step. These prelude
// commands appear in the trace like any other.
//
// Every step is recorded as a TraceEvent. A step that produces a
// diagnostic fails the scenario unless its expect block names that code.
// Golden traces are compared with goldie under testdata/golden; the
// per-step snapshot digests feed VerifyDeterminism and are not part of the
// golden text.
package harness
