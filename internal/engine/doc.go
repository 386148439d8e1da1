// Package engine implements the session state machine.
//
// ARCHITECTURE:
//
// Reducer:
// Reduce(state, command) returns the next state and the effects of the
// command without touching its input. All game rules live here:
//   - Phase changes are checked against the transition table; a change
//     not in the table is rejected and the state is left as it was.
//   - Advancing time charges maintenance, drifts compliance, applies
//     compliance tags, then checks victory before doom, then rolls for an
//     event once the event interval has elapsed.
//   - Randomness comes only from the injected random.Provider, so a
//     seeded Reducer replays bit-for-bit.
//
// Engine:
// Engine wraps a Reducer with the session it owns. It stamps each command
// with a sequence number, logs rejected commands, caches the snapshot
// until the next command, hands out deep copies, and notifies listeners
// in registration order. A listener that panics is logged and skipped.
//
// ERROR HANDLING:
// Nothing in this package returns an error to the dispatcher. Rejections
// are *CommandError effects with a DiagnosticCode; callers inspect them
// through Engine.LastDiagnostics or the IsXxx helpers.
package engine
