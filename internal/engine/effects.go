package engine

import (
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// Effect is something a command caused, reported by Reduce in order.
// *CommandError is also an Effect.
type Effect interface {
	effect()
}

// PhaseChanged reports a transition.
type PhaseChanged struct {
	From state.Phase
	To   state.Phase
}

// SessionReset reports that the session was replaced with defaults.
type SessionReset struct{}

// TimeAdvanced reports months elapsed and the maintenance charged.
type TimeAdvanced struct {
	FromMonth int
	ToMonth   int
	Cost      float64
}

// TagsChanged reports tag additions and removals that took effect.
type TagsChanged struct {
	Added   []string
	Removed []string
}

// CrisisTriggered reports an event opened as a crisis.
type CrisisTriggered struct {
	EventID string
	Month   int
	Manual  bool
}

// CrisisResolved reports a resolved crisis.
type CrisisResolved struct {
	Entry state.HistoryEntry
}

// EventDeflected reports an event blocked by a tag.
type EventDeflected struct {
	Deflection state.ShieldDeflection
}

// StateRestored reports a restore merge.
type StateRestored struct{}

func (PhaseChanged) effect()    {}
func (SessionReset) effect()    {}
func (TimeAdvanced) effect()    {}
func (TagsChanged) effect()     {}
func (CrisisTriggered) effect() {}
func (CrisisResolved) effect()  {}
func (EventDeflected) effect()  {}
func (StateRestored) effect()   {}

// EffectName returns a stable snake_case name for e, used in traces.
func EffectName(e Effect) string {
	switch e.(type) {
	case PhaseChanged:
		return "phase_changed"
	case SessionReset:
		return "session_reset"
	case TimeAdvanced:
		return "time_advanced"
	case TagsChanged:
		return "tags_changed"
	case CrisisTriggered:
		return "crisis_triggered"
	case CrisisResolved:
		return "crisis_resolved"
	case EventDeflected:
		return "event_deflected"
	case StateRestored:
		return "state_restored"
	case *CommandError:
		return "diagnostic"
	}
	return "unknown"
}

// Diagnostics returns the CommandError effects in effects.
func Diagnostics(effects []Effect) []*CommandError {
	var out []*CommandError
	for _, e := range effects {
		if ce, ok := e.(*CommandError); ok {
			out = append(out, ce)
		}
	}
	return out
}
