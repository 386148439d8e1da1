// Package state defines the session state owned by the engine, the
// phase transition table, the deep-copied snapshot handed to callers,
// and the merge rule used to restore saved sessions.
package state

// Phase is the coarse mode of a session.
type Phase string

const (
	PhaseSplash       Phase = "splash"
	PhaseSetup        Phase = "setup"
	PhaseSimulation   Phase = "simulation"
	PhaseCrisis       Phase = "crisis"
	PhaseAutopsy      Phase = "autopsy"
	PhaseVictory      Phase = "victory"
	PhaseSharedResult Phase = "shared_result"
)

// Phases lists every valid phase.
var Phases = []Phase{
	PhaseSplash, PhaseSetup, PhaseSimulation, PhaseCrisis,
	PhaseAutopsy, PhaseVictory, PhaseSharedResult,
}

var transitions = map[Phase][]Phase{
	PhaseSplash:       {PhaseSetup},
	PhaseSetup:        {PhaseSimulation, PhaseSplash},
	PhaseSimulation:   {PhaseCrisis, PhaseAutopsy, PhaseVictory},
	PhaseCrisis:       {PhaseSimulation, PhaseAutopsy},
	PhaseAutopsy:      {PhaseSplash},
	PhaseVictory:      {PhaseSplash},
	PhaseSharedResult: {PhaseSetup, PhaseSplash},
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	_, ok := transitions[p]
	return ok
}

// CanTransition reports whether from → to is in the transition table.
func CanTransition(from, to Phase) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the phases reachable from p in one step.
func AllowedTargets(p Phase) []Phase {
	return append([]Phase(nil), transitions[p]...)
}
