package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/compliance"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// Command is the closed set of inputs accepted by Dispatch.
type Command interface {
	// Kind is the wire name, e.g. "ADVANCE_TIME".
	Kind() string
	command()
}

// Command kinds.
const (
	KindInitialize      = "INITIALIZE"
	KindGoToSetup       = "GO_TO_SETUP"
	KindSelectDevice    = "SELECT_DEVICE"
	KindStartSimulation = "START_SIMULATION"
	KindAdvanceTime     = "ADVANCE_TIME"
	KindSetFunding      = "SET_FUNDING"
	KindTriggerCrisis   = "TRIGGER_CRISIS"
	KindResolveCrisis   = "RESOLVE_CRISIS"
	KindShipProduct     = "SHIP_PRODUCT"
	KindReset           = "RESET"
	KindTick            = "TICK"
	KindSetPaused       = "SET_PAUSED"
	KindRestoreState    = "RESTORE_STATE"
)

type (
	// Initialize replaces the session with fresh defaults.
	Initialize struct{}

	// GoToSetup offers devices, PreferredID first when it resolves.
	GoToSetup struct {
		PreferredID string `json:"preferredId,omitempty"`
	}

	// SelectDevice loads a device's starting budget and tags.
	SelectDevice struct {
		DeviceID string `json:"deviceId"`
	}

	// StartSimulation begins the timeline at month zero.
	StartSimulation struct{}

	// AdvanceTime moves the timeline forward.
	AdvanceTime struct {
		DeltaMonths int `json:"deltaMonths"`
	}

	// SetFunding changes the maintenance posture.
	SetFunding struct {
		Level compliance.Funding `json:"level"`
	}

	// TriggerCrisis opens a specific event immediately.
	TriggerCrisis struct {
		EventID string `json:"eventId"`
	}

	// ResolveCrisis applies a choice of the open crisis.
	ResolveCrisis struct {
		ChoiceID string `json:"choiceId"`
	}

	// ShipProduct trades doom for budget and advances one month.
	ShipProduct struct{}

	// Reset is Initialize under another name.
	Reset struct{}

	// Tick advances one month.
	Tick struct{}

	// SetPaused pauses or resumes the simulation phase.
	SetPaused struct {
		Paused bool `json:"paused"`
	}

	// RestoreState merges a partial snapshot over the session.
	RestoreState struct {
		Partial state.Partial `json:"state"`
	}
)

func (Initialize) Kind() string      { return KindInitialize }
func (GoToSetup) Kind() string       { return KindGoToSetup }
func (SelectDevice) Kind() string    { return KindSelectDevice }
func (StartSimulation) Kind() string { return KindStartSimulation }
func (AdvanceTime) Kind() string     { return KindAdvanceTime }
func (SetFunding) Kind() string      { return KindSetFunding }
func (TriggerCrisis) Kind() string   { return KindTriggerCrisis }
func (ResolveCrisis) Kind() string   { return KindResolveCrisis }
func (ShipProduct) Kind() string     { return KindShipProduct }
func (Reset) Kind() string           { return KindReset }
func (Tick) Kind() string            { return KindTick }
func (SetPaused) Kind() string       { return KindSetPaused }
func (RestoreState) Kind() string    { return KindRestoreState }

func (Initialize) command()      {}
func (GoToSetup) command()       {}
func (SelectDevice) command()    {}
func (StartSimulation) command() {}
func (AdvanceTime) command()     {}
func (SetFunding) command()      {}
func (TriggerCrisis) command()   {}
func (ResolveCrisis) command()   {}
func (ShipProduct) command()     {}
func (Reset) command()           {}
func (Tick) command()            {}
func (SetPaused) command()       {}
func (RestoreState) command()    {}

var commandFactories = map[string]func() Command{
	KindInitialize:      func() Command { return &Initialize{} },
	KindGoToSetup:       func() Command { return &GoToSetup{} },
	KindSelectDevice:    func() Command { return &SelectDevice{} },
	KindStartSimulation: func() Command { return &StartSimulation{} },
	KindAdvanceTime:     func() Command { return &AdvanceTime{} },
	KindSetFunding:      func() Command { return &SetFunding{} },
	KindTriggerCrisis:   func() Command { return &TriggerCrisis{} },
	KindResolveCrisis:   func() Command { return &ResolveCrisis{} },
	KindShipProduct:     func() Command { return &ShipProduct{} },
	KindReset:           func() Command { return &Reset{} },
	KindTick:            func() Command { return &Tick{} },
	KindSetPaused:       func() Command { return &SetPaused{} },
	KindRestoreState:    func() Command { return &RestoreState{} },
}

// ParseCommand builds a command from its kind and a JSON-compatible
// argument map, as found in scenario files. Unknown argument keys are
// rejected.
func ParseCommand(kind string, args map[string]any) (Command, error) {
	factory, ok := commandFactories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", kind)
	}
	ptr := factory()
	if len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("%s: encode args: %w", kind, err)
		}
		if err := decodeStrict(data, ptr); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
	}
	return deref(ptr), nil
}

// deref turns the factory's pointer back into the value form Dispatch
// switches on.
func deref(c Command) Command {
	switch c := c.(type) {
	case *Initialize:
		return *c
	case *GoToSetup:
		return *c
	case *SelectDevice:
		return *c
	case *StartSimulation:
		return *c
	case *AdvanceTime:
		return *c
	case *SetFunding:
		return *c
	case *TriggerCrisis:
		return *c
	case *ResolveCrisis:
		return *c
	case *ShipProduct:
		return *c
	case *Reset:
		return *c
	case *Tick:
		return *c
	case *SetPaused:
		return *c
	case *RestoreState:
		return *c
	}
	return c
}

// Kinds returns every command kind in declaration order.
func Kinds() []string {
	return []string{
		KindInitialize, KindGoToSetup, KindSelectDevice, KindStartSimulation,
		KindAdvanceTime, KindSetFunding, KindTriggerCrisis, KindResolveCrisis,
		KindShipProduct, KindReset, KindTick, KindSetPaused, KindRestoreState,
	}
}

func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
