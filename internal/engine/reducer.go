package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/compliance"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/config"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/events"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/random"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// Reducer applies commands to session state.
//
// Reduce never mutates its input and has no side effects beyond drawing
// from its random provider, so a Reducer with a seeded provider is fully
// deterministic. A Reducer is not safe for concurrent use because the
// provider is stateful.
type Reducer struct {
	cfg        config.Config
	catalog    catalog.Catalog
	rnd        random.Provider
	compliance *compliance.Calculator
	selector   *events.Selector
}

// NewReducer creates a Reducer.
func NewReducer(cfg config.Config, cat catalog.Catalog, rnd random.Provider) *Reducer {
	return &Reducer{
		cfg:        cfg,
		catalog:    cat,
		rnd:        rnd,
		compliance: compliance.New(cfg.Balance),
		selector:   events.NewSelector(cfg.Balance),
	}
}

// step accumulates the next state and the effects of one command.
type step struct {
	r       *Reducer
	cmd     Command
	s       state.Internal
	effects []Effect
}

func (st *step) emit(e Effect) { st.effects = append(st.effects, e) }

func (st *step) reject(code DiagnosticCode, msg string, details map[string]string) {
	st.emit(newCommandError(code, st.cmd, msg, details))
}

// transition moves to target if the table allows it.
func (st *step) transition(target state.Phase) bool {
	from := st.s.Phase
	if !state.CanTransition(from, target) {
		st.reject(CodeInvalidTransition,
			fmt.Sprintf("cannot move from %s to %s", from, target),
			map[string]string{"from": string(from), "to": string(target), "allowed": allowedTargets(from)})
		return false
	}
	st.s.Phase = target
	st.emit(PhaseChanged{From: from, To: target})
	return true
}

func allowedTargets(p state.Phase) string {
	targets := state.AllowedTargets(p)
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	return strings.Join(names, ",")
}

// Reduce returns the state after applying cmd to s, plus what happened.
// A rejected command returns s unchanged (as a copy) and a CommandError.
func (r *Reducer) Reduce(s state.Internal, cmd Command) (state.Internal, []Effect) {
	st := &step{r: r, cmd: cmd, s: s.Clone()}

	switch c := cmd.(type) {
	case Initialize, Reset:
		st.s = state.Fresh()
		st.emit(SessionReset{})
	case GoToSetup:
		st.goToSetup(c.PreferredID)
	case SelectDevice:
		st.selectDevice(c.DeviceID)
	case StartSimulation:
		st.startSimulation()
	case AdvanceTime:
		st.advanceTime(c.DeltaMonths)
	case Tick:
		st.advanceTime(1)
	case SetFunding:
		st.setFunding(c.Level)
	case TriggerCrisis:
		st.triggerCrisis(c.EventID)
	case ResolveCrisis:
		st.resolveCrisis(c.ChoiceID)
	case ShipProduct:
		st.shipProduct()
	case SetPaused:
		st.setPaused(c.Paused)
	case RestoreState:
		st.s = state.Merge(st.s, c.Partial)
		st.emit(StateRestored{})
	default:
		kind := "<nil>"
		if cmd != nil {
			kind = fmt.Sprintf("%T", cmd)
		}
		st.reject(CodeInvalidArgument, "unsupported command", map[string]string{"type": kind})
	}

	if len(Diagnostics(st.effects)) > 0 && !st.mutated() {
		return s.Clone(), st.effects
	}
	return st.s, st.effects
}

// mutated reports whether any non-diagnostic effect was emitted.
func (st *step) mutated() bool {
	for _, e := range st.effects {
		if _, ok := e.(*CommandError); !ok {
			return true
		}
	}
	return false
}

func (st *step) goToSetup(preferredID string) {
	if !state.CanTransition(st.s.Phase, state.PhaseSetup) {
		st.transition(state.PhaseSetup)
		return
	}
	st.s.AvailableDevices = st.r.offerDevices(st, preferredID)
	st.s.SelectedDevice = nil
	st.transition(state.PhaseSetup)
}

// offerDevices returns the preferred device (or the default, or the
// first catalog device) followed by up to OfferedDevices-1 others drawn
// without replacement.
func (r *Reducer) offerDevices(st *step, preferredID string) []catalog.Device {
	devices := r.catalog.Devices()
	if len(devices) == 0 {
		return []catalog.Device{}
	}

	first, ok := catalog.Device{}, false
	if preferredID != "" {
		first, ok = r.catalog.Device(preferredID)
		if !ok {
			// Not a rejection: setup still proceeds with the fallback.
			st.emit(newCommandError(CodeUnknownReference, st.cmd, "preferred device not found, using default",
				map[string]string{"device_id": preferredID}))
		}
	}
	if !ok {
		first, ok = r.catalog.Device(r.cfg.Balance.DefaultDeviceID)
	}
	if !ok {
		first = devices[0]
	}

	rest := make([]catalog.Device, 0, len(devices)-1)
	for _, d := range devices {
		if d.ID != first.ID {
			rest = append(rest, d)
		}
	}
	offered := []catalog.Device{first.Clone()}
	for _, d := range random.PartialShuffle(r.rnd, rest, r.cfg.Balance.OfferedDevices-1) {
		offered = append(offered, d.Clone())
	}
	return offered
}

func (st *step) selectDevice(id string) {
	d, ok := st.r.catalog.Device(id)
	if !ok {
		st.reject(CodeUnknownReference, "device not found", map[string]string{"device_id": id})
		return
	}
	d = d.Clone()
	st.s.SelectedDevice = &d
	st.s.Budget = d.InitialBudget
	st.s.ActiveTags = state.NewTagSet(d.InitialTags...)
	st.s.ComplianceLevel = 100
	st.s.FundingLevel = compliance.FundingFull
	st.emit(TagsChanged{Added: st.s.ActiveTags.Slice(), Removed: []string{}})
}

func (st *step) startSimulation() {
	if st.s.SelectedDevice == nil {
		st.reject(CodePreconditionFailed, "no device selected", nil)
		return
	}
	if !st.transition(state.PhaseSimulation) {
		return
	}
	st.s.TimelineMonth = 0
	st.s.LastEventMonth = -1
	st.s.IsPaused = false
}

// running reports whether simulated time may move, rejecting otherwise.
func (st *step) running() bool {
	if st.s.Phase != state.PhaseSimulation {
		st.reject(CodePreconditionFailed, "simulation is not running",
			map[string]string{"phase": string(st.s.Phase)})
		return false
	}
	if st.s.IsPaused {
		st.reject(CodePreconditionFailed, "simulation is paused", nil)
		return false
	}
	return true
}

func (st *step) advanceTime(delta int) {
	if delta <= 0 {
		st.reject(CodeInvalidArgument, "deltaMonths must be positive",
			map[string]string{"delta_months": strconv.Itoa(delta)})
		return
	}
	if !st.running() {
		return
	}
	cfg := st.r.cfg

	from := st.s.TimelineMonth
	// A restored month past the end stays where it is; time never runs back.
	to := max(from, min(from+delta, cfg.TotalMonths))
	var device catalog.Device
	if st.s.SelectedDevice != nil {
		device = *st.s.SelectedDevice
	}
	res := st.r.compliance.Update(compliance.Input{
		Device:          device,
		MonthsPassed:    to - from,
		CurrentMonth:    to,
		Funding:         st.s.FundingLevel,
		ActiveTags:      st.s.ActiveTags.Slice(),
		ComplianceLevel: st.s.ComplianceLevel,
	})
	st.s.Budget -= res.Cost
	st.s.ComplianceLevel = compliance.Clamp(st.s.ComplianceLevel + res.ComplianceChange)
	st.applyTags(res.TagsToAdd, res.TagsToRemove)
	st.s.TimelineMonth = to
	st.emit(TimeAdvanced{FromMonth: from, ToMonth: to, Cost: res.Cost})

	if to >= cfg.TotalMonths {
		st.transition(state.PhaseVictory)
		return
	}
	if st.s.DoomLevel >= cfg.MaxDoom {
		st.transition(state.PhaseAutopsy)
		return
	}
	if to > st.s.LastEventMonth+cfg.EventIntervalMonths-1 {
		st.rollEvent(to)
	}
}

func (st *step) rollEvent(month int) {
	tags := st.s.ActiveTags.Slice()
	eligible, deflections := events.FilterEligible(st.r.catalog, events.Context{
		Month:            month,
		Budget:           st.s.Budget,
		Doom:             st.s.DoomLevel,
		ActiveTags:       tags,
		ResolvedEventIDs: st.s.ResolvedEventIDs(),
	})
	for _, d := range deflections {
		st.s.ShieldDeflections = append(st.s.ShieldDeflections, d)
		st.emit(EventDeflected{Deflection: d})
	}
	ev, ok := st.r.selector.SelectByProbability(eligible, tags, st.s.DoomLevel, st.r.rnd)
	if !ok {
		return
	}
	st.openCrisis(ev, month, false)
}

func (st *step) openCrisis(ev catalog.GameEvent, month int, manual bool) {
	if !st.transition(state.PhaseCrisis) {
		return
	}
	ev = ev.Clone()
	st.s.CurrentCrisis = &ev
	st.s.IsPaused = true
	st.s.LastEventMonth = month
	st.emit(CrisisTriggered{EventID: ev.ID, Month: month, Manual: manual})
}

func (st *step) applyTags(add, remove []string) {
	changed := TagsChanged{Added: []string{}, Removed: []string{}}
	for _, t := range add {
		if st.s.ActiveTags.Add(t) {
			changed.Added = append(changed.Added, t)
		}
	}
	for _, t := range remove {
		if st.s.ActiveTags.Remove(t) {
			changed.Removed = append(changed.Removed, t)
		}
	}
	if len(changed.Added) > 0 || len(changed.Removed) > 0 {
		st.emit(changed)
	}
}

func (st *step) setFunding(level compliance.Funding) {
	if !level.Valid() {
		st.reject(CodeInvalidArgument, "unknown funding level", map[string]string{"level": string(level)})
		return
	}
	st.s.FundingLevel = level
}

func (st *step) triggerCrisis(eventID string) {
	ev, ok := st.r.catalog.Event(eventID)
	if !ok {
		st.reject(CodeUnknownReference, "event not found", map[string]string{"event_id": eventID})
		return
	}
	st.openCrisis(ev, st.s.TimelineMonth, true)
}

func (st *step) resolveCrisis(choiceID string) {
	crisis := st.s.CurrentCrisis
	if st.s.Phase != state.PhaseCrisis || crisis == nil {
		st.reject(CodePreconditionFailed, "no open crisis", map[string]string{"phase": string(st.s.Phase)})
		return
	}
	choice, ok := crisis.Choice(choiceID)
	if !ok {
		st.reject(CodeUnknownReference, "choice not found",
			map[string]string{"event_id": crisis.ID, "choice_id": choiceID})
		return
	}

	st.s.Budget -= choice.Cost
	st.s.DoomLevel = st.r.clampDoom(st.s.DoomLevel + choice.DoomImpact)
	st.applyTags(choice.AddTags, choice.RemoveTags)

	entry := state.HistoryEntry{
		Month:        st.s.TimelineMonth,
		EventID:      crisis.ID,
		ChoiceID:     choice.ID,
		DoomIncrease: choice.DoomImpact,
		Cost:         choice.Cost,
	}
	st.s.History = append(st.s.History, entry)
	st.s.CurrentCrisis = nil
	st.emit(CrisisResolved{Entry: entry})

	if st.s.DoomLevel >= st.r.cfg.MaxDoom {
		st.transition(state.PhaseAutopsy)
		return
	}
	st.transition(state.PhaseSimulation)
	st.s.IsPaused = false
}

func (st *step) shipProduct() {
	if !st.running() {
		return
	}
	if gate := st.r.cfg.MaxDoom / 2; st.s.DoomLevel >= gate {
		st.reject(CodePreconditionFailed, "doom too high to ship",
			map[string]string{"doom": strconv.FormatFloat(st.s.DoomLevel, 'f', -1, 64)})
		return
	}
	b := st.r.cfg.Balance
	st.s.Budget += b.ShipReward
	st.s.DoomLevel = st.r.clampDoom(st.s.DoomLevel + b.ShipDoomPenalty)
	st.advanceTime(1)
}

func (st *step) setPaused(paused bool) {
	if st.s.Phase != state.PhaseSimulation {
		st.reject(CodePreconditionFailed, "only a running simulation can be paused",
			map[string]string{"phase": string(st.s.Phase)})
		return
	}
	st.s.IsPaused = paused
}

func (r *Reducer) clampDoom(v float64) float64 {
	return min(max(v, 0), r.cfg.MaxDoom)
}
