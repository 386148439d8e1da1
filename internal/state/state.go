package state

import (
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/compliance"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/events"
)

// HistoryEntry records one resolved crisis.
type HistoryEntry struct {
	Month        int     `json:"month"`
	EventID      string  `json:"eventId"`
	ChoiceID     string  `json:"choiceId"`
	DoomIncrease float64 `json:"doomIncrease"`
	Cost         float64 `json:"cost"`
}

// ShieldDeflection records an event suppressed by a blocking tag.
type ShieldDeflection = events.Deflection

// Internal is the mutable session state. It has exactly one writer.
//
// Invariants maintained by the engine: CurrentCrisis is non-nil iff
// Phase is crisis, and then IsPaused is true; DoomLevel and
// ComplianceLevel stay in [0, 100] after every clamped mutation; History
// and ShieldDeflections only grow.
type Internal struct {
	Phase             Phase              `json:"phase"`
	Budget            float64            `json:"budget"`
	DoomLevel         float64            `json:"doomLevel"`
	TimelineMonth     int                `json:"timelineMonth"`
	SelectedDevice    *catalog.Device    `json:"selectedDevice"`
	ActiveTags        TagSet             `json:"activeTags"`
	History           []HistoryEntry     `json:"history"`
	ShieldDeflections []ShieldDeflection `json:"shieldDeflections"`
	CurrentCrisis     *catalog.GameEvent `json:"currentCrisis"`
	LastEventMonth    int                `json:"lastEventMonth"`
	IsPaused          bool               `json:"isPaused"`
	ComplianceLevel   float64            `json:"complianceLevel"`
	FundingLevel      compliance.Funding `json:"fundingLevel"`
	AvailableDevices  []catalog.Device   `json:"availableDevices"`
}

// Fresh returns the state of a newly initialized session.
func Fresh() Internal {
	return Internal{
		Phase:             PhaseSplash,
		ActiveTags:        NewTagSet(),
		History:           []HistoryEntry{},
		ShieldDeflections: []ShieldDeflection{},
		LastEventMonth:    -1,
		ComplianceLevel:   100,
		FundingLevel:      compliance.FundingFull,
		AvailableDevices:  []catalog.Device{},
	}
}

// Clone returns a deep copy sharing no storage with s.
func (s Internal) Clone() Internal {
	out := s
	if s.SelectedDevice != nil {
		d := s.SelectedDevice.Clone()
		out.SelectedDevice = &d
	}
	if s.CurrentCrisis != nil {
		e := s.CurrentCrisis.Clone()
		out.CurrentCrisis = &e
	}
	out.ActiveTags = s.ActiveTags.Clone()
	out.History = cloneOrEmpty(s.History)
	out.ShieldDeflections = cloneOrEmpty(s.ShieldDeflections)
	out.AvailableDevices = cloneDevices(s.AvailableDevices)
	return out
}

func cloneOrEmpty[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneDevices(in []catalog.Device) []catalog.Device {
	out := make([]catalog.Device, len(in))
	for i, d := range in {
		out[i] = d.Clone()
	}
	return out
}

// ResolvedEventIDs returns the event id of every history entry.
func (s Internal) ResolvedEventIDs() []string {
	out := make([]string, len(s.History))
	for i, h := range s.History {
		out[i] = h.EventID
	}
	return out
}

// Snapshot is the read-only view handed to callers: a deep copy of the
// session plus death analysis, which is non-nil only in autopsy.
type Snapshot struct {
	Internal
	DeathAnalysis *DeathAnalysis `json:"deathAnalysis"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Internal: s.Internal.Clone()}
	if s.DeathAnalysis != nil {
		da := *s.DeathAnalysis
		if da.WorstChoice != nil {
			w := *da.WorstChoice
			da.WorstChoice = &w
		}
		out.DeathAnalysis = &da
	}
	return out
}

