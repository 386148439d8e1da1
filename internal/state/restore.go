package state

import (
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/compliance"
)

// Partial is any subset of snapshot fields, as produced by a save or
// share adapter.
//
// A nil field (absent or JSON null) keeps the current value. A present
// zero value, false, or empty array is applied as-is. Values are not
// validated or clamped.
type Partial struct {
	Phase             *Phase              `json:"phase,omitempty"`
	Budget            *float64            `json:"budget,omitempty"`
	DoomLevel         *float64            `json:"doomLevel,omitempty"`
	TimelineMonth     *int                `json:"timelineMonth,omitempty"`
	SelectedDevice    *catalog.Device     `json:"selectedDevice,omitempty"`
	ActiveTags        []string            `json:"activeTags"`
	History           []HistoryEntry      `json:"history"`
	ShieldDeflections []ShieldDeflection  `json:"shieldDeflections"`
	CurrentCrisis     *catalog.GameEvent  `json:"currentCrisis,omitempty"`
	LastEventMonth    *int                `json:"lastEventMonth,omitempty"`
	IsPaused          *bool               `json:"isPaused,omitempty"`
	ComplianceLevel   *float64            `json:"complianceLevel,omitempty"`
	FundingLevel      *compliance.Funding `json:"fundingLevel,omitempty"`
	AvailableDevices  []catalog.Device    `json:"availableDevices"`
}

// Merge returns cur with every non-nil field of p applied. The result
// shares no storage with either argument.
func Merge(cur Internal, p Partial) Internal {
	out := cur.Clone()
	if p.Phase != nil {
		out.Phase = *p.Phase
	}
	if p.Budget != nil {
		out.Budget = *p.Budget
	}
	if p.DoomLevel != nil {
		out.DoomLevel = *p.DoomLevel
	}
	if p.TimelineMonth != nil {
		out.TimelineMonth = *p.TimelineMonth
	}
	if p.SelectedDevice != nil {
		d := p.SelectedDevice.Clone()
		out.SelectedDevice = &d
	}
	if p.ActiveTags != nil {
		out.ActiveTags = NewTagSet(p.ActiveTags...)
	}
	if p.History != nil {
		out.History = cloneOrEmpty(p.History)
	}
	if p.ShieldDeflections != nil {
		out.ShieldDeflections = cloneOrEmpty(p.ShieldDeflections)
	}
	if p.CurrentCrisis != nil {
		e := p.CurrentCrisis.Clone()
		out.CurrentCrisis = &e
	}
	if p.LastEventMonth != nil {
		out.LastEventMonth = *p.LastEventMonth
	}
	if p.IsPaused != nil {
		out.IsPaused = *p.IsPaused
	}
	if p.ComplianceLevel != nil {
		out.ComplianceLevel = *p.ComplianceLevel
	}
	if p.FundingLevel != nil {
		out.FundingLevel = *p.FundingLevel
	}
	if p.AvailableDevices != nil {
		out.AvailableDevices = cloneDevices(p.AvailableDevices)
	}
	return out
}

// PartialOf captures every field of s, for saving.
func PartialOf(s Internal) Partial {
	c := s.Clone()
	return Partial{
		Phase:             &c.Phase,
		Budget:            &c.Budget,
		DoomLevel:         &c.DoomLevel,
		TimelineMonth:     &c.TimelineMonth,
		SelectedDevice:    c.SelectedDevice,
		ActiveTags:        c.ActiveTags.Slice(),
		History:           c.History,
		ShieldDeflections: c.ShieldDeflections,
		CurrentCrisis:     c.CurrentCrisis,
		LastEventMonth:    &c.LastEventMonth,
		IsPaused:          &c.IsPaused,
		ComplianceLevel:   &c.ComplianceLevel,
		FundingLevel:      &c.FundingLevel,
		AvailableDevices:  c.AvailableDevices,
	}
}
