package state

import (
	"slices"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/compliance"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/events"
)

// Cause explains how a session ended.
type Cause string

const (
	CauseDoomOverflow Cause = "doom_overflow"
	CauseSurvived     Cause = "survived"
)

// DeathAnalysis summarises a finished session for the autopsy screen.
type DeathAnalysis struct {
	Cause           Cause         `json:"cause"`
	FinalMonth      int           `json:"finalMonth"`
	FinalDoom       float64       `json:"finalDoom"`
	FinalBudget     float64       `json:"finalBudget"`
	FinalCompliance float64       `json:"finalCompliance"`
	WorstChoice     *HistoryEntry `json:"worstChoice"`
	TotalCost       float64       `json:"totalCost"`
	CrisesResolved  int           `json:"crisesResolved"`
	Deflections     int           `json:"deflections"`
	ProblemTag      string        `json:"problemTag,omitempty"`
}

// ProblemTags are the tags death analysis may blame, checked against the
// active tags in insertion order.
var ProblemTags = func() []string {
	tags := []string{compliance.TagCriticalVuln, compliance.TagRegulatoryRisk, compliance.TagEOLDevice}
	for _, t := range events.RiskyTags {
		if !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	return tags
}()

// Analyze returns the death analysis for s, or nil unless s is in
// autopsy.
//
// The cause is doom_overflow unless doom is below maxDoom and the
// timeline reached totalMonths; when both hold, doom_overflow wins.
func Analyze(s Internal, maxDoom float64, totalMonths int) *DeathAnalysis {
	if s.Phase != PhaseAutopsy {
		return nil
	}
	cause := CauseDoomOverflow
	if s.DoomLevel < maxDoom && s.TimelineMonth >= totalMonths {
		cause = CauseSurvived
	}

	da := &DeathAnalysis{
		Cause:           cause,
		FinalMonth:      s.TimelineMonth,
		FinalDoom:       s.DoomLevel,
		FinalBudget:     s.Budget,
		FinalCompliance: s.ComplianceLevel,
		WorstChoice:     WorstChoice(s.History),
		CrisesResolved:  len(s.History),
		Deflections:     len(s.ShieldDeflections),
	}
	for _, h := range s.History {
		da.TotalCost += h.Cost
	}
	for _, t := range s.ActiveTags.items {
		if slices.Contains(ProblemTags, t) {
			da.ProblemTag = t
			break
		}
	}
	return da
}

// WorstChoice returns a copy of the earliest entry with the strictly
// greatest positive doom increase, or nil if none increased doom.
func WorstChoice(history []HistoryEntry) *HistoryEntry {
	var worst *HistoryEntry
	for i := range history {
		h := history[i]
		if h.DoomIncrease <= 0 {
			continue
		}
		if worst == nil || h.DoomIncrease > worst.DoomIncrease {
			worst = &h
		}
	}
	return worst
}
