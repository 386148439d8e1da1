// Package events decides which catalog events may fire and picks one.
package events

import (
	"slices"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/condition"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/config"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/random"
)

// RiskyTags raise the chance of every event while present, independent
// of the event's own tags.
var RiskyTags = []string{
	"legacy_code",
	"hardcoded_credentials",
	"cloud_dependency",
	"critical_vuln",
	"regulatory_risk",
	"eol_device",
	"no_encryption",
	"scada_protocol",
}

// Deflection records an event suppressed by a blocking tag.
type Deflection struct {
	Month        int    `json:"month"`
	EventID      string `json:"eventId"`
	BlockedByTag string `json:"blockedByTag"`
}

// Context is the session view the filter needs.
type Context struct {
	Month      int
	Budget     float64
	Doom       float64
	ActiveTags []string
	// ResolvedEventIDs lists the event id of every history entry.
	ResolvedEventIDs []string
}

func (c Context) condition() condition.Context {
	return condition.Context{
		Month:      c.Month,
		Budget:     c.Budget,
		Doom:       c.Doom,
		TagCount:   len(c.ActiveTags),
		ActiveTags: c.ActiveTags,
	}
}

// FilterEligible returns, in catalog order, the events allowed to fire
// now, plus a deflection for every event stopped only by a blocking tag.
//
// Checks run in order: repeatability, trigger condition, required tags
// (all must be present), blocking tags (first present tag blocks).
func FilterEligible(cat catalog.Catalog, ctx Context) ([]catalog.GameEvent, []Deflection) {
	cond := ctx.condition()
	eligible := []catalog.GameEvent{}
	deflections := []Deflection{}

	for _, ev := range cat.Events() {
		if !ev.Repeatable && slices.Contains(ctx.ResolvedEventIDs, ev.ID) {
			continue
		}
		if !condition.Evaluate(ev.TriggerCondition, cond) {
			continue
		}
		if !containsAll(ctx.ActiveTags, ev.RequiredTags) {
			continue
		}
		if tag, blocked := firstPresent(ctx.ActiveTags, ev.BlockingTags); blocked {
			deflections = append(deflections, Deflection{Month: ctx.Month, EventID: ev.ID, BlockedByTag: tag})
			continue
		}
		eligible = append(eligible, ev)
	}
	return eligible, deflections
}

func containsAll(have, want []string) bool {
	for _, t := range want {
		if !slices.Contains(have, t) {
			return false
		}
	}
	return true
}

func firstPresent(have, candidates []string) (string, bool) {
	for _, t := range candidates {
		if slices.Contains(have, t) {
			return t, true
		}
	}
	return "", false
}

// Selector rolls eligible events against their trigger probability.
type Selector struct {
	balance config.Balance
}

// NewSelector returns a Selector using b.
func NewSelector(b config.Balance) *Selector {
	return &Selector{balance: b}
}

// Probability is the chance ev fires given the session's tags and doom.
func (s *Selector) Probability(ev catalog.GameEvent, activeTags []string, doom float64) float64 {
	p := s.balance.BaseEventProbability
	if ev.Probability != nil {
		p = *ev.Probability
	}
	p += doom / s.balance.DoomProbabilityDivisor
	p += s.balance.RiskyTagBonus * float64(countRisky(activeTags))
	return min(p, s.balance.MaxEventProbability)
}

func countRisky(tags []string) int {
	n := 0
	for _, t := range RiskyTags {
		if slices.Contains(tags, t) {
			n++
		}
	}
	return n
}

// SelectByProbability rolls each eligible event once, in order, and picks
// uniformly among those that pass. When none pass it picks uniformly
// among all eligible events, so a non-empty eligible list always yields
// an event.
func (s *Selector) SelectByProbability(eligible []catalog.GameEvent, activeTags []string, doom float64, rnd random.Provider) (catalog.GameEvent, bool) {
	if len(eligible) == 0 {
		return catalog.GameEvent{}, false
	}
	var pool []catalog.GameEvent
	for _, ev := range eligible {
		if rnd.Random() < s.Probability(ev, activeTags, doom) {
			pool = append(pool, ev)
		}
	}
	if len(pool) > 0 {
		return random.Pick(rnd, pool)
	}
	return random.Pick(rnd, eligible)
}
