// Package compliance computes the monthly cost and compliance drift of a
// device under a funding posture.
//
// Update is pure: it reports what should change and leaves applying the
// result (and clamping) to the caller.
package compliance

import (
	"slices"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/config"
)

// Funding is the player's maintenance posture.
type Funding string

const (
	FundingFull    Funding = "full"
	FundingPartial Funding = "partial"
	FundingNone    Funding = "none"
)

// Valid reports whether f is a known posture.
func (f Funding) Valid() bool {
	switch f {
	case FundingFull, FundingPartial, FundingNone:
		return true
	}
	return false
}

// Tags the calculator manages.
const (
	TagEOLDevice      = "eol_device"
	TagRegulatoryRisk = "regulatory_risk"
	TagCriticalVuln   = "critical_vuln"
)

// Thresholds on the projected compliance level. Below is "<", at or
// above is ">=".
const (
	RegulatoryRiskThreshold = 50
	CriticalVulnThreshold   = 20
)

const (
	minLevel = 0
	maxLevel = 100
)

// Input is everything Update depends on.
type Input struct {
	Device          catalog.Device
	MonthsPassed    int
	CurrentMonth    int
	Funding         Funding
	ActiveTags      []string
	ComplianceLevel float64
}

// Result is the delta to apply.
type Result struct {
	Cost             float64  `json:"cost"`
	ComplianceChange float64  `json:"complianceChange"`
	TagsToAdd        []string `json:"tagsToAdd"`
	TagsToRemove     []string `json:"tagsToRemove"`
}

type posture struct {
	costMultiplier float64
	perMonth       float64
}

var postures = map[Funding]posture{
	FundingFull:    {costMultiplier: 1.0, perMonth: 1},
	FundingPartial: {costMultiplier: 0.5, perMonth: -2},
	FundingNone:    {costMultiplier: 0.0, perMonth: -5},
}

// eolFullFundingPerMonth replaces the full-funding gain once the device
// is past end of life.
const eolFullFundingPerMonth = -2

// Calculator applies the balance constants to Update.
type Calculator struct {
	balance config.Balance
}

// New returns a Calculator using b.
func New(b config.Balance) *Calculator {
	return &Calculator{balance: b}
}

// Update computes the cost and compliance drift for in.MonthsPassed
// months ending at in.CurrentMonth. Negative month counts are treated
// as zero and an unknown funding posture as full.
func (c *Calculator) Update(in Input) Result {
	maintenance := in.Device.MaintenanceCost
	if maintenance == 0 {
		maintenance = c.balance.DefaultMaintenanceCost
	}
	eolMonth := in.Device.EOLMonth
	if eolMonth == 0 {
		eolMonth = c.balance.DefaultEOLMonth
	}

	eol := in.CurrentMonth >= eolMonth
	legacy := 1.0
	if in.CurrentMonth > c.balance.LegacyThresholdMonth {
		legacy = c.balance.LegacyCostMultiplier
	}

	p, ok := postures[in.Funding]
	if !ok {
		p = postures[FundingFull]
	}
	perMonth := p.perMonth
	if in.Funding == FundingFull && eol {
		perMonth = eolFullFundingPerMonth
	}

	months := float64(max(in.MonthsPassed, 0))
	res := Result{
		Cost:             maintenance * p.costMultiplier * legacy * months,
		ComplianceChange: perMonth * months,
		TagsToAdd:        []string{},
		TagsToRemove:     []string{},
	}

	projected := Clamp(in.ComplianceLevel + res.ComplianceChange)
	has := func(tag string) bool { return slices.Contains(in.ActiveTags, tag) }

	if eol && !has(TagEOLDevice) {
		res.TagsToAdd = append(res.TagsToAdd, TagEOLDevice)
	}
	threshold := func(tag string, limit float64) {
		switch {
		case projected < limit && !has(tag):
			res.TagsToAdd = append(res.TagsToAdd, tag)
		case projected >= limit && has(tag):
			res.TagsToRemove = append(res.TagsToRemove, tag)
		}
	}
	threshold(TagRegulatoryRisk, RegulatoryRiskThreshold)
	threshold(TagCriticalVuln, CriticalVulnThreshold)

	return res
}

// Clamp bounds a compliance or doom level to [0, 100].
func Clamp(v float64) float64 {
	return min(max(v, minLevel), maxLevel)
}
