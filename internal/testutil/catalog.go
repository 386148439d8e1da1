package testutil

import "github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"

// Prob returns a pointer to p for GameEvent.Probability literals.
func Prob(p float64) *float64 { return &p }

// ReferenceDevice mirrors the shipped omni-juice device.
func ReferenceDevice() catalog.Device {
	return catalog.Device{
		ID:              "omni-juice",
		Name:            "Omni Juice",
		Archetype:       catalog.ArchetypeConsumer,
		Difficulty:      catalog.DifficultyEasy,
		InitialTags:     []string{"cloud_dependency"},
		InitialBudget:   120000,
		MaintenanceCost: 1500,
		EOLMonth:        48,
	}
}

// SmallCatalog is a three-device, three-event catalog small enough to
// reason about by hand.
//
// Events:
//   - "outage": always eligible, repeatable, two choices.
//   - "cloud-shutdown": requires cloud_dependency, blocked by local_fallback.
//   - "late-audit": only after month 6, not repeatable.
func SmallCatalog() *catalog.Memory {
	devices := []catalog.Device{
		ReferenceDevice(),
		{
			ID: "tiny-sensor", Name: "Tiny Sensor",
			Archetype: catalog.ArchetypeIndustrial, Difficulty: catalog.DifficultyNormal,
			InitialTags: []string{}, InitialBudget: 50000, MaintenanceCost: 500, EOLMonth: 24,
		},
		{
			ID: "heart-link", Name: "Heart Link",
			Archetype: catalog.ArchetypeMedical, Difficulty: catalog.DifficultyHard,
			InitialTags: []string{"medical_data"}, InitialBudget: 200000, MaintenanceCost: 3000, EOLMonth: 60,
		},
	}
	events := []catalog.GameEvent{
		{
			ID: "outage", Title: "Server Outage", Repeatable: true, Probability: Prob(0.5),
			Choices: []catalog.Choice{
				{ID: "fix", Label: "Fix it properly", Cost: 10000, DoomImpact: 2, Risk: catalog.RiskLow},
				{ID: "ignore", Label: "Ignore it", Cost: 0, DoomImpact: 20, Risk: catalog.RiskHigh},
			},
		},
		{
			ID: "cloud-shutdown", Title: "Cloud Provider Shutdown",
			RequiredTags: []string{"cloud_dependency"}, BlockingTags: []string{"local_fallback"},
			Choices: []catalog.Choice{
				{ID: "migrate", Cost: 25000, DoomImpact: 5, AddTags: []string{"local_fallback"}, RemoveTags: []string{"cloud_dependency"}, Risk: catalog.RiskMedium},
				{ID: "pray", Cost: 0, DoomImpact: 35, Risk: catalog.RiskCritical},
			},
		},
		{
			ID: "late-audit", Title: "Compliance Audit", TriggerCondition: "month > 6",
			Choices: []catalog.Choice{
				{ID: "comply", Cost: 15000, DoomImpact: 0, Risk: catalog.RiskLow},
			},
		},
	}
	return catalog.NewMemory(devices, events)
}
