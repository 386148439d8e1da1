package catalog

import "slices"

// Archetype classifies the kind of product a device represents.
type Archetype string

const (
	ArchetypeConsumer       Archetype = "consumer"
	ArchetypeMedical        Archetype = "medical"
	ArchetypeIndustrial     Archetype = "industrial"
	ArchetypeAutomotive     Archetype = "automotive"
	ArchetypeInfrastructure Archetype = "infrastructure"
)

// Difficulty is the advertised difficulty of a device.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// Risk classifies a choice.
type Risk string

const (
	RiskLow      Risk = "low"
	RiskMedium   Risk = "medium"
	RiskHigh     Risk = "high"
	RiskCritical Risk = "critical"
)

// Device is a product the player can steward.
//
// MaintenanceCost and EOLMonth are optional; zero means "use the
// configured default".
type Device struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Archetype       Archetype  `json:"archetype"`
	Difficulty      Difficulty `json:"difficulty"`
	InitialTags     []string   `json:"initialTags"`
	InitialBudget   float64    `json:"initialBudget"`
	MaintenanceCost float64    `json:"maintenanceCost,omitempty"`
	EOLMonth        int        `json:"eolMonth,omitempty"`
}

// Clone returns a deep copy.
func (d Device) Clone() Device {
	d.InitialTags = slices.Clone(d.InitialTags)
	return d
}

// Choice is one way of resolving an event.
type Choice struct {
	ID          string   `json:"id"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
	Cost        float64  `json:"cost"`
	DoomImpact  float64  `json:"doomImpact"`
	AddTags     []string `json:"addTags,omitempty"`
	RemoveTags  []string `json:"removeTags,omitempty"`
	Risk        Risk     `json:"risk"`
}

// Clone returns a deep copy.
func (c Choice) Clone() Choice {
	c.AddTags = slices.Clone(c.AddTags)
	c.RemoveTags = slices.Clone(c.RemoveTags)
	return c
}

// GameEvent is a crisis that may be offered to the player.
type GameEvent struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	TriggerCondition string   `json:"triggerCondition,omitempty"`
	RequiredTags     []string `json:"requiredTags,omitempty"`
	BlockingTags     []string `json:"blockingTags,omitempty"`
	Choices          []Choice `json:"choices"`
	Probability      *float64 `json:"probability,omitempty"`
	Repeatable       bool     `json:"repeatable,omitempty"`
}

// Clone returns a deep copy.
func (e GameEvent) Clone() GameEvent {
	e.RequiredTags = slices.Clone(e.RequiredTags)
	e.BlockingTags = slices.Clone(e.BlockingTags)
	if e.Choices != nil {
		choices := make([]Choice, len(e.Choices))
		for i, c := range e.Choices {
			choices[i] = c.Clone()
		}
		e.Choices = choices
	}
	if e.Probability != nil {
		p := *e.Probability
		e.Probability = &p
	}
	return e
}

// Choice returns the choice with the given id.
func (e GameEvent) Choice(id string) (Choice, bool) {
	for _, c := range e.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}
