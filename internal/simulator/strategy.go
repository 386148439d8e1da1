package simulator

import (
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/random"
)

// choose returns the choice s selects from choices. Ties keep the
// earliest choice. An empty list yields the zero Choice, which the
// engine rejects, so the game runs on to the iteration ceiling.
func choose(s Strategy, choices []catalog.Choice, rnd random.Provider) catalog.Choice {
	if len(choices) == 0 {
		return catalog.Choice{}
	}
	switch s {
	case StrategyLowestDoom:
		return best(choices, func(a, b catalog.Choice) bool { return a.DoomImpact < b.DoomImpact })
	case StrategyHighestDoom:
		return best(choices, func(a, b catalog.Choice) bool { return a.DoomImpact > b.DoomImpact })
	case StrategyLowestCost:
		return best(choices, func(a, b catalog.Choice) bool { return a.Cost < b.Cost })
	case StrategyHighestCost:
		return best(choices, func(a, b catalog.Choice) bool { return a.Cost > b.Cost })
	}
	c, _ := random.Pick(rnd, choices)
	return c
}

func best(choices []catalog.Choice, better func(a, b catalog.Choice) bool) catalog.Choice {
	out := choices[0]
	for _, c := range choices[1:] {
		if better(c, out) {
			out = c
		}
	}
	return out
}
