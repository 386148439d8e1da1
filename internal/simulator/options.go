package simulator

import (
	"errors"
	"fmt"
	"runtime"
)

// Strategy picks a choice when a simulated game hits a crisis.
type Strategy string

const (
	StrategyRandom      Strategy = "random"
	StrategyLowestDoom  Strategy = "lowest-doom"
	StrategyHighestDoom Strategy = "highest-doom"
	StrategyLowestCost  Strategy = "lowest-cost"
	StrategyHighestCost Strategy = "highest-cost"
)

// Strategies lists every strategy.
var Strategies = []Strategy{
	StrategyRandom, StrategyLowestDoom, StrategyHighestDoom, StrategyLowestCost, StrategyHighestCost,
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	for _, k := range Strategies {
		if s == k {
			return true
		}
	}
	return false
}

// DefaultMaxIterations bounds the commands a single simulated game may
// issue. It stops runaway games on malformed catalogs.
const DefaultMaxIterations = 1000

// Options configures a batch.
type Options struct {
	// NumGames is split evenly across devices, at least one game each.
	NumGames int `json:"numGames"`

	// BaseSeed anchors the per-game seeds.
	BaseSeed int64 `json:"baseSeed"`

	Strategy Strategy `json:"strategy"`

	// MaxIterations caps commands per game. Zero means DefaultMaxIterations.
	MaxIterations int `json:"maxIterations"`

	// Workers caps concurrent games. Zero means GOMAXPROCS.
	Workers int `json:"workers"`

	// ShipWhenSafe ships instead of ticking while doom is under the
	// quality gate.
	ShipWhenSafe bool `json:"shipWhenSafe"`
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = StrategyRandom
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Validate rejects options a batch cannot run with.
func (o Options) Validate() error {
	var errs []error
	if o.NumGames <= 0 {
		errs = append(errs, fmt.Errorf("numGames must be positive, got %d", o.NumGames))
	}
	if o.Strategy != "" && !o.Strategy.Valid() {
		errs = append(errs, fmt.Errorf("unknown strategy %q", o.Strategy))
	}
	if o.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("maxIterations must not be negative, got %d", o.MaxIterations))
	}
	if o.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", o.Workers))
	}
	return errors.Join(errs...)
}
