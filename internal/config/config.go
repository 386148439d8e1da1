// Package config holds the simulation knobs and balance constants.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the set of plain numeric knobs the engine is tuned with.
type Config struct {
	TotalMonths         int     `json:"totalMonths" env:"HWH_TOTAL_MONTHS"`
	EventsPerGame       int     `json:"eventsPerGame" env:"HWH_EVENTS_PER_GAME"`
	EventIntervalMonths int     `json:"eventIntervalMonths" env:"HWH_EVENT_INTERVAL_MONTHS"`
	MaxDoom             float64 `json:"maxDoom" env:"HWH_MAX_DOOM"`
	GameDurationMs      int64   `json:"gameDurationMs" env:"HWH_GAME_DURATION_MS"`

	Balance Balance `json:"balance" envPrefix:"HWH_"`
}

// Balance holds gameplay constants that are not part of the public
// knob set but are still tunable for balance experiments.
type Balance struct {
	ShipReward      float64 `json:"shipReward" env:"SHIP_REWARD"`
	ShipDoomPenalty float64 `json:"shipDoomPenalty" env:"SHIP_DOOM_PENALTY"`

	LegacyThresholdMonth int     `json:"legacyThresholdMonth" env:"LEGACY_THRESHOLD_MONTH"`
	LegacyCostMultiplier float64 `json:"legacyCostMultiplier" env:"LEGACY_COST_MULTIPLIER"`

	DefaultMaintenanceCost float64 `json:"defaultMaintenanceCost" env:"DEFAULT_MAINTENANCE_COST"`
	DefaultEOLMonth        int     `json:"defaultEolMonth" env:"DEFAULT_EOL_MONTH"`
	DefaultDeviceID        string  `json:"defaultDeviceId" env:"DEFAULT_DEVICE_ID"`

	BaseEventProbability   float64 `json:"baseEventProbability" env:"BASE_EVENT_PROBABILITY"`
	MaxEventProbability    float64 `json:"maxEventProbability" env:"MAX_EVENT_PROBABILITY"`
	DoomProbabilityDivisor float64 `json:"doomProbabilityDivisor" env:"DOOM_PROBABILITY_DIVISOR"`
	RiskyTagBonus          float64 `json:"riskyTagBonus" env:"RISKY_TAG_BONUS"`

	OfferedDevices int `json:"offeredDevices" env:"OFFERED_DEVICES"`
}

// Default returns the reference tuning.
func Default() Config {
	return Config{
		TotalMonths:         60,
		EventsPerGame:       12,
		EventIntervalMonths: 3,
		MaxDoom:             100,
		GameDurationMs:      300000,
		Balance:             DefaultBalance(),
	}
}

// DefaultBalance returns the reference balance constants.
func DefaultBalance() Balance {
	return Balance{
		ShipReward:             35000,
		ShipDoomPenalty:        10,
		LegacyThresholdMonth:   36,
		LegacyCostMultiplier:   1.5,
		DefaultMaintenanceCost: 1000,
		DefaultEOLMonth:        48,
		DefaultDeviceID:        "omni-juice",
		BaseEventProbability:   0.3,
		MaxEventProbability:    0.95,
		DoomProbabilityDivisor: 500,
		RiskyTagBonus:          0.05,
		OfferedDevices:         3,
	}
}

// FromEnv returns Default overlaid with any HWH_* environment variables.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects knobs the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.TotalMonths <= 0 {
		errs = append(errs, fmt.Errorf("totalMonths must be positive, got %d", c.TotalMonths))
	}
	if c.EventIntervalMonths <= 0 {
		errs = append(errs, fmt.Errorf("eventIntervalMonths must be positive, got %d", c.EventIntervalMonths))
	}
	if c.EventsPerGame < 0 {
		errs = append(errs, fmt.Errorf("eventsPerGame must not be negative, got %d", c.EventsPerGame))
	}
	if c.MaxDoom <= 0 {
		errs = append(errs, fmt.Errorf("maxDoom must be positive, got %v", c.MaxDoom))
	}
	if c.Balance.DoomProbabilityDivisor <= 0 {
		errs = append(errs, fmt.Errorf("doomProbabilityDivisor must be positive, got %v", c.Balance.DoomProbabilityDivisor))
	}
	if c.Balance.OfferedDevices <= 0 {
		errs = append(errs, fmt.Errorf("offeredDevices must be positive, got %d", c.Balance.OfferedDevices))
	}
	return errors.Join(errs...)
}
