package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60, cfg.TotalMonths)
	assert.Equal(t, 100.0, cfg.MaxDoom)
	assert.Equal(t, 35000.0, cfg.Balance.ShipReward)
	assert.Equal(t, "omni-juice", cfg.Balance.DefaultDeviceID)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HWH_TOTAL_MONTHS", "24")
	t.Setenv("HWH_MAX_DOOM", "80")
	t.Setenv("HWH_SHIP_REWARD", "1000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.TotalMonths)
	assert.Equal(t, 80.0, cfg.MaxDoom)
	assert.Equal(t, 1000.0, cfg.Balance.ShipReward)
	assert.Equal(t, 3, cfg.EventIntervalMonths, "unset knobs keep their defaults")
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("HWH_TOTAL_MONTHS", "zero")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("HWH_TOTAL_MONTHS", "0")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "totalMonths")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.MaxDoom = 0
	cfg.EventIntervalMonths = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "maxDoom")
	assert.ErrorContains(t, err, "eventIntervalMonths")
}
