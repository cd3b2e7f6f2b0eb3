package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.DailyCap)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 50, cfg.GA.PopulationSize)
	assert.Equal(t, 100, cfg.GA.Generations)
	assert.InDelta(t, 0.10, cfg.GA.EliteFraction, 0.0001)
}

func TestLoadHonorsEnvironmentOverride(t *testing.T) {
	t.Setenv("DAILY_CAP", "5")
	t.Setenv("GA_GENERATIONS", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.DailyCap)
	assert.Equal(t, 250, cfg.GA.Generations)
}
