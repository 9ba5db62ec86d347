package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/stretchr/testify/require"
)

func TestUnitDefaults(t *testing.T) {
	cfg := App{}
	require.NoError(t, env.Parse(&cfg))

	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, ":8080", cfg.API.Bind)
	require.EqualValues(t, 1000, cfg.Governance.MinProposerPower)
	require.Equal(t, 24*time.Hour, cfg.Governance.DeadlineWindow)
	require.Equal(t, "@every 1m", cfg.Governance.SweepSchedule)
	require.Equal(t, 60*time.Second, cfg.PriceFeed.PollInterval)
	require.False(t, cfg.AI.Enabled)
	require.EqualValues(t, 10, cfg.AI.MonthlyRateLimit)
}

func TestUnitOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GOVERNANCE_MIN_PROPOSER_POWER", "5000")
	t.Setenv("GOVERNANCE_DEADLINE_WINDOW", "12h")
	t.Setenv("AI_SUMMARY_ENABLED", "true")

	cfg := App{}
	require.NoError(t, env.Parse(&cfg))

	require.Equal(t, "debug", cfg.LogLevel)
	require.EqualValues(t, 5000, cfg.Governance.MinProposerPower)
	require.Equal(t, 12*time.Hour, cfg.Governance.DeadlineWindow)
	require.True(t, cfg.AI.Enabled)
}
