package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.10")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.TrustedProxies)
}

func TestLoadConfig_ZeroScoringDefaults(t *testing.T) {
	t.Setenv("DEFAULT_POINTS_PER_CORRECT", "0")
	t.Setenv("PASSING_SCORE", "0")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.DefaultPointsPerCorrect)
	assert.Equal(t, 0.0, cfg.PassingScore)
}
