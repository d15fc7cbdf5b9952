package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, 30*time.Second, cfg.API.PollInterval)
	require.Equal(t, "portal_sid", cfg.Session.Cookie)
	require.Equal(t, 24*time.Hour, cfg.Session.TTL)
	require.False(t, cfg.Production())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_BASE_URL":   "https://api.example.com/api",
		"POLL_INTERVAL":  "5s",
		"SESSION_COOKIE": "sid",
		"ENV":            "production",
	}))
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
	require.Equal(t, 5*time.Second, cfg.API.PollInterval)
	require.Equal(t, "sid", cfg.Session.Cookie)
	require.True(t, cfg.Production())
}

func TestLoadFrom_BadDuration(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"API_TIMEOUT": "soon"}))
	require.Error(t, err)
}
