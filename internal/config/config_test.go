package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("ASSIGN_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("ASSIGN_JWT_SECRET", "secret")
	t.Setenv("ASSIGN_SUMMARY_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 30*time.Second, cfg.SummaryCacheTTL)
	require.Equal(t, 5, cfg.SummaryMaxFiles)
	require.Equal(t, "/api/v2/assign", cfg.PublicBaseURL)
	require.Equal(t, 20, cfg.UploadRatePerMinute)
	require.Equal(t, "*", cfg.CORSAllowOrigins)
}

func TestLoadRejectsInvalidTTL(t *testing.T) {
	t.Setenv("ASSIGN_JWT_SECRET", "secret")
	t.Setenv("ASSIGN_SUMMARY_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadCommandSkipsJWTSecret(t *testing.T) {
	t.Setenv("ASSIGN_JWT_SECRET", "")
	t.Setenv("ASSIGN_DATABASE_URL", "postgres://assign@localhost/assign")

	cfg, err := LoadCommand()
	require.NoError(t, err)
	require.Equal(t, "postgres://assign@localhost/assign", cfg.DatabaseURL)
}
