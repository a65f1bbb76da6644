package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  provider: memory
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 20, cfg.Discovery.TargetDefault)
	require.Equal(t, 5, cfg.Discovery.MaxIterations)
	require.Equal(t, 3, cfg.Discovery.MaxVariations)
	require.Equal(t, 2, cfg.Discovery.GeoExpansionAfter)
	require.Equal(t, time.Second, cfg.Discovery.MinSpacing())
	require.Equal(t, 5*time.Minute, cfg.Discovery.RequestTimeout())
	require.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	require.Equal(t, "discovery_queries", cfg.Storage.HistoryTable)
	require.Equal(t, "known_entities", cfg.Storage.DedupTable)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
discovery:
  target_default: 50
  geo_expansion_after: 3
  min_spacing_ms: 250
storage:
  provider: postgres
db:
  dsn: postgres://localhost/discovery
  conn_lifetime_minutes: 30
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 50, cfg.Discovery.TargetDefault)
	require.Equal(t, 3, cfg.Discovery.GeoExpansionAfter)
	require.Equal(t, 250*time.Millisecond, cfg.Discovery.MinSpacing())
	require.Equal(t, 30*time.Minute, cfg.DB.ConnLifetime())
}

func TestLoadRequiresDSNForPostgres(t *testing.T) {
	path := writeConfig(t, `
storage:
  provider: postgres
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "db.dsn")
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Server:    ServerConfig{Port: 8080},
			Discovery: DiscoveryConfig{MaxIterations: 5, MaxVariations: 3, SearchConcurrency: 2},
			Storage:   StorageConfig{Provider: "memory"},
		}
	}

	cfg := base()
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Discovery.MaxIterations = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Storage.Provider = "cassandra"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth = AuthConfig{Enabled: true}
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.PubSub = PubSubConfig{Enabled: true, ProjectID: "proj"}
	require.Error(t, cfg.Validate())

	require.NoError(t, base().Validate())
}
