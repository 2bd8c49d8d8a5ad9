package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "playmatch-dev")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreFirestore, cfg.Store.Driver)
	assert.Equal(t, 10, cfg.Discovery.PageSize)
	assert.Equal(t, 950, cfg.Maps.DailyLimit)
	assert.Equal(t, 24*time.Hour, cfg.Maps.CacheTTL)
	assert.Equal(t, 10000, cfg.Maps.SearchRadius)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "9000"
  cors_hosts: ["http://localhost:3000"]
firebase:
  project_id: from-file
store:
  driver: memory
discovery:
  page_size: 5
maps:
  cache_ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_HOSTS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSHosts)
	assert.Equal(t, "from-file", cfg.Firebase.ProjectID)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Discovery.PageSize)
	assert.Equal(t, time.Hour, cfg.Maps.CacheTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "playmatch-dev")

	t.Setenv("STORE_DRIVER", "postgres")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("DISCOVERY_PAGE_SIZE", "ten")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("DISCOVERY_PAGE_SIZE", "0")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidateRequiresProject(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	assert.Error(t, cfg.Validate())

	cfg.Firebase.ProjectID = "playmatch-dev"
	assert.NoError(t, cfg.Validate())
}
