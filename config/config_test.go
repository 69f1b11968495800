package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
app_name: clientforge
run_mode: debug

logger:
  level: 4
  format: json
  output: stdout

data:
  database:
    driver: sqlite3
    source: ":memory:"
    max_open_conns: 8
    conn_max_lifetime: 5m
  redis:
    addr: localhost:6379
    db: 1

feature:
  env_prefix: CF_FEATURE_
  flags:
    lead-scoring: true
    dark-mode: false

registry:
  init_timeout: 10s
  shutdown_timeout: 30s
  strict_dependencies: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "clientforge", cfg.AppName)
	assert.Equal(t, "debug", cfg.RunMode)

	require.NotNil(t, cfg.Logger)
	assert.Equal(t, 4, cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)

	require.NotNil(t, cfg.Data)
	assert.Equal(t, "sqlite3", cfg.Data.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Data.Database.Source)
	assert.Equal(t, 8, cfg.Data.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Data.Database.ConnMaxLifetime)
	assert.Equal(t, "localhost:6379", cfg.Data.Redis.Addr)
	assert.Equal(t, 1, cfg.Data.Redis.DB)

	require.NotNil(t, cfg.Feature)
	assert.Equal(t, "CF_FEATURE_", cfg.Feature.EnvPrefix)
	assert.Equal(t, map[string]bool{"lead-scoring": true, "dark-mode": false}, cfg.Feature.Flags)

	require.NotNil(t, cfg.Registry)
	assert.Equal(t, "10s", cfg.Registry.InitTimeout)
	assert.Equal(t, "30s", cfg.Registry.ShutdownTimeout)
	assert.True(t, cfg.Registry.StrictDependencies)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWatch_RequiresFile(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Watch(func(*Config) {}))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	changed := make(chan *Config, 1)
	require.NoError(t, cfg.Watch(func(next *Config) {
		select {
		case changed <- next:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte("app_name: renamed\n"), 0o600))

	select {
	case next := <-changed:
		assert.Equal(t, "renamed", next.AppName)
	case <-time.After(2 * time.Second):
		t.Fatal("config change was not observed")
	}
}
