package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sharechart/pkg/config"
	"github.com/Sumatoshi-tech/sharechart/pkg/uistate"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".sharechart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultHost, cfg.Server.Host)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, config.DefaultStorageBackend, cfg.Storage.Backend)
	assert.Equal(t, config.DefaultSourceEndpoint, cfg.Source.Endpoint)
	assert.Equal(t, config.DefaultSourceTimeout, cfg.Source.Timeout)
	assert.Equal(t, config.EngineECharts, cfg.Render.Engine)
	assert.Equal(t, 900*time.Millisecond, cfg.Render.AnimationDuration)
	assert.Equal(t, "easeOutQuart", cfg.Render.Easing)
	assert.Equal(t, config.LogFormatText, cfg.Logging.Format)

	state, err := cfg.UI.State()
	require.NoError(t, err)
	assert.Equal(t, uistate.Default(), state)

	size, err := cfg.Cache.MaxBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(16_000_000), size)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `server:
  port: 9090
  read_timeout: 3s
storage:
  backend: sqlite
  path: /tmp/state.db
source:
  endpoint: ""
render:
  engine: raster
  width: 640
  height: 360
cache:
  max_size: 2MiB
ui:
  mode: pie
  theme: light
  country: India
  year: 2023
logging:
  format: json
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Empty(t, cfg.Source.Endpoint)
	assert.Equal(t, config.EngineRaster, cfg.Render.Engine)
	assert.Equal(t, 640, cfg.Render.Width)
	assert.Equal(t, config.LogFormatJSON, cfg.Logging.Format)

	size, err := cfg.Cache.MaxBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(2<<20), size)

	state, err := cfg.UI.State()
	require.NoError(t, err)
	assert.Equal(t, uistate.State{Mode: uistate.ModePie, Theme: uistate.ThemeLight, Country: "India", Year: 2023}, state)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SHARECHART_SERVER_PORT", "7070")
	t.Setenv("SHARECHART_STORAGE_BACKEND", "memory")

	cfg, err := config.LoadConfig(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"port", "server:\n  port: 70000\n", config.ErrInvalidPort},
		{"timeout", "source:\n  timeout: 0s\n", config.ErrInvalidTimeout},
		{"backend", "storage:\n  backend: redis\n", config.ErrInvalidBackend},
		{"engine", "render:\n  engine: canvas\n", config.ErrInvalidEngine},
		{"size", "render:\n  width: 0\n", config.ErrInvalidSize},
		{"cache", "cache:\n  max_size: lots\n", config.ErrInvalidCacheSize},
		{"mode", "ui:\n  mode: line\n", uistate.ErrInvalidMode},
		{"theme", "ui:\n  theme: blue\n", uistate.ErrInvalidTheme},
		{"year", "ui:\n  year: 0\n", uistate.ErrInvalidYear},
		{"log format", "logging:\n  format: xml\n", config.ErrInvalidLogFormat},
		{"ratio", "telemetry:\n  sample_ratio: 2\n", config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}
