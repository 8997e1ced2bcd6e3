// Package config loads sharechart settings from defaults, a YAML file and
// SHARECHART_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/sharechart/pkg/storage"
	"github.com/Sumatoshi-tech/sharechart/pkg/uistate"
)

// Chart engine names.
const (
	EngineECharts = "echarts"
	EngineRaster  = "raster"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const maxPort = 65535

// Sentinel validation errors.
var (
	ErrInvalidPort        = errors.New("invalid server port")
	ErrInvalidTimeout     = errors.New("timeout must be positive")
	ErrInvalidBackend     = errors.New("invalid storage backend")
	ErrInvalidEngine      = errors.New("invalid render engine")
	ErrInvalidSize        = errors.New("render size must be positive")
	ErrInvalidCacheSize   = errors.New("invalid cache size")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0,1]")
)

// Config is the top-level configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Source    SourceConfig    `mapstructure:"source"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Render    RenderConfig    `mapstructure:"render"`
	Cache     CacheConfig     `mapstructure:"cache"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// StorageConfig selects where UI state is persisted.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// SourceConfig configures the live data fetch. An empty endpoint disables
// it.
type SourceConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DatasetConfig names an optional override file merged at startup.
type DatasetConfig struct {
	File string `mapstructure:"file"`
}

// RenderConfig holds chart engine settings.
type RenderConfig struct {
	Engine            string        `mapstructure:"engine"`
	Width             int           `mapstructure:"width"`
	Height            int           `mapstructure:"height"`
	AnimationDuration time.Duration `mapstructure:"animation_duration"`
	Easing            string        `mapstructure:"easing"`
}

// CacheConfig bounds the raster render cache. MaxSize is a human-readable
// byte size such as "16MB"; "0" disables the cache.
type CacheConfig struct {
	MaxSize string `mapstructure:"max_size"`
}

// MaxBytes parses MaxSize.
func (c CacheConfig) MaxBytes() (uint64, error) {
	n, err := humanize.ParseBytes(c.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidCacheSize, c.MaxSize, err)
	}

	return n, nil
}

// UIConfig holds the state used when nothing was persisted yet.
type UIConfig struct {
	Mode    string `mapstructure:"mode"`
	Theme   string `mapstructure:"theme"`
	Country string `mapstructure:"country"`
	Year    int    `mapstructure:"year"`
}

// State converts the UI defaults.
func (u UIConfig) State() (uistate.State, error) {
	mode, err := uistate.ParseMode(u.Mode)
	if err != nil {
		return uistate.State{}, err
	}

	theme, err := uistate.ParseTheme(u.Theme)
	if err != nil {
		return uistate.State{}, err
	}

	if u.Year <= 0 {
		return uistate.State{}, fmt.Errorf("%w: %d", uistate.ErrInvalidYear, u.Year)
	}

	return uistate.State{Mode: mode, Theme: theme, Country: u.Country, Year: u.Year}, nil
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Insecure     bool    `mapstructure:"insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	Environment  string  `mapstructure:"environment"`
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}

	for name, d := range map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"source.timeout":          c.Source.Timeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s=%s", ErrInvalidTimeout, name, d)
		}
	}

	switch c.Storage.Backend {
	case storage.BackendMemory, storage.BackendFile, storage.BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Storage.Backend)
	}

	switch c.Render.Engine {
	case EngineECharts, EngineRaster:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEngine, c.Render.Engine)
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Render.Width, c.Render.Height)
	}

	if _, err := c.Cache.MaxBytes(); err != nil {
		return err
	}

	if _, err := c.UI.State(); err != nil {
		return fmt.Errorf("ui defaults: %w", err)
	}

	switch c.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}
