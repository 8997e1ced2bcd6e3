package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".sharechart"
	configType      = "yaml"
	envPrefix       = "SHARECHART"
	envKeySeparator = "_"
)

// LoadConfig loads configuration from defaults, the config file and the
// environment. An explicit configPath must exist; otherwise .sharechart.yaml
// is searched in the working directory and $HOME, and a missing file is not
// an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("server.host", DefaultHost)
	viperCfg.SetDefault("server.port", DefaultPort)
	viperCfg.SetDefault("server.read_timeout", DefaultReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultIdleTimeout)
	viperCfg.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	viperCfg.SetDefault("storage.backend", DefaultStorageBackend)
	viperCfg.SetDefault("storage.path", DefaultStoragePath)

	viperCfg.SetDefault("source.endpoint", DefaultSourceEndpoint)
	viperCfg.SetDefault("source.timeout", DefaultSourceTimeout)

	viperCfg.SetDefault("dataset.file", "")

	viperCfg.SetDefault("render.engine", DefaultRenderEngine)
	viperCfg.SetDefault("render.width", DefaultRenderWidth)
	viperCfg.SetDefault("render.height", DefaultRenderHeight)
	viperCfg.SetDefault("render.animation_duration", DefaultAnimationDuration)
	viperCfg.SetDefault("render.easing", DefaultAnimationEasing)

	viperCfg.SetDefault("cache.max_size", DefaultCacheMaxSize)

	viperCfg.SetDefault("ui.mode", DefaultUIMode)
	viperCfg.SetDefault("ui.theme", DefaultUITheme)
	viperCfg.SetDefault("ui.country", DefaultUICountry)
	viperCfg.SetDefault("ui.year", DefaultUIYear)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.environment", "")
}
