// Package commands implements the sharechart subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/sharechart/pkg/config"
	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
	"github.com/Sumatoshi-tech/sharechart/pkg/version"
)

// Globals holds the persistent root flags.
type Globals struct {
	ConfigPath  string
	DatasetFile string
	Verbose     bool
	Quiet       bool
}

// load reads and validates the configuration.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if g.DatasetFile != "" {
		cfg.Dataset.File = g.DatasetFile
	}

	return cfg, nil
}

// observabilityConfig maps the loaded configuration and root flags onto the
// observability settings for mode.
func (g *Globals) observabilityConfig(cfg *config.Config, mode observability.AppMode) (observability.Config, error) {
	obs := observability.DefaultConfig()
	obs.ServiceVersion = version.Version
	obs.Environment = cfg.Telemetry.Environment
	obs.Mode = mode
	obs.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obs.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obs.OTLPInsecure = cfg.Telemetry.Insecure
	obs.SampleRatio = cfg.Telemetry.SampleRatio
	obs.LogJSON = cfg.Logging.Format == config.LogFormatJSON

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return obs, err
	}

	switch {
	case g.Verbose:
		level = slog.LevelDebug
	case g.Quiet:
		level = slog.LevelError
	}

	obs.LogLevel = level

	return obs, nil
}

// openDataset builds the store and merges the configured override file.
func openDataset(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dataset.Store, error) {
	store := dataset.NewStore()

	if cfg.Dataset.File == "" {
		return store, nil
	}

	payload, err := dataset.LoadFile(cfg.Dataset.File)
	if err != nil {
		return nil, err
	}

	store.MergeOverride(payload)

	logger.InfoContext(ctx, "dataset override loaded",
		"file", cfg.Dataset.File, "countries", len(payload))

	return store, nil
}
