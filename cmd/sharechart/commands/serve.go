package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sharechart/internal/controller"
	"github.com/Sumatoshi-tech/sharechart/internal/rendercache"
	"github.com/Sumatoshi-tech/sharechart/internal/server"
	"github.com/Sumatoshi-tech/sharechart/pkg/config"
	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine/echarts"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine/raster"
	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
	"github.com/Sumatoshi-tech/sharechart/pkg/storage"
	"github.com/Sumatoshi-tech/sharechart/pkg/uistate"
)

// errFetchPending is reported by /readyz until the startup fetch finished.
var errFetchPending = errors.New("startup fetch pending")

type serveOptions struct {
	host    string
	port    int
	engine  string
	offline bool
}

// NewServeCommand creates the HTTP server command.
func NewServeCommand(g *Globals) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive chart over HTTP",
		Long: `Serve the interactive market share chart.

The page shows a bar or pie chart for the selected country and year. Selections
are persisted in the configured storage backend. Live data is fetched once at
startup from source.endpoint; on failure the built-in demo data stays.

Endpoints:
  GET  /                      chart page
  GET  /chart.png, /chart.svg raster image of the current state
  GET  /api/snapshot|summary|datasets
  GET  /healthz, /readyz, /metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (overrides server.port)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "chart engine: echarts or raster (overrides render.engine)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "skip the live data fetch")

	return cmd
}

func runServe(ctx context.Context, g *Globals, opts serveOptions) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	applyServeFlags(cfg, opts)

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	obsCfg, err := g.observabilityConfig(cfg, observability.ModeServe)
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	logger := providers.Logger

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return err
	}

	charts, err := observability.NewChartMetrics(providers.Meter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	defer func() {
		closeErr := kv.Close()
		if closeErr != nil {
			logger.Warn("storage close failed", "error", closeErr)
		}
	}()

	store, err := openDataset(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ctrl, err := newController(ctx, cfg, kv, store, charts, logger)
	if err != nil {
		return err
	}

	var src controller.Source
	if !opts.offline {
		src = dataset.NewFetcher(cfg.Source.Endpoint, cfg.Source.Timeout, dataset.WithLogger(logger))
	}

	ctrl.Startup(ctx, src)

	cache, err := newRenderCache(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(server.Deps{
		Controller:      ctrl,
		Cache:           cache,
		Width:           cfg.Render.Width,
		Height:          cfg.Render.Height,
		Metrics:         charts,
		RED:             red,
		Tracer:          providers.Tracer,
		MetricsHandler:  providers.MetricsHandler,
		Ready:           []observability.ReadyCheck{fetchReady(ctrl)},
		Logger:          logger,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	return srv.ListenAndServe(ctx, cfg.Server.Addr())
}

func applyServeFlags(cfg *config.Config, opts serveOptions) {
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}

	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	if opts.engine != "" {
		cfg.Render.Engine = opts.engine
	}
}

// newEngine returns the chart engine named by render.engine.
func newEngine(cfg *config.Config, logger *slog.Logger) engine.Engine {
	if cfg.Render.Engine == config.EngineRaster {
		return raster.New(raster.WithSize(cfg.Render.Width, cfg.Render.Height), raster.WithLogger(logger))
	}

	return echarts.New(echarts.WithLogger(logger))
}

// newController restores the persisted state over the configured UI
// defaults. An unreadable backend is logged and the defaults are used.
func newController(
	ctx context.Context,
	cfg *config.Config,
	kv uistate.KV,
	store *dataset.Store,
	charts *observability.ChartMetrics,
	logger *slog.Logger,
) (*controller.Controller, error) {
	base, err := cfg.UI.State()
	if err != nil {
		return nil, fmt.Errorf("ui defaults: %w", err)
	}

	initial, err := uistate.LoadOver(ctx, kv, base)
	if err != nil {
		logger.WarnContext(ctx, "restore ui state failed, using defaults", "error", err)
	}

	return controller.New(controller.Options{
		Store:   store,
		KV:      kv,
		Slot:    engine.NewSlot(newEngine(cfg, logger)),
		Initial: initial,
		Animation: engine.Animation{
			Duration: cfg.Render.AnimationDuration,
			Easing:   cfg.Render.Easing,
		},
		Width:   cfg.Render.Width,
		Height:  cfg.Render.Height,
		Metrics: charts,
		Logger:  logger,
	}), nil
}

// newRenderCache returns nil when cache.max_size is zero.
func newRenderCache(cfg *config.Config, logger *slog.Logger) (*rendercache.Cache, error) {
	maxBytes, err := cfg.Cache.MaxBytes()
	if err != nil {
		return nil, err
	}

	if maxBytes == 0 {
		logger.Info("render cache disabled")

		return nil, nil //nolint:nilnil // a nil cache disables caching.
	}

	logger.Debug("render cache enabled", "max_size", humanize.IBytes(maxBytes))

	return rendercache.New(int64(maxBytes)), nil //nolint:gosec // bounded by humanize parsing.
}

func fetchReady(ctrl *controller.Controller) observability.ReadyCheck {
	return func(context.Context) error {
		select {
		case <-ctrl.Fetched():
			return nil
		default:
			return errFetchPending
		}
	}
}
