package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sharechart/internal/mcp"
	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(g *Globals) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the market share dataset as tools that AI agents
can discover and invoke:
  - sharechart_snapshot: brand breakdown for a country and year
  - sharechart_summary: top or indexed brand headline
  - sharechart_datasets: available countries, years and data source
  - sharechart_render: bar or pie chart as SVG`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}

			obsCfg, err := g.observabilityConfig(cfg, observability.ModeMCP)
			if err != nil {
				return err
			}

			obsCfg.LogJSON = true

			if debug {
				obsCfg.LogLevel = slog.LevelDebug
			}

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return fmt.Errorf("init observability: %w", err)
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
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

			store, err := openDataset(cobraCmd.Context(), cfg, providers.Logger)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Store:   store,
				Logger:  providers.Logger,
				Metrics: red,
				Charts:  charts,
				Tracer:  providers.Tracer,
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
