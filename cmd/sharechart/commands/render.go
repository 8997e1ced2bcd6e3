package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sharechart/internal/controller"
	"github.com/Sumatoshi-tech/sharechart/pkg/config"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine/echarts"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine/raster"
	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
	"github.com/Sumatoshi-tech/sharechart/pkg/uistate"
)

// formatHTML selects the echarts engine in the render command.
const formatHTML = "html"

// stdoutPath writes the chart to standard output.
const stdoutPath = "-"

type renderOptions struct {
	selection
	format string
	output string
	width  int
	height int
}

// selection is the chart state chosen on the command line.
type selection struct {
	country string
	year    int
	mode    string
	theme   string
}

func (s *selection) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.country, "country", "", "country (default ui.country)")
	cmd.Flags().IntVar(&s.year, "year", 0, "year (default ui.year)")
	cmd.Flags().StringVar(&s.mode, "mode", "", "chart type: bar or pie (default ui.mode)")
	cmd.Flags().StringVar(&s.theme, "theme", "", "theme: dark or light (default ui.theme)")
}

// state applies the flags over the configured UI defaults.
func (s *selection) state(cfg *config.Config) (uistate.State, error) {
	st, err := cfg.UI.State()
	if err != nil {
		return st, err
	}

	if s.country != "" {
		st.Country = s.country
	}

	if s.year != 0 {
		st.Year = s.year
	}

	if s.mode != "" {
		st.Mode, err = uistate.ParseMode(s.mode)
		if err != nil {
			return st, err
		}
	}

	if s.theme != "" {
		st.Theme, err = uistate.ParseTheme(s.theme)
		if err != nil {
			return st, err
		}
	}

	return st, nil
}

// NewRenderCommand creates the render command.
func NewRenderCommand(g *Globals) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw one chart to a file",
		Long: `Draw the chart for a country and year.

Formats png, svg and pdf use the raster engine; html writes a standalone
echarts page.

Examples:
  sharechart render --country India --year 2024 -o india.png
  sharechart render --mode pie --format svg -o - > global.svg`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.Context(), g, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(raster.FormatPNG), "output format: png, svg, pdf or html")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default chart.<format>)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "width in pixels (default render.width)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "height in pixels (default render.height)")

	return cmd
}

func runRender(ctx context.Context, g *Globals, opts renderOptions, stdout, stderr io.Writer) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	obsCfg, err := g.observabilityConfig(cfg, observability.ModeCLI)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(stderr, obsCfg)

	state, err := opts.state(cfg)
	if err != nil {
		return err
	}

	width, height := cfg.Render.Width, cfg.Render.Height
	if opts.width > 0 {
		width = opts.width
	}

	if opts.height > 0 {
		height = opts.height
	}

	var eng engine.Engine

	if opts.format == formatHTML {
		eng = echarts.New(echarts.WithLogger(logger))
	} else {
		format, formatErr := raster.ParseFormat(opts.format)
		if formatErr != nil {
			return formatErr
		}

		eng = raster.New(raster.WithFormat(format), raster.WithSize(width, height), raster.WithLogger(logger))
	}

	store, err := openDataset(ctx, cfg, logger)
	if err != nil {
		return err
	}

	anim := engine.Animation{Duration: cfg.Render.AnimationDuration, Easing: cfg.Render.Easing}
	chartCfg := controller.BuildConfig(state, store.Get(state.Country, state.Year), anim, width, height)

	chart, err := eng.Create(ctx, chartCfg)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	defer chart.Destroy()

	var buf bytes.Buffer

	err = chart.Render(&buf)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	output := opts.output
	if output == "" {
		output = "chart." + opts.format
	}

	if output == stdoutPath {
		_, err = stdout.Write(buf.Bytes())
		if err != nil {
			return fmt.Errorf("write chart: %w", err)
		}

		return nil
	}

	err = os.WriteFile(output, buf.Bytes(), 0o600)
	if err != nil {
		return fmt.Errorf("write chart: %w", err)
	}

	if !g.Quiet {
		fmt.Fprintf(stderr, "wrote %s (%s, %s %s %d)\n",
			output, humanize.Bytes(uint64(buf.Len())), state.Country, state.Mode, state.Year)
	}

	return nil
}
