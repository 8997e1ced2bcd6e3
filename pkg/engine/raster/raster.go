// Package raster draws charts to PNG, SVG or PDF with gonum/plot. Bar charts
// run the depth shadow hook before the bars are painted, and every chart
// records per-element hit regions for an HTML image map.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/Sumatoshi-tech/sharechart/pkg/colorutil"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/plotpage"
)

// Name identifies this engine.
const Name = "raster"

// Format is an output encoding.
type Format string

// Supported formats.
const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// ErrUnsupportedFormat is returned for an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported raster format")

// Defaults.
const (
	DefaultWidth  = 800
	DefaultHeight = 450
	// DPI is the pixel density of PNG output. Hit regions use this scale.
	DPI = vgimg.DefaultDPI

	pointsPerInch   = 72
	dataWidthRatio  = 0.85
	barFillRatio    = 0.7
	maxBarWidthPx   = 80
	headroom        = 1.1
	pieRadiusRatio  = 0.42
	arcStep         = math.Pi / 90
	categoryPadding = 0.5
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// Engine renders charts with gonum/plot.
type Engine struct {
	format Format
	width  int
	height int
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(e *Engine) { e.format = f }
}

// WithSize sets the default output size in pixels.
func WithSize(width, height int) Option {
	return func(e *Engine) {
		e.width = width
		e.height = height
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates the engine. PNG is the default format.
func New(options ...Option) *Engine {
	e := &Engine{format: FormatPNG, width: DefaultWidth, height: DefaultHeight, logger: slog.Default()}

	for _, opt := range options {
		opt(e)
	}

	return e
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return Name }

// Format returns the output format.
func (e *Engine) Format() Format { return e.format }

// Create implements engine.Engine. The chart is drawn immediately; Render
// only copies the encoded bytes.
func (e *Engine) Create(ctx context.Context, cfg engine.Config) (engine.Chart, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	width, height := e.width, e.height
	if cfg.Width > 0 && cfg.Height > 0 {
		width, height = cfg.Width, cfg.Height
	}

	chart := &Chart{kind: cfg.Type, format: e.format, width: width, height: height}
	s := newScale(height)

	theme := plotpage.GetThemeConfig(plotpage.ParseTheme(cfg.Theme))
	p := plot.New()
	applyTheme(p, theme)

	switch cfg.Type {
	case engine.TypeBar:
		err = addBars(p, cfg, theme, s, chart, float64(width))
	case engine.TypePie:
		addPie(p, cfg, s, chart)
	}

	if err != nil {
		return nil, err
	}

	data, err := encode(p, e.format, pxToLength(float64(width)), pxToLength(float64(height)))
	if err != nil {
		return nil, err
	}

	chart.data = data

	e.logger.DebugContext(ctx, "raster chart created",
		"type", cfg.Type, "format", e.format, "bytes", len(data), "regions", len(chart.regions))

	return chart, nil
}

func encode(p *plot.Plot, f Format, w, h vg.Length) ([]byte, error) {
	var canvas vg.CanvasWriterTo

	switch f {
	case FormatPNG:
		canvas = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(DPI))}
	case FormatSVG:
		canvas = vgsvg.New(w, h)
	case FormatPDF:
		canvas = vgpdf.New(w, h)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}

	p.Draw(draw.New(canvas))

	var buf bytes.Buffer

	_, err := canvas.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}

	return buf.Bytes(), nil
}

func applyTheme(p *plot.Plot, theme plotpage.ThemeConfig) {
	text := colorutil.ToRGBA(theme.ChartText)
	muted := colorutil.ToRGBA(theme.ChartTextMuted)
	axis := colorutil.ToRGBA(theme.ChartAxis)

	p.BackgroundColor = colorutil.ToRGBA(theme.Surface)
	p.Title.TextStyle.Color = text
	p.Legend.TextStyle.Color = text
	p.Legend.Top = true

	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.Color = axis
		a.Tick.Color = axis
		a.Tick.Label.Color = muted
		a.Label.TextStyle.Color = muted
	}
}

// Chart is an encoded raster chart.
type Chart struct {
	engine.Handle

	kind    engine.Type
	format  Format
	width   int
	height  int
	data    []byte
	regions []engine.Region
}

// Render writes the encoded image.
func (c *Chart) Render(w io.Writer) error {
	err := c.Check()
	if err != nil {
		return err
	}

	_, err = w.Write(c.data)
	if err != nil {
		return fmt.Errorf("write %s chart: %w", c.format, err)
	}

	return nil
}

// Regions implements engine.Mapper. Coordinates are PNG pixels.
func (c *Chart) Regions() []engine.Region {
	out := make([]engine.Region, len(c.regions))
	copy(out, c.regions)

	return out
}

// Format returns the output format.
func (c *Chart) Format() Format { return c.format }

// Size returns the output size in pixels.
func (c *Chart) Size() (width, height int) { return c.width, c.height }

// Bytes returns a copy of the encoded image.
func (c *Chart) Bytes() []byte { return bytes.Clone(c.data) }

// scale converts between canvas lengths (points, y up) and output pixels
// (y down).
type scale struct {
	heightPx float64
}

func newScale(heightPx int) scale { return scale{heightPx: float64(heightPx)} }

func (s scale) px(l vg.Length) float64 { return float64(l) * DPI / pointsPerInch }

func (s scale) x(l vg.Length) float64 { return s.px(l) }

func (s scale) y(l vg.Length) float64 { return s.heightPx - s.px(l) }

func pxToLength(px float64) vg.Length { return vg.Length(px * pointsPerInch / DPI) }

func toColors(cs []string) []color.Color {
	out := make([]color.Color, len(cs))
	for i, c := range cs {
		out[i] = colorutil.ToRGBA(c)
	}

	return out
}

func pick(cs []color.Color, i int) color.Color {
	if i < len(cs) {
		return cs[i]
	}

	return color.Black
}

func sum(values []float64) float64 {
	total := 0.0

	for _, v := range values {
		if v > 0 {
			total += v
		}
	}

	return total
}

func roundPx(v float64) int { return int(math.Round(v)) }

func addGrid(p *plot.Plot, theme plotpage.ThemeConfig) {
	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = colorutil.ToRGBA(theme.ChartGrid)
	p.Add(grid)
}
