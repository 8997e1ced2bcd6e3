// Package echarts draws charts as go-echarts HTML with hover listeners that
// drive the page summary card.
package echarts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/event"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/sharechart/pkg/colorutil"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/plotpage"
	"github.com/Sumatoshi-tech/sharechart/pkg/shadow"
)

// Name identifies this engine.
const Name = "echarts"

const (
	// BarWidthRatio is the bar width as a share of its category band.
	BarWidthRatio = 0.6
	// BarMaxWidth caps the bar width in pixels.
	BarMaxWidth  = 56
	pieRadius    = "68%"
	defaultWidth = "100%"
	defaultHgt   = "460px"
)

// Easing names accepted in configs and their echarts equivalents.
var easingNames = map[string]string{
	"easeOutQuart":   "quarticOut",
	"easeInQuart":    "quarticIn",
	"easeInOutQuart": "quarticInOut",
	"easeOutCubic":   "cubicOut",
	"linear":         "linear",
}

// Hover handlers call into the page script.
const (
	highlightJS = `function (params) { if (window.sharechart) { window.sharechart.highlight(params.dataIndex); } }`
	clearJS     = `function () { if (window.sharechart) { window.sharechart.highlight(null); } }`
)

// Engine builds go-echarts charts.
type Engine struct {
	width  string
	height string
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSize sets CSS dimensions of the chart element.
func WithSize(width, height string) Option {
	return func(e *Engine) {
		e.width = width
		e.height = height
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates the engine.
func New(options ...Option) *Engine {
	e := &Engine{width: defaultWidth, height: defaultHgt, logger: slog.Default()}

	for _, opt := range options {
		opt(e)
	}

	return e
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return Name }

// Create implements engine.Engine.
func (e *Engine) Create(ctx context.Context, cfg engine.Config) (engine.Chart, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	cOpts := plotpage.NewChartOpts(plotpage.ParseTheme(cfg.Theme))

	width, height := e.width, e.height
	if cfg.Width > 0 && cfg.Height > 0 {
		width, height = strconv.Itoa(cfg.Width)+"px", strconv.Itoa(cfg.Height)+"px"
	}

	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(cOpts.Init(width, height)),
		charts.WithTooltipOpts(cOpts.Tooltip(cfg.Tooltip)),
		charts.WithLegendOpts(cOpts.Legend(cfg.Legend)),
		charts.WithEventListeners(
			event.Listener{EventName: "mouseover", Handler: opts.FuncOpts(highlightJS)},
			event.Listener{EventName: "click", Handler: opts.FuncOpts(highlightJS)},
			event.Listener{EventName: "mouseout", Handler: opts.FuncOpts(clearJS)},
			event.Listener{EventName: "globalout", Handler: opts.FuncOpts(clearJS)},
		),
	}

	visitor := animationVisitor{duration: cfg.Animation.Duration.Milliseconds(), easing: easing(cfg.Animation.Easing)}

	var r renderer

	switch cfg.Type {
	case engine.TypeBar:
		r = buildBar(cOpts, cfg, global, visitor)
	case engine.TypePie:
		r = buildPie(cOpts, cfg, global, visitor)
	}

	e.logger.DebugContext(ctx, "echarts chart created", "type", cfg.Type, "elements", len(cfg.Labels))

	return &Chart{chart: r, kind: cfg.Type}, nil
}

type renderer interface {
	Render(w io.Writer) error
}

func buildBar(cOpts *plotpage.ChartOpts, cfg engine.Config, global []charts.GlobalOpts, v animationVisitor) renderer {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(global,
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithXAxisOpts(cOpts.XAxis("")),
		charts.WithYAxisOpts(cOpts.YAxis("")),
	)...)

	bar.SetXAxis(cfg.Labels)

	data := make([]opts.BarData, len(cfg.Labels))
	for i, label := range cfg.Labels {
		data[i] = opts.BarData{Name: label, Value: cfg.Dataset.Values[i], ItemStyle: itemStyle(cfg.Dataset, i)}
	}

	bar.AddSeries(cfg.Dataset.Label, data,
		charts.WithBarChartOpts(opts.BarChart{BarWidth: percent(BarWidthRatio)}),
		func(s *charts.SingleSeries) { s.BarMaxWidth = strconv.Itoa(BarMaxWidth) },
	)

	// Series paint in order, so the shadows go first.
	if cfg.HasPlugin(shadow.ID) {
		bar.MultiSeries = append(shadowSeries(cfg), bar.MultiSeries...)
	}

	bar.Accept(v)

	return bar
}

// shadowSeries draws one depth quad per bar as a custom series. The quad is
// computed in the browser from the laid-out bar, mirroring shadow.QuadFor.
func shadowSeries(cfg engine.Config) charts.MultiSeries {
	fills := make([]string, len(cfg.Labels))
	data := make([]opts.CustomData, len(cfg.Labels))

	for i := range cfg.Labels {
		fills[i] = "'" + colorutil.Shade(pick(cfg.Dataset.Colors, i), shadow.FillShade) + "'"
		data[i] = opts.CustomData{Value: []any{i, cfg.Dataset.Values[i]}}
	}

	custom := charts.NewCustom()
	custom.AddSeries(shadow.ID, data,
		charts.WithCustomChartOpts(opts.CustomChart{RenderItem: opts.FuncOpts(renderQuadJS(fills))}),
	)

	return custom.MultiSeries
}

func renderQuadJS(fills []string) string {
	return fmt.Sprintf(`function (params, api) {
	var fills = [%s];
	var i = api.value(0);
	var top = api.coord([i, api.value(1)]);
	var base = api.coord([i, 0]);
	var w = Math.min(api.size([1, 0])[0] * %g, %d);
	var d = Math.max(%d, Math.min(%d, Math.floor(w * %g + 0.5)));
	var skew = d * %g, h = base[1] - top[1], half = w / 2, x = top[0];
	return {
		type: 'polygon',
		silent: true,
		shape: { points: [
			[x - half + skew, base[1] + d],
			[x + half + skew, base[1] + d],
			[x + half - h + skew, top[1] + d],
			[x - half - h + skew, top[1] + d]
		] },
		style: { fill: fills[params.dataIndex] }
	};
}`, strings.Join(fills, ", "), BarWidthRatio, BarMaxWidth,
		shadow.MinDepth, shadow.MaxDepth, shadow.DepthRatio, shadow.SkewRatio)
}

func percent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', -1, 64) + "%"
}

func buildPie(_ *plotpage.ChartOpts, cfg engine.Config, global []charts.GlobalOpts, v animationVisitor) renderer {
	pie := charts.NewPie()
	pie.SetGlobalOptions(global...)

	data := make([]opts.PieData, len(cfg.Labels))
	for i, label := range cfg.Labels {
		data[i] = opts.PieData{Name: label, Value: cfg.Dataset.Values[i], ItemStyle: itemStyle(cfg.Dataset, i)}
	}

	pie.AddSeries(cfg.Dataset.Label, data,
		charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
	)
	pie.Accept(v)

	return pie
}

func itemStyle(ds engine.Dataset, i int) *opts.ItemStyle {
	return &opts.ItemStyle{
		Color:       pick(ds.Colors, i),
		BorderColor: pick(ds.Borders, i),
		BorderWidth: float32(ds.BorderWidth),
	}
}

func pick(xs []string, i int) string {
	if i < len(xs) {
		return xs[i]
	}

	return ""
}

func easing(name string) string {
	if e, ok := easingNames[name]; ok {
		return e
	}

	return name
}

// Chart is a built go-echarts chart.
type Chart struct {
	engine.Handle

	chart renderer
	kind  engine.Type
}

// Type returns the chart type.
func (c *Chart) Type() engine.Type { return c.kind }

// Render writes the go-echarts HTML document.
func (c *Chart) Render(w io.Writer) error {
	err := c.Check()
	if err != nil {
		return err
	}

	err = c.chart.Render(w)
	if err != nil {
		return fmt.Errorf("render %s chart: %w", c.kind, err)
	}

	return nil
}

// animationVisitor injects animation options that go-echarts does not
// serialize on its own.
type animationVisitor struct {
	charts.BaseConfigurationVisitor

	duration int64
	easing   string
}

func (v animationVisitor) Visit(chart map[string]any) {
	if v.duration > 0 {
		chart["animationDuration"] = v.duration
	}

	if v.easing != "" {
		chart["animationEasing"] = v.easing
	}
}
