package raster

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Sumatoshi-tech/sharechart/pkg/colorutil"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/plotpage"
	"github.com/Sumatoshi-tech/sharechart/pkg/shadow"
)

const (
	shapeRect = "rect"
	shapePoly = "poly"
	noDataTxt = "No data"
)

// barWidthPx is the drawn width of one bar for n categories on an image
// widthPx pixels wide.
func barWidthPx(widthPx float64, n int) float64 {
	if n == 0 {
		return maxBarWidthPx
	}

	perCategory := widthPx * dataWidthRatio / float64(n)

	return min(perCategory*barFillRatio, maxBarWidthPx)
}

// addBars lays out one bar plotter per category so each bar keeps its own
// palette color. Plotters are drawn in insertion order: grid, shadow, bars,
// then the region recorder.
func addBars(p *plot.Plot, cfg engine.Config, theme plotpage.ThemeConfig, s scale, chart *Chart, widthPx float64) error {
	values := cfg.Dataset.Values
	n := len(values)

	p.Y.Min = 0
	p.Y.Tick.Marker = percentTicks{}

	addGrid(p, theme)

	if n == 0 {
		p.Title.Text = noDataTxt
		p.X.Min, p.X.Max = 0, 1
		p.Y.Max = 1

		return nil
	}

	p.NominalX(cfg.Labels...)

	width := pxToLength(barWidthPx(widthPx, n))
	fills := toColors(cfg.Dataset.Colors)
	borders := toColors(cfg.Dataset.Borders)
	borderWidth := pxToLength(cfg.Dataset.BorderWidth)

	if cfg.HasPlugin(shadow.ID) {
		p.Add(&shadowPlotter{values: values, colors: cfg.Dataset.Colors, width: width, scale: s})
	}

	for i, v := range values {
		bar, err := plotter.NewBarChart(plotter.Values{v}, width)
		if err != nil {
			return fmt.Errorf("bar %d: %w", i, err)
		}

		bar.XMin = float64(i)
		bar.Color = pick(fills, i)
		bar.LineStyle.Color = pick(borders, i)
		bar.LineStyle.Width = borderWidth

		if borderWidth == 0 {
			bar.LineStyle.Color = nil
		}

		p.Add(bar)
	}

	p.Add(&barRegions{values: values, width: width, scale: s, chart: chart})

	maxValue := 0.0
	for _, v := range values {
		maxValue = max(maxValue, v)
	}

	if maxValue == 0 {
		maxValue = 1
	}

	p.X.Min = -categoryPadding
	p.X.Max = float64(n-1) + categoryPadding
	p.Y.Max = maxValue * headroom

	return nil
}

// shadowPlotter paints the depth shadows behind the bars. The geometry is
// computed in output pixels and mapped back onto the canvas.
type shadowPlotter struct {
	values []float64
	colors []string
	width  vg.Length
	scale  scale
}

// Plot implements plot.Plotter.
func (sp *shadowPlotter) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	bars := make([]shadow.Bar, len(sp.values))

	for i, v := range sp.values {
		top := sp.scale.y(trY(v))
		base := sp.scale.y(trY(0))
		clr := "#000000"

		if i < len(sp.colors) {
			clr = sp.colors[i]
		}

		bars[i] = shadow.Bar{
			X:      sp.scale.x(trX(float64(i))),
			Y:      top,
			Base:   base,
			Width:  sp.scale.px(sp.width),
			Height: base - top,
			Color:  clr,
		}
	}

	for _, q := range shadow.Quads(bars) {
		pts := make([]vg.Point, len(q.Points))
		for j, pt := range q.Points {
			pts[j] = vg.Point{X: pxToLength(pt.X), Y: pxToLength(sp.scale.heightPx - pt.Y)}
		}

		c.FillPolygon(colorutil.ToRGBA(q.Fill), pts)
	}
}

// barRegions records the pixel rectangle of each bar once the plot is laid
// out. It draws nothing.
type barRegions struct {
	values []float64
	width  vg.Length
	scale  scale
	chart  *Chart
}

// Plot implements plot.Plotter.
func (br *barRegions) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	regions := make([]engine.Region, 0, len(br.values))

	for i, v := range br.values {
		center := trX(float64(i))
		x1 := br.scale.x(center - br.width/2)
		x2 := br.scale.x(center + br.width/2)
		y1 := br.scale.y(trY(v))
		y2 := br.scale.y(trY(0))

		regions = append(regions, engine.Region{
			Index: i,
			Shape: shapeRect,
			Coords: []int{
				roundPx(min(x1, x2)), roundPx(min(y1, y2)),
				roundPx(max(x1, x2)), roundPx(max(y1, y2)),
			},
		})
	}

	br.chart.regions = regions
}

// percentTicks labels the value axis with a percent suffix.
type percentTicks struct{}

// Ticks implements plot.Ticker.
func (percentTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label += "%"
		}
	}

	return ticks
}

func addPie(p *plot.Plot, cfg engine.Config, s scale, chart *Chart) {
	p.HideAxes()

	values := cfg.Dataset.Values
	if sum(values) <= 0 {
		p.Title.Text = noDataTxt

		return
	}

	fills := toColors(cfg.Dataset.Colors)
	borders := toColors(cfg.Dataset.Borders)

	p.Add(&pieWedges{
		values:      values,
		fills:       fills,
		borders:     borders,
		borderWidth: pxToLength(cfg.Dataset.BorderWidth),
		scale:       s,
		chart:       chart,
	})

	if !cfg.Legend {
		return
	}

	for i, label := range cfg.Labels {
		p.Legend.Add(label, swatch{fill: pick(fills, i), border: pick(borders, i)})
	}
}

// pieWedges draws a pie chart starting at twelve o'clock and running
// clockwise. Arcs are approximated by polygons.
type pieWedges struct {
	values      []float64
	fills       []color.Color
	borders     []color.Color
	borderWidth vg.Length
	scale       scale
	chart       *Chart
}

// Plot implements plot.Plotter.
func (pw *pieWedges) Plot(c draw.Canvas, _ *plot.Plot) {
	total := sum(pw.values)
	if total <= 0 {
		return
	}

	center := c.Center()
	radius := min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y) * pieRadiusRatio
	start := 0.0
	regions := make([]engine.Region, 0, len(pw.values))

	for i, v := range pw.values {
		if v <= 0 {
			continue
		}

		sweep := v / total * 2 * math.Pi
		pts := wedge(center, radius, start, sweep)
		start += sweep

		c.FillPolygon(pick(pw.fills, i), pts)

		if pw.borderWidth > 0 {
			closed := append(pts[:len(pts):len(pts)], pts[0])
			c.StrokeLines(draw.LineStyle{Color: pick(pw.borders, i), Width: pw.borderWidth}, closed)
		}

		coords := make([]int, 0, len(pts)*2)
		for _, pt := range pts {
			coords = append(coords, roundPx(pw.scale.x(pt.X)), roundPx(pw.scale.y(pt.Y)))
		}

		regions = append(regions, engine.Region{Index: i, Shape: shapePoly, Coords: coords})
	}

	pw.chart.regions = regions
}

// wedge returns the polygon of a pie slice. Angles are measured clockwise
// from the top.
func wedge(center vg.Point, radius vg.Length, start, sweep float64) []vg.Point {
	steps := max(2, int(math.Ceil(sweep/arcStep)))
	pts := make([]vg.Point, 0, steps+2)

	if sweep < 2*math.Pi {
		pts = append(pts, center)
	}

	for k := 0; k <= steps; k++ {
		theta := start + sweep*float64(k)/float64(steps)
		pts = append(pts, vg.Point{
			X: center.X + radius*vg.Length(math.Sin(theta)),
			Y: center.Y + radius*vg.Length(math.Cos(theta)),
		})
	}

	return pts
}

// swatch is a legend thumbnail filled with a slice color.
type swatch struct {
	fill   color.Color
	border color.Color
}

// Thumbnail implements plot.Thumbnailer.
func (sw swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}

	c.FillPolygon(sw.fill, pts)
	c.StrokeLines(draw.LineStyle{Color: sw.border, Width: vg.Points(1)}, append(pts, pts[0]))
}
