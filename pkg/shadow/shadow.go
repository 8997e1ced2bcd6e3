// Package shadow computes the pseudo-3D depth shadow drawn behind bars.
//
// The geometry is pure: engines pass in bar rectangles in screen space
// (y grows downward, Base is the zero line) and paint the returned quads
// before painting the bars themselves.
package shadow

import (
	"math"

	"github.com/Sumatoshi-tech/sharechart/pkg/colorutil"
)

// ID names the plugin in engine configs.
const ID = "faux3d"

// Geometry constants. Engines that lay bars out in the browser repeat the
// math of QuadFor in script with these values.
const (
	DepthRatio = 0.12
	MinDepth   = 6
	MaxDepth   = 18
	SkewRatio  = 0.3
	// FillShade darkens the bar color for its shadow.
	FillShade = -30
)

// Point is a screen-space coordinate.
type Point struct {
	X, Y float64
}

// Bar is a laid-out bar: X is the horizontal center, Y the top edge and Base
// the bottom edge.
type Bar struct {
	X, Y, Base    float64
	Width, Height float64
	Color         string
}

// Quad is one filled shadow polygon.
type Quad struct {
	Points [4]Point
	Fill   string
}

// Depth returns the shadow offset for a bar of the given width:
// round(width*0.12) clamped to [6,18].
func Depth(width float64) float64 {
	d := math.Floor(width*DepthRatio + 0.5)

	return max(MinDepth, min(MaxDepth, d))
}

// Active reports whether the shadow applies to a chart type. Only bar
// charts get depth.
func Active(chartType string) bool {
	return chartType == "bar"
}

// QuadFor returns the shadow polygon of one bar. The quad sits below and to
// the right of the bar, offset by its depth and skewed by the bar height.
func QuadFor(b Bar) Quad {
	d := Depth(b.Width)
	h := b.Base - b.Y
	skew := d * SkewRatio
	half := b.Width / 2

	return Quad{
		Points: [4]Point{
			{X: b.X - half + skew, Y: b.Base + d},
			{X: b.X + half + skew, Y: b.Base + d},
			{X: b.X + half - h + skew, Y: b.Y + d},
			{X: b.X - half - h + skew, Y: b.Y + d},
		},
		Fill: colorutil.Shade(b.Color, FillShade),
	}
}

// Quads returns one shadow per bar, in bar order.
func Quads(bars []Bar) []Quad {
	out := make([]Quad, len(bars))
	for i, b := range bars {
		out[i] = QuadFor(b)
	}

	return out
}
