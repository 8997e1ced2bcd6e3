// Package palette assigns chart colors to brand labels by position.
package palette

import "github.com/Sumatoshi-tech/sharechart/pkg/colorutil"

// BorderShade is the percent applied to a fill color to derive its border.
const BorderShade = -20

// base is the fixed cycle of fill colors. Order matters: index i of a
// dataset always receives base[i%len(base)].
var base = [...]string{
	"#05E1FF",
	"#7AF27A",
	"#FFD166",
	"#FF7A7A",
	"#D07CFF",
	"#52D2FF",
	"#FF9F55",
	"#A0A9FF",
	"#FF67B5",
	"#6EE7B7",
	"#FFB86E",
	"#8BF3FF",
	"#C7B3FF",
	"#FFDB7D",
}

// Size returns the number of distinct colors in the cycle.
func Size() int { return len(base) }

// Base returns a copy of the color cycle.
func Base() []string {
	out := make([]string, len(base))
	copy(out, base[:])

	return out
}

// For returns one fill color per label. Colors depend only on position.
func For(labels []string) []string {
	out := make([]string, len(labels))
	for i := range labels {
		out[i] = base[i%len(base)]
	}

	return out
}

// Borders returns the border color for each fill color.
func Borders(colors []string) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = colorutil.Shade(c, BorderShade)
	}

	return out
}
