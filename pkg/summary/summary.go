// Package summary produces the headline/detail text of the summary card.
package summary

import (
	"fmt"
	"strconv"
)

// Placeholder texts shown when a snapshot has no brands.
const (
	EmptyHeadline = "—"
	EmptyDetail   = "No data"
	HoverDetail   = "Clicked / hovered brand"
)

// Highlight is an optional index into a snapshot. None means no element is
// hovered or selected.
type Highlight int

// None is the absent highlight.
const None Highlight = -1

// At returns a highlight for index i.
func At(i int) Highlight { return Highlight(i) }

// Valid reports whether h points into a snapshot of n brands.
func (h Highlight) Valid(n int) bool { return h >= 0 && int(h) < n }

// Summary is the text pair rendered in the summary card.
type Summary struct {
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
}

// Summarize describes either the highlighted brand or, when h is None, the
// top brand of the snapshot. Ties on the maximum resolve to the first brand.
// h must be None or a valid index into labels; values must align with labels.
func Summarize(h Highlight, labels []string, values []float64, country string, year int) Summary {
	if len(labels) == 0 {
		return Summary{Headline: EmptyHeadline, Detail: EmptyDetail}
	}

	if h == None {
		top := TopIndex(values)

		return Summary{
			Headline: headline(labels[top], values[top]),
			Detail:   fmt.Sprintf("Top brand (%s, %d)", country, year),
		}
	}

	return Summary{
		Headline: headline(labels[h], values[h]),
		Detail:   HoverDetail,
	}
}

// All returns the default summary followed by one summary per index, so
// index i's summary is at position i+1.
func All(labels []string, values []float64, country string, year int) []Summary {
	out := make([]Summary, 0, len(labels)+1)
	out = append(out, Summarize(None, labels, values, country, year))

	for i := range labels {
		out = append(out, Summarize(At(i), labels, values, country, year))
	}

	return out
}

// TopIndex returns the index of the first maximum value, or 0 for an empty
// slice.
func TopIndex(values []float64) int {
	top := 0

	for i, v := range values {
		if v > values[top] {
			top = i
		}
	}

	return top
}

// FormatValue renders a percentage with the shortest exact representation.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func headline(label string, value float64) string {
	return label + " — " + FormatValue(value) + "%"
}
