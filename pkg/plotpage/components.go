package plotpage

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Controls renders the chart type switch, country select, year slider and
// theme toggle.
type Controls struct {
	Mode      string
	Countries []string
	Country   string
	YearMin   int
	YearMax   int
	Year      int
}

// Render writes the controls HTML.
func (c Controls) Render(w io.Writer) error {
	html := mustRenderTemplate("controls.html", controlsData(c))

	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing controls: %w", err)
	}

	return nil
}

// Badge is a small labelled value in the header strip.
type Badge struct {
	ID    string
	Label string
	Text  string
}

// NewBadge creates a badge. id becomes the element id so scripts can
// update the text.
func NewBadge(id, label, text string) Badge {
	return Badge{ID: id, Label: label, Text: text}
}

// Render writes the badge HTML.
func (b Badge) Render(w io.Writer) error {
	html := mustRenderTemplate("badge.html", badgeData(b))

	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing badge: %w", err)
	}

	return nil
}

// SummaryCard shows the top or hovered brand.
type SummaryCard struct {
	Headline string
	Detail   string
}

// Render writes the summary card HTML.
func (s SummaryCard) Render(w io.Writer) error {
	html := mustRenderTemplate("summary.html", summaryData(s))

	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return nil
}

// Toast is a transient notice that fades after TTL.
type Toast struct {
	Message string
	TTL     time.Duration
}

// Render writes the toast HTML.
func (t Toast) Render(w io.Writer) error {
	html := mustRenderTemplate("toast.html", toastData{Message: t.Message, TTL: t.TTL.Milliseconds()})

	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing toast: %w", err)
	}

	return nil
}

// Area is one hover region of a raster chart.
type Area struct {
	Index  int
	Shape  string
	Coords []int
}

// ImageMap renders a raster chart image with hover regions wired to the
// summary card.
type ImageMap struct {
	Src    string
	Width  int
	Height int
	Areas  []Area
}

// Render writes the image and its map.
func (m ImageMap) Render(w io.Writer) error {
	areas := make([]areaData, len(m.Areas))

	for i, a := range m.Areas {
		coords := make([]string, len(a.Coords))
		for j, c := range a.Coords {
			coords[j] = strconv.Itoa(c)
		}

		areas[i] = areaData{Index: a.Index, Shape: a.Shape, Coords: strings.Join(coords, ",")}
	}

	html := mustRenderTemplate("imagemap.html", imageMapData{
		Src:    m.Src,
		Width:  m.Width,
		Height: m.Height,
		Areas:  areas,
	})

	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing image map: %w", err)
	}

	return nil
}
