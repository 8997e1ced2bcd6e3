package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Sumatoshi-tech/sharechart/internal/controller"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine/raster"
	"github.com/Sumatoshi-tech/sharechart/pkg/plotpage"
)

// Badge element ids updated by the page script.
const (
	badgeMode   = "modeLabel"
	badgeSource = "sourceLabel"
)

func (s *Server) handlePage(rw http.ResponseWriter, hr *http.Request) {
	var buf bytes.Buffer

	err := s.ctrl.Present(hr.Context(), func(f controller.Frame) error {
		return s.page(f).Render(&buf)
	})
	if err != nil {
		s.writeError(rw, hr, http.StatusInternalServerError, err)

		return
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")

	_, err = rw.Write(buf.Bytes())
	if err != nil {
		s.logger.DebugContext(hr.Context(), "page write aborted", "error", err)
	}
}

// page assembles the HTML page for a rendered frame.
func (s *Server) page(f controller.Frame) *plotpage.Page {
	page := plotpage.NewPage(s.deps.Title, s.deps.Description).
		WithTheme(plotpage.ParseTheme(string(f.State.Theme)))

	if s.deps.Height > 0 {
		page.Style.Height = fmt.Sprintf("%dpx", s.deps.Height)
	}

	page.Controls = plotpage.Controls{
		Mode:      string(f.State.Mode),
		Countries: f.Countries,
		Country:   f.State.Country,
		YearMin:   f.YearMin,
		YearMax:   f.YearMax,
		Year:      f.State.Year,
	}

	page.Badges = []plotpage.Badge{
		plotpage.NewBadge(badgeMode, "Mode", f.ModeLabel),
		plotpage.NewBadge(badgeSource, "Source", f.SourceLabel),
	}

	page.Summary = plotpage.SummaryCard{Headline: f.Summary.Headline, Detail: f.Summary.Detail}

	page.Hover = make([]plotpage.HoverText, len(f.Hover))
	for i, h := range f.Hover {
		page.Hover[i] = plotpage.HoverText{Headline: h.Headline, Detail: h.Detail}
	}

	if f.Toast != nil {
		page.Toast = &plotpage.Toast{Message: f.Toast.Message, TTL: f.Toast.Remaining(time.Now())}
	}

	page.Chart = s.chartComponent(f)

	return page
}

// chartComponent embeds an HTML chart directly. Raster charts become an
// image with an image map built from the chart's hit regions; the image is
// fetched from the matching /chart.* route.
func (s *Server) chartComponent(f controller.Frame) plotpage.Renderable {
	rc, ok := engine.Unwrap(f.Chart).(*raster.Chart)
	if !ok {
		return f.Chart
	}

	width, height := rc.Size()
	format := rc.Format()

	if format == raster.FormatPDF {
		format = raster.FormatPNG
	}

	key := s.imageKey(f, format)
	regions := rc.Regions()
	areas := make([]plotpage.Area, len(regions))

	for i, r := range regions {
		areas[i] = plotpage.Area{Index: r.Index, Shape: r.Shape, Coords: r.Coords}
	}

	return plotpage.ImageMap{
		Src:    "/chart." + string(format) + "?k=" + url.QueryEscape(key.String()),
		Width:  width,
		Height: height,
		Areas:  areas,
	}
}
