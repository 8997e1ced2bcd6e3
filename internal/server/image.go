package server

import (
	"bytes"
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/sharechart/internal/controller"
	"github.com/Sumatoshi-tech/sharechart/internal/rendercache"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine/raster"
)

// Cache status header values.
const (
	headerCache = "X-Render-Cache"
	cacheHit    = "hit"
	cacheMiss   = "miss"
)

// handleImage draws the live state with the raster engine, independent of
// the page's chart slot.
func (s *Server) handleImage(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()

	format, err := raster.ParseFormat(strings.TrimPrefix(path.Ext(hr.URL.Path), "."))
	if err != nil {
		s.writeError(rw, hr, http.StatusNotFound, err)

		return
	}

	frame := s.ctrl.Describe()
	render := func() ([]byte, error) { return s.renderImage(ctx, frame, format) }

	var (
		data []byte
		hit  bool
	)

	if s.deps.Cache != nil {
		data, hit, err = s.deps.Cache.GetOrRender(s.imageKey(frame, format), render)
		s.deps.Metrics.RecordCache(ctx, string(format), hit)
	} else {
		data, err = render()
	}

	if err != nil {
		s.writeError(rw, hr, http.StatusInternalServerError, err)

		return
	}

	status := cacheMiss
	if hit {
		status = cacheHit
	}

	rw.Header().Set("Content-Type", format.ContentType())
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Header().Set(headerCache, status)

	_, err = rw.Write(data)
	if err != nil {
		s.logger.DebugContext(ctx, "image write aborted", "error", err)
	}
}

func (s *Server) renderImage(ctx context.Context, f controller.Frame, format raster.Format) ([]byte, error) {
	width, height := s.imageSize()
	cfg := controller.BuildConfig(f.State, f.Snapshot, engine.Animation{}, width, height)
	eng := raster.New(raster.WithFormat(format), raster.WithSize(width, height), raster.WithLogger(s.logger))

	start := time.Now()

	chart, err := eng.Create(ctx, cfg)
	if err != nil {
		return nil, err
	}

	defer chart.Destroy()

	s.deps.Metrics.RecordRender(ctx, string(f.State.Mode), raster.Name, time.Since(start))

	var buf bytes.Buffer

	err = chart.Render(&buf)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *Server) imageSize() (width, height int) {
	if s.deps.Width > 0 && s.deps.Height > 0 {
		return s.deps.Width, s.deps.Height
	}

	return raster.DefaultWidth, raster.DefaultHeight
}

// imageKey identifies the image of a frame. The store version the frame
// was read at makes a live data override miss older entries.
func (s *Server) imageKey(f controller.Frame, format raster.Format) rendercache.Key {
	width, height := s.imageSize()

	return rendercache.Key{
		Format:  string(format),
		Mode:    string(f.State.Mode),
		Theme:   string(f.State.Theme),
		Country: f.State.Country,
		Year:    f.State.Year,
		Width:   width,
		Height:  height,
		Version: f.Version,
	}
}
