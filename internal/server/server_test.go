package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sharechart/internal/controller"
	"github.com/Sumatoshi-tech/sharechart/internal/rendercache"
	"github.com/Sumatoshi-tech/sharechart/internal/server"
	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine/echarts"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine/raster"
	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
	"github.com/Sumatoshi-tech/sharechart/pkg/storage"
	"github.com/Sumatoshi-tech/sharechart/pkg/uistate"
)

const (
	testWidth  = 640
	testHeight = 360
)

type fixture struct {
	ctl   *controller.Controller
	kv    *storage.Memory
	cache *rendercache.Cache
	h     http.Handler
}

func newFixture(t *testing.T, eng engine.Engine, ready ...observability.ReadyCheck) *fixture {
	t.Helper()

	kv := storage.NewMemory()
	ctl := controller.New(controller.Options{
		Store:   dataset.NewStore(),
		KV:      kv,
		Slot:    engine.NewSlot(eng),
		Initial: uistate.Default(),
		Width:   testWidth,
		Height:  testHeight,
	})

	t.Cleanup(func() { _ = ctl.Close(context.Background()) })

	cache := rendercache.New(0)
	srv := server.New(server.Deps{
		Controller: ctl,
		Cache:      cache,
		Width:      testWidth,
		Height:     testHeight,
		Ready:      ready,
		MetricsHandler: http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(rw, "# metrics\n")
		}),
	})

	return &fixture{ctl: ctl, kv: kv, cache: cache, h: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, httptest.NewRequest(method, target, reader))

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	return out
}

func (f *fixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()

	v, ok, err := f.kv.Get(context.Background(), key)
	require.NoError(t, err)

	return v, ok
}

func TestPage_ECharts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())
	rec := f.do(t, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Samsung — 20%")
	assert.Contains(t, body, "Top brand (Global, 2025)")
	assert.Contains(t, body, `<span id="modeLabel">Bar</span>`)
	assert.Contains(t, body, `<span id="sourceLabel">Demo</span>`)
	assert.Contains(t, body, "window.sharechart.highlight")
	assert.NotContains(t, body, `id="toast"`)

	// Rendering the page persists the chart mode.
	v, ok := f.stored(t, uistate.KeyMode)
	assert.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestPage_RasterImageMap(t *testing.T) {
	t.Parallel()

	f := newFixture(t, raster.New(raster.WithSize(testWidth, testHeight)))
	body := f.do(t, http.MethodGet, "/", nil).Body.String()

	assert.Contains(t, body, `src="/chart.png?k=`)
	assert.Contains(t, body, `usemap="#chartMap"`)
	assert.Equal(t, 14, strings.Count(body, `<area shape="rect"`))
}

func TestPage_Toast(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())
	f.ctl.ShowToast(controller.FetchFailureToast)

	body := f.do(t, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `id="toast"`)
	assert.Contains(t, body, "Live data not available")
}

func TestMode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	rec := f.do(t, http.MethodPost, "/mode/pie", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[server.StateResponse](t, rec)
	assert.Equal(t, "pie", resp.Mode)
	assert.Equal(t, "Pie", resp.ModeLabel)
	assert.Equal(t, "Demo", resp.Source)

	v, _ := f.stored(t, uistate.KeyMode)
	assert.Equal(t, "pie", v)

	rec = f.do(t, http.MethodPost, "/mode/line", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, uistate.ModePie, f.ctl.State().Mode)
}

func TestCountry(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	rec := f.do(t, http.MethodPost, "/country", server.CountryRequest{Country: "USA"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[server.StateResponse](t, rec)
	assert.Equal(t, "USA", resp.Country)
	assert.Equal(t, "Apple — 51%", resp.Summary.Headline)

	v, _ := f.stored(t, uistate.KeyCountry)
	assert.Equal(t, "USA", v)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/country", "{").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/country", server.CountryRequest{}).Code)
}

func TestCountry_UnknownRendersNoData(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	rec := f.do(t, http.MethodPost, "/country", server.CountryRequest{Country: "Atlantis"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[server.StateResponse](t, rec)
	assert.Equal(t, "—", resp.Summary.Headline)
	assert.Equal(t, "No data", resp.Summary.Detail)
}

func TestYear_DragThenCommit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	rec := f.do(t, http.MethodPost, "/year/drag", server.YearRequest{Year: 2022})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2022, decode[server.StateResponse](t, rec).Year)

	_, ok := f.stored(t, uistate.KeyYear)
	assert.False(t, ok)

	rec = f.do(t, http.MethodPost, "/year/commit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[server.StateResponse](t, rec)
	assert.Equal(t, "Samsung — 22%", resp.Summary.Headline)

	v, _ := f.stored(t, uistate.KeyYear)
	assert.Equal(t, "2022", v)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/year/drag", server.YearRequest{}).Code)
}

func TestThemeToggle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	rec := f.do(t, http.MethodPost, "/theme/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"theme": "light"}, decode[map[string]string](t, rec))

	v, _ := f.stored(t, uistate.KeyTheme)
	assert.Equal(t, "light", v)
}

func TestTeardown(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	rec := f.do(t, http.MethodPost, "/teardown", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, map[string]string{
		"chartMode": "bar",
		"theme":     "dark",
		"country":   "Global",
		"year":      "2025",
	}, f.kv.Snapshot())
}

func TestImage_CachedSVG(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	rec := f.do(t, http.MethodGet, "/chart.svg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "miss", rec.Header().Get("X-Render-Cache"))
	assert.Contains(t, rec.Body.String(), "<svg")

	first := rec.Body.String()

	rec = f.do(t, http.MethodGet, "/chart.svg", nil)
	assert.Equal(t, "hit", rec.Header().Get("X-Render-Cache"))
	assert.Equal(t, first, rec.Body.String())

	// A transition changes the key.
	f.do(t, http.MethodPost, "/mode/pie", nil)

	rec = f.do(t, http.MethodGet, "/chart.svg", nil)
	assert.Equal(t, "miss", rec.Header().Get("X-Render-Cache"))
	assert.Equal(t, 2, f.cache.Stats().Entries)
}

func TestImage_PNG(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	rec := f.do(t, http.MethodGet, "/chart.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	rec := f.do(t, http.MethodGet, "/api/snapshot?country=India&year=2022", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[server.SnapshotResponse](t, rec)
	assert.Equal(t, "India", resp.Country)
	assert.Equal(t, "Xiaomi", resp.Labels[0])
	assert.InDelta(t, 26.0, resp.Values[0], 1e-9)
	assert.Len(t, resp.Colors, 8)

	resp = decode[server.SnapshotResponse](t, f.do(t, http.MethodGet, "/api/snapshot", nil))
	assert.Equal(t, "Global", resp.Country)
	assert.Equal(t, 2025, resp.Year)

	resp = decode[server.SnapshotResponse](t, f.do(t, http.MethodGet, "/api/snapshot?country=Atlantis", nil))
	assert.Empty(t, resp.Labels)
	assert.NotNil(t, resp.Colors)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/snapshot?year=soon", nil).Code)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	resp := decode[server.SummaryResponse](t, f.do(t, http.MethodGet, "/api/summary?country=USA&year=2025", nil))
	assert.Equal(t, "Apple — 51%", resp.Headline)
	assert.Equal(t, "Top brand (USA, 2025)", resp.Detail)
	assert.Nil(t, resp.Index)

	resp = decode[server.SummaryResponse](t, f.do(t, http.MethodGet, "/api/summary?country=USA&year=2025&index=1", nil))
	assert.Equal(t, "Samsung — 25%", resp.Headline)
	assert.Equal(t, "Clicked / hovered brand", resp.Detail)
	require.NotNil(t, resp.Index)
	assert.Equal(t, 1, *resp.Index)

	for _, idx := range []string{"6", "-1", "first"} {
		rec := f.do(t, http.MethodGet, "/api/summary?country=USA&year=2025&index="+idx, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, idx)
	}
}

func TestDatasets(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	resp := decode[server.DatasetsResponse](t, f.do(t, http.MethodGet, "/api/datasets", nil))
	assert.Equal(t, "Demo", resp.Source)
	assert.Equal(t, []string{"Global", "India", "USA", "China"}, resp.Countries)
	assert.Equal(t, []int{2022, 2023, 2024, 2025, 2026}, resp.Years)
	assert.Equal(t, 2022, resp.YearMin)
	assert.Equal(t, 2026, resp.YearMax)
}

func TestProbesAndMetrics(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New(), func(context.Context) error { return errors.New("warming up") })

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/readyz", nil).Code)

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, echarts.New())

	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodGet, "/mode/pie", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/nowhere", nil).Code)
}
