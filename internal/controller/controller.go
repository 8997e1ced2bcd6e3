// Package controller owns the UI state machine: it applies user
// transitions, persists the affected keys and re-renders the single live
// chart from the dataset store.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
	"github.com/Sumatoshi-tech/sharechart/pkg/palette"
	"github.com/Sumatoshi-tech/sharechart/pkg/shadow"
	"github.com/Sumatoshi-tech/sharechart/pkg/summary"
	"github.com/Sumatoshi-tech/sharechart/pkg/uistate"
)

// Chart settings applied on every render.
const (
	DatasetLabel      = "Market Share %"
	BarBorderWidth    = 2
	PieBorderWidth    = 1
	DefaultEasing     = "easeOutQuart"
	DefaultAnimation  = 900 * time.Millisecond
	FetchFailureToast = "Live data not available — using demo data"
	ToastTTL          = 3200 * time.Millisecond
)

// Source is the live data override applied once at startup.
type Source interface {
	Endpoint() string
	Apply(ctx context.Context, store *dataset.Store) error
}

// Options configures a Controller.
type Options struct {
	Store     *dataset.Store
	KV        uistate.KV
	Slot      *engine.Slot
	Initial   uistate.State
	Animation engine.Animation
	Width     int
	Height    int
	Metrics   *observability.ChartMetrics
	Logger    *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Controller serializes all transitions behind one mutex.
type Controller struct {
	mu    sync.Mutex
	state uistate.State
	toast Toast
	// notice is re-raised as a toast on every page load.
	notice string

	store     *dataset.Store
	kv        uistate.KV
	slot      *engine.Slot
	animation engine.Animation
	width     int
	height    int
	metrics   *observability.ChartMetrics
	logger    *slog.Logger
	now       func() time.Time

	fetchOnce sync.Once
	fetched   chan struct{}
}

// New creates a controller in the Initial state. Nothing is rendered until
// the first Render or transition.
func New(opts Options) *Controller {
	c := &Controller{
		state:     opts.Initial,
		store:     opts.Store,
		kv:        opts.KV,
		slot:      opts.Slot,
		animation: opts.Animation,
		width:     opts.Width,
		height:    opts.Height,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
		fetched:   make(chan struct{}),
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.now == nil {
		c.now = time.Now
	}

	if c.animation == (engine.Animation{}) {
		c.animation = engine.Animation{Duration: DefaultAnimation, Easing: DefaultEasing}
	}

	return c
}

// State returns the current state.
func (c *Controller) State() uistate.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Store returns the dataset store the controller renders from.
func (c *Controller) Store() *dataset.Store { return c.store }

// SetMode switches the chart type, persists it and re-renders.
func (c *Controller) SetMode(ctx context.Context, m uistate.Mode) (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Mode = m
	c.persistLocked(ctx, uistate.KeyMode)

	return c.renderLocked(ctx)
}

// SetCountry selects a country, persists it and re-renders. Unknown
// countries render as "No data".
func (c *Controller) SetCountry(ctx context.Context, country string) (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Country = country
	c.persistLocked(ctx, uistate.KeyCountry)

	return c.renderLocked(ctx)
}

// DragYear tracks the slider while it moves. It neither persists nor
// renders.
func (c *Controller) DragYear(year int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Year = year
}

// CommitYear persists the year chosen by DragYear and re-renders.
func (c *Controller) CommitYear(ctx context.Context) (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.persistLocked(ctx, uistate.KeyYear)

	return c.renderLocked(ctx)
}

// ToggleTheme flips the theme and persists it. The chart is not redrawn;
// the page applies the theme class.
func (c *Controller) ToggleTheme(ctx context.Context) uistate.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Theme = c.state.Theme.Toggle()
	c.persistLocked(ctx, uistate.KeyTheme)

	return c.state.Theme
}

// Teardown persists every key. It is called when the page unloads and on
// shutdown.
func (c *Controller) Teardown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return uistate.Save(ctx, c.kv, c.state)
}

// Close persists every key and destroys the live chart.
func (c *Controller) Close(ctx context.Context) error {
	err := c.Teardown(ctx)

	c.slot.Close()

	return err
}

// Render redraws the chart for the current state as a fresh page load: a
// pending notice is raised again with a full timer.
func (c *Controller) Render(ctx context.Context) (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.raiseNoticeLocked()

	return c.renderLocked(ctx)
}

// Present renders a page load and hands the frame to fn while the chart is
// guaranteed to stay live.
func (c *Controller) Present(ctx context.Context, fn func(Frame) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.raiseNoticeLocked()

	frame, err := c.renderLocked(ctx)
	if err != nil {
		return err
	}

	return fn(frame)
}

// Describe builds a frame without touching the chart slot.
func (c *Controller) Describe() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.frameLocked(c.store.Lookup(c.state.Country, c.state.Year))
}

func (c *Controller) renderLocked(ctx context.Context) (Frame, error) {
	snap, version := c.store.Lookup(c.state.Country, c.state.Year)
	cfg := BuildConfig(c.state, snap, c.animation, c.width, c.height)

	c.persistLocked(ctx, uistate.KeyMode)

	start := c.now()

	chart, err := c.slot.Replace(ctx, cfg)
	if err != nil {
		c.logger.ErrorContext(ctx, "chart render failed", "mode", c.state.Mode, "error", err)

		return Frame{}, err
	}

	c.metrics.RecordRender(ctx, string(c.state.Mode), c.slot.Engine().Name(), c.now().Sub(start))

	frame := c.frameLocked(snap, version)
	frame.Chart = chart
	frame.Config = cfg

	c.logger.DebugContext(ctx, "chart rendered",
		"mode", c.state.Mode, "country", c.state.Country, "year", c.state.Year, "points", snap.Len())

	return frame, nil
}

func (c *Controller) frameLocked(snap dataset.Snapshot, version uint64) Frame {
	source := c.store.Source()
	lo, hi, _ := c.store.YearRange()

	frame := Frame{
		State:       c.state,
		ModeLabel:   c.state.Mode.Label(),
		Source:      source,
		SourceLabel: source.Label(),
		Snapshot:    snap,
		Version:     version,
		Summary:     summary.Summarize(summary.None, snap.Labels, snap.Values, c.state.Country, c.state.Year),
		Hover:       summary.All(snap.Labels, snap.Values, c.state.Country, c.state.Year),
		Countries:   c.store.Countries(),
		YearMin:     lo,
		YearMax:     hi,
	}

	if t, ok := c.toast.active(c.now()); ok {
		frame.Toast = &t
	}

	return frame
}

// persistLocked writes keys. Storage failures are logged and never block a
// transition.
func (c *Controller) persistLocked(ctx context.Context, keys ...string) {
	err := uistate.Save(ctx, c.kv, c.state, keys...)
	if err != nil {
		c.logger.WarnContext(ctx, "persist ui state failed", "keys", keys, "error", err)
	}
}

// BuildConfig maps a state and its snapshot to an engine config. Colors are
// assigned by position; the legend only shows for pies and the depth shadow
// only for bars.
func BuildConfig(s uistate.State, snap dataset.Snapshot, anim engine.Animation, width, height int) engine.Config {
	colors := palette.For(snap.Labels)

	cfg := engine.Config{
		Type:   engine.Type(s.Mode),
		Theme:  string(s.Theme),
		Labels: snap.Labels,
		Dataset: engine.Dataset{
			Label:       DatasetLabel,
			Values:      snap.Values,
			Colors:      colors,
			Borders:     palette.Borders(colors),
			BorderWidth: BarBorderWidth,
		},
		Legend:    s.Mode == uistate.ModePie,
		Tooltip:   false,
		Animation: anim,
		Width:     width,
		Height:    height,
	}

	if s.Mode == uistate.ModePie {
		cfg.Dataset.BorderWidth = PieBorderWidth
	}

	if shadow.Active(string(s.Mode)) {
		cfg.Plugins = []string{shadow.ID}
	}

	return cfg
}
