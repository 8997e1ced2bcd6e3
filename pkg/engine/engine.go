// Package engine defines the contract between the chart controller and the
// charting backends, and the Slot that owns the single live chart.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Type is the chart type understood by engines.
type Type string

// Chart types.
const (
	TypeBar Type = "bar"
	TypePie Type = "pie"
)

// Errors returned by engines.
var (
	ErrUnsupportedType = errors.New("unsupported chart type")
	ErrChartDestroyed  = errors.New("chart destroyed")
	ErrMisaligned      = errors.New("labels and values differ in length")
)

// Animation describes the intro animation of a chart.
type Animation struct {
	Duration time.Duration
	Easing   string
}

// Dataset is the single data series of a chart.
type Dataset struct {
	Label       string
	Values      []float64
	Colors      []string
	Borders     []string
	BorderWidth float64
}

// Config is everything an engine needs to draw one chart.
type Config struct {
	Type      Type
	Theme     string
	Labels    []string
	Dataset   Dataset
	Legend    bool
	Tooltip   bool
	Animation Animation
	// Plugins lists render hooks by ID. Engines that know a hook run it
	// before drawing the data.
	Plugins []string
	Width   int
	Height  int
}

// HasPlugin reports whether the plugin with id is enabled.
func (c Config) HasPlugin(id string) bool {
	for _, p := range c.Plugins {
		if p == id {
			return true
		}
	}

	return false
}

// Validate checks the config before an engine draws it.
func (c Config) Validate() error {
	switch c.Type {
	case TypeBar, TypePie:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, c.Type)
	}

	if len(c.Labels) != len(c.Dataset.Values) {
		return fmt.Errorf("%w: %d labels, %d values", ErrMisaligned, len(c.Labels), len(c.Dataset.Values))
	}

	return nil
}

// Chart is a drawn chart instance.
type Chart interface {
	// Render writes the chart output.
	Render(w io.Writer) error
	// Destroy releases the instance. Render fails afterwards.
	Destroy()
}

// Engine creates charts.
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string
	// Create draws a new chart from cfg.
	Create(ctx context.Context, cfg Config) (Chart, error)
}

// Region is a clickable area of a rendered chart, in output pixels.
type Region struct {
	Index int
	Shape string
	// Coords follow HTML image-map conventions for Shape.
	Coords []int
}

// Mapper is implemented by charts that expose hit regions.
type Mapper interface {
	Regions() []Region
}

// Handle tracks the destroyed flag of a chart. Engines embed it.
type Handle struct {
	destroyed atomic.Bool
}

// Destroy marks the chart destroyed. It is idempotent.
func (h *Handle) Destroy() { h.destroyed.Store(true) }

// Destroyed reports whether Destroy was called.
func (h *Handle) Destroyed() bool { return h.destroyed.Load() }

// Check returns ErrChartDestroyed after Destroy.
func (h *Handle) Check() error {
	if h.destroyed.Load() {
		return ErrChartDestroyed
	}

	return nil
}
