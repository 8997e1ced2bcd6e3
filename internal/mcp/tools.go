package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/sharechart/internal/controller"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine/raster"
	"github.com/Sumatoshi-tech/sharechart/pkg/palette"
	"github.com/Sumatoshi-tech/sharechart/pkg/summary"
	"github.com/Sumatoshi-tech/sharechart/pkg/uistate"
)

// Tool name constants.
const (
	ToolNameSnapshot = "sharechart_snapshot"
	ToolNameSummary  = "sharechart_summary"
	ToolNameDatasets = "sharechart_datasets"
	ToolNameRender   = "sharechart_render"
)

// Render size limits, in pixels.
const (
	MaxRenderSide = 2000
	minRenderSide = 100
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCountry indicates the country parameter is empty.
	ErrEmptyCountry = errors.New("country parameter is required and must not be empty")
	// ErrInvalidYear indicates the year parameter is not positive.
	ErrInvalidYear = errors.New("year parameter must be a positive year")
	// ErrIndexOutOfRange indicates the index does not point at a brand.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidSize indicates a render size outside the allowed bounds.
	ErrInvalidSize = errors.New("render size out of bounds")
)

// Input types (auto-generate JSON schemas via struct tags).

// SnapshotInput is the input schema for the sharechart_snapshot tool.
type SnapshotInput struct {
	Country string `json:"country" jsonschema:"country name (e.g. Global India USA China)"`
	Year    int    `json:"year"    jsonschema:"year of the breakdown (e.g. 2025)"`
}

// SummaryInput is the input schema for the sharechart_summary tool.
type SummaryInput struct {
	Country string `json:"country"         jsonschema:"country name (e.g. Global India USA China)"`
	Index   *int   `json:"index,omitempty" jsonschema:"optional zero-based brand index (default: the top brand)"`
	Year    int    `json:"year"            jsonschema:"year of the breakdown (e.g. 2025)"`
}

// DatasetsInput is the input schema for the sharechart_datasets tool.
type DatasetsInput struct{}

// RenderInput is the input schema for the sharechart_render tool.
type RenderInput struct {
	Country string `json:"country"          jsonschema:"country name (e.g. Global India USA China)"`
	Height  int    `json:"height,omitempty" jsonschema:"image height in pixels (default: 450)"`
	Mode    string `json:"mode,omitempty"   jsonschema:"chart type: bar or pie (default: bar)"`
	Theme   string `json:"theme,omitempty"  jsonschema:"color theme: dark or light (default: dark)"`
	Width   int    `json:"width,omitempty"  jsonschema:"image width in pixels (default: 800)"`
	Year    int    `json:"year"             jsonschema:"year of the breakdown (e.g. 2025)"`
}

// Output types.

// SnapshotOutput is the sharechart_snapshot result.
type SnapshotOutput struct {
	Country string    `json:"country"`
	Year    int       `json:"year"`
	Source  string    `json:"source"`
	Labels  []string  `json:"labels"`
	Values  []float64 `json:"values"`
	Colors  []string  `json:"colors"`
}

// DatasetsOutput is the sharechart_datasets result.
type DatasetsOutput struct {
	Source    string   `json:"source"`
	Version   uint64   `json:"version"`
	Countries []string `json:"countries"`
	Years     []int    `json:"years"`
}

// RenderOutput describes a rendered chart. The SVG itself is the text
// content of the result.
type RenderOutput struct {
	Mode    string          `json:"mode"`
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	Bytes   int             `json:"bytes"`
	Regions []engine.Region `json:"regions"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateLookup checks the country and year shared by all lookups.
func validateLookup(country string, year int) error {
	if country == "" {
		return ErrEmptyCountry
	}

	if year <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	return nil
}

func (s *Server) handleSnapshot(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input SnapshotInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateLookup(input.Country, input.Year)
	if err != nil {
		return errorResult(err)
	}

	snap := s.store.Get(input.Country, input.Year)

	colors := palette.For(snap.Labels)
	if colors == nil {
		colors = []string{}
	}

	return jsonResult(SnapshotOutput{
		Country: input.Country,
		Year:    input.Year,
		Source:  s.store.Source().Label(),
		Labels:  snap.Labels,
		Values:  snap.Values,
		Colors:  colors,
	})
}

func (s *Server) handleSummary(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input SummaryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateLookup(input.Country, input.Year)
	if err != nil {
		return errorResult(err)
	}

	snap := s.store.Get(input.Country, input.Year)
	h := summary.None

	if input.Index != nil {
		h = summary.At(*input.Index)
		if !h.Valid(snap.Len()) {
			return errorResult(fmt.Errorf("%w: %d for %d brands", ErrIndexOutOfRange, *input.Index, snap.Len()))
		}
	}

	return jsonResult(summary.Summarize(h, snap.Labels, snap.Values, input.Country, input.Year))
}

func (s *Server) handleDatasets(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	_ DatasetsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return jsonResult(DatasetsOutput{
		Source:    s.store.Source().Label(),
		Version:   s.store.Version(),
		Countries: s.store.Countries(),
		Years:     s.store.Years(),
	})
}

func (s *Server) handleRender(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input RenderInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	state, width, height, err := renderRequest(input)
	if err != nil {
		return errorResult(err)
	}

	snap := s.store.Get(state.Country, state.Year)
	cfg := controller.BuildConfig(state, snap, engine.Animation{}, width, height)
	start := time.Now()

	chart, err := raster.New(raster.WithFormat(raster.FormatSVG), raster.WithLogger(s.logger)).Create(ctx, cfg)
	if err != nil {
		return errorResult(fmt.Errorf("render: %w", err))
	}

	defer chart.Destroy()

	s.charts.RecordRender(ctx, string(state.Mode), raster.Name, time.Since(start))

	var buf bytes.Buffer

	err = chart.Render(&buf)
	if err != nil {
		return errorResult(fmt.Errorf("render: %w", err))
	}

	out := RenderOutput{Mode: string(state.Mode), Width: width, Height: height, Bytes: buf.Len()}

	if m, ok := chart.(engine.Mapper); ok {
		out.Regions = m.Regions()
	}

	s.logger.DebugContext(ctx, "mcp chart rendered",
		"country", state.Country, "year", state.Year, "size", humanize.Bytes(uint64(buf.Len())))

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: buf.String()},
		},
	}, ToolOutput{Data: out}, nil
}

// renderRequest applies defaults to a render input and validates it.
func renderRequest(input RenderInput) (uistate.State, int, int, error) {
	err := validateLookup(input.Country, input.Year)
	if err != nil {
		return uistate.State{}, 0, 0, err
	}

	state := uistate.Default()
	state.Country, state.Year = input.Country, input.Year

	if input.Mode != "" {
		state.Mode, err = uistate.ParseMode(input.Mode)
		if err != nil {
			return uistate.State{}, 0, 0, err
		}
	}

	if input.Theme != "" {
		state.Theme, err = uistate.ParseTheme(input.Theme)
		if err != nil {
			return uistate.State{}, 0, 0, err
		}
	}

	width, height := raster.DefaultWidth, raster.DefaultHeight
	if input.Width != 0 {
		width = input.Width
	}

	if input.Height != 0 {
		height = input.Height
	}

	for _, side := range []int{width, height} {
		if side < minRenderSide || side > MaxRenderSide {
			return uistate.State{}, 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
		}
	}

	return state, width, height, nil
}
