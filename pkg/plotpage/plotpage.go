// Package plotpage renders the themed HTML page around a chart: header,
// controls, summary card, badges and toast.
package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

const styleTagLen = 8 // len("</style>")

// DefaultEChartsAsset is the echarts bundle loaded by the page.
const DefaultEChartsAsset = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// Style defines chart dimensions.
type Style struct {
	Width  string
	Height string
}

// DefaultStyle returns the default chart style.
func DefaultStyle() Style {
	return Style{
		Width:  "100%",
		Height: "460px",
	}
}

// Renderable is the interface for page components.
type Renderable interface {
	Render(w io.Writer) error
}

// Page represents the complete chart page.
type Page struct {
	Title        string
	Description  string
	Theme        Theme
	Style        Style
	EChartsAsset string
	Controls     Controls
	Badges       []Badge
	Summary      SummaryCard
	Chart        Renderable
	Toast        *Toast
	// Hover holds the summary shown for no highlight at index 0 and for
	// element i at index i+1.
	Hover []HoverText
}

// HoverText is one precomputed summary card state.
type HoverText struct {
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
}

// NewPage creates a new page with defaults.
func NewPage(title, description string) *Page {
	return &Page{
		Title:        title,
		Description:  description,
		Theme:        ThemeDark,
		Style:        DefaultStyle(),
		EChartsAsset: DefaultEChartsAsset,
	}
}

// WithTheme sets the theme for the page.
func (p *Page) WithTheme(theme Theme) *Page {
	p.Theme = theme

	return p
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	return HTMLRenderer{}.Render(w, p)
}

// HTMLRenderer renders pages as HTML.
type HTMLRenderer struct {
	ExtraCSS string
}

// Render writes the page as HTML to the writer.
func (r HTMLRenderer) Render(w io.Writer, page *Page) error {
	header, err := renderTemplate("header.html", headerData{
		Title:       page.Title,
		Description: page.Description,
	})
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	controls, err := renderComponent(page.Controls)
	if err != nil {
		return fmt.Errorf("render controls: %w", err)
	}

	var badges bytes.Buffer

	for _, b := range page.Badges {
		badgeErr := b.Render(&badges)
		if badgeErr != nil {
			return fmt.Errorf("render badge: %w", badgeErr)
		}
	}

	card, err := renderComponent(page.Summary)
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	chart, err := renderChart(page.Chart)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	var toast template.HTML

	if page.Toast != nil {
		toast, err = renderComponent(page.Toast)
		if err != nil {
			return fmt.Errorf("render toast: %w", err)
		}
	}

	hover := page.Hover
	if hover == nil {
		hover = []HoverText{}
	}

	scripts, err := renderTemplate("scripts.html", scriptData{Hover: hover})
	if err != nil {
		return fmt.Errorf("render scripts: %w", err)
	}

	bodyClass := ""
	if page.Theme == ThemeLight {
		bodyClass = "light"
	}

	data := pageData{
		Title:        page.Title,
		BodyClass:    bodyClass,
		Dark:         GetThemeConfig(ThemeDark),
		Light:        GetThemeConfig(ThemeLight),
		ExtraCSS:     template.CSS(r.ExtraCSS),
		EChartsAsset: page.EChartsAsset,
		Header:       header,
		Controls:     controls,
		Badges:       template.HTML(badges.String()),
		Summary:      card,
		Chart:        chart,
		ChartHeight:  page.Style.Height,
		Toast:        toast,
		Scripts:      scripts,
	}

	html, err := renderTemplate("page.html", data)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	_, err = w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

func renderComponent(c Renderable) (template.HTML, error) {
	var buf bytes.Buffer

	err := c.Render(&buf)
	if err != nil {
		return "", err
	}

	return template.HTML(buf.String()), nil
}

// ChartWrapper wraps an echarts chart and renders only the chart content.
type ChartWrapper struct {
	chart Renderable
}

// WrapChart wraps an echarts chart to render only the div and script (no full HTML page).
func WrapChart(chart Renderable) *ChartWrapper {
	return &ChartWrapper{chart: chart}
}

// Render writes the chart element and script without a full HTML page.
func (cw *ChartWrapper) Render(w io.Writer) error {
	if cw.chart == nil {
		return nil
	}

	var buf bytes.Buffer

	err := cw.chart.Render(&buf)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	content := extractChartContent(buf.String())

	_, err = w.Write([]byte(content))
	if err != nil {
		return fmt.Errorf("writing chart content: %w", err)
	}

	return nil
}

func renderChart(chart Renderable) (template.HTML, error) {
	if chart == nil {
		return "", nil
	}

	var buf bytes.Buffer

	err := chart.Render(&buf)
	if err != nil {
		return "", err
	}

	return template.HTML(extractChartContent(buf.String())), nil
}

func extractChartContent(html string) string {
	// Only full echarts pages are trimmed; fragments pass through.
	if !strings.HasPrefix(strings.TrimSpace(html), "<!DOCTYPE") &&
		!strings.HasPrefix(strings.TrimSpace(html), "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)
	content = removeStyleTags(content)

	return content
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			break
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			break
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}

	return content
}
