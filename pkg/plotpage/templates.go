package plotpage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

// getTemplates returns the parsed templates, loading them once.
func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		var parseErr error

		templates, parseErr = template.New("").
			ParseFS(templateFS, "templates/*.html")
		if parseErr != nil {
			errTemplates = fmt.Errorf("parsing templates: %w", parseErr)
		}
	})

	return templates, errTemplates
}

// renderTemplate renders a named template with the given data.
func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, err := getTemplates()
	if err != nil {
		return "", fmt.Errorf("loading templates: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return template.HTML(buf.String()), nil
}

// mustRenderTemplate renders a template, panicking on error.
// Use only when errors are not expected (e.g., embedded templates).
func mustRenderTemplate(name string, data any) template.HTML {
	html, err := renderTemplate(name, data)
	if err != nil {
		panic("plotpage: template error: " + err.Error())
	}

	return html
}

// pageData holds data for the page template.
type pageData struct {
	Title        string
	BodyClass    string
	Dark         ThemeConfig
	Light        ThemeConfig
	ExtraCSS     template.CSS
	EChartsAsset string
	Header       template.HTML
	Controls     template.HTML
	Badges       template.HTML
	Summary      template.HTML
	Chart        template.HTML
	ChartHeight  string
	Toast        template.HTML
	Scripts      template.HTML
}

// headerData holds data for the header template.
type headerData struct {
	Title       string
	Description string
}

// scriptData holds data for the page script.
type scriptData struct {
	Hover []HoverText
}

// controlsData holds data for the controls template.
type controlsData struct {
	Mode      string
	Countries []string
	Country   string
	YearMin   int
	YearMax   int
	Year      int
}

// badgeData holds data for the badge template.
type badgeData struct {
	ID    string
	Label string
	Text  string
}

// summaryData holds data for the summary card template.
type summaryData struct {
	Headline string
	Detail   string
}

// toastData holds data for the toast template.
type toastData struct {
	Message string
	TTL     int64
}

// imageMapData holds data for the raster chart template.
type imageMapData struct {
	Src    string
	Width  int
	Height int
	Areas  []areaData
}

// areaData holds one image-map area.
type areaData struct {
	Index  int
	Shape  string
	Coords string
}
