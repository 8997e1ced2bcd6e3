package plotpage

// Theme represents a color theme for the page and its chart.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ThemeConfig holds all theme-specific styling values.
type ThemeConfig struct {
	// Base colors.
	Background string
	Surface    string
	Border     string

	// Text colors.
	TextPrimary   string
	TextSecondary string
	TextMuted     string

	// Accent colors.
	Accent       string
	AccentSubtle string
	AccentText   string

	// Toast colors.
	ToastBackground string
	ToastText       string

	// Chart-specific.
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// ECharts theme name.
	EChartsTheme string
}

// ParseTheme maps a stored theme name to a Theme. Unknown names are dark.
func ParseTheme(name string) Theme {
	if Theme(name) == ThemeLight {
		return ThemeLight
	}

	return ThemeDark
}

// GetThemeConfig returns the configuration for a given theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	switch theme {
	case ThemeLight:
		return lightTheme
	case ThemeDark:
		return darkTheme
	default:
		return darkTheme
	}
}

var darkTheme = ThemeConfig{
	Background: "#0b1020",
	Surface:    "#141a2e",
	Border:     "#232b45",

	TextPrimary:   "#e8ecf8",
	TextSecondary: "#b7c0dc",
	TextMuted:     "#7d88aa",

	Accent:       "#05E1FF",
	AccentSubtle: "#0b3a4a",
	AccentText:   "#04121a",

	ToastBackground: "#1f2740",
	ToastText:       "#e8ecf8",

	ChartBackground: "transparent",
	ChartGrid:       "#232b45",
	ChartAxis:       "#3a4466",
	ChartText:       "#b7c0dc",
	ChartTextMuted:  "#7d88aa",

	EChartsTheme: "",
}

var lightTheme = ThemeConfig{
	Background: "#f4f6fb",
	Surface:    "#ffffff",
	Border:     "#dde2ee",

	TextPrimary:   "#121726",
	TextSecondary: "#384260",
	TextMuted:     "#6b7593",

	Accent:       "#0091b3",
	AccentSubtle: "#d7f6fd",
	AccentText:   "#ffffff",

	ToastBackground: "#121726",
	ToastText:       "#f4f6fb",

	ChartBackground: "transparent",
	ChartGrid:       "#e4e8f2",
	ChartAxis:       "#b8c0d6",
	ChartText:       "#384260",
	ChartTextMuted:  "#6b7593",

	EChartsTheme: "",
}
