// Package uistate defines the persisted user selections of the chart view
// and how they are stored as string keys.
package uistate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Mode is the chart type.
type Mode string

// Chart modes.
const (
	ModeBar Mode = "bar"
	ModePie Mode = "pie"
)

// Theme is the page color scheme.
type Theme string

// Themes.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Storage keys.
const (
	KeyMode    = "chartMode"
	KeyTheme   = "theme"
	KeyCountry = "country"
	KeyYear    = "year"
)

// Defaults used when a key is absent or unparseable.
const (
	DefaultMode    = ModeBar
	DefaultTheme   = ThemeDark
	DefaultCountry = "Global"
	DefaultYear    = 2025
)

// Validation errors.
var (
	ErrInvalidMode  = errors.New("invalid chart mode")
	ErrInvalidTheme = errors.New("invalid theme")
	ErrInvalidYear  = errors.New("invalid year")
)

// AllKeys lists every persisted key in save order.
var AllKeys = []string{KeyMode, KeyTheme, KeyCountry, KeyYear}

// ParseMode validates a chart mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeBar, ModePie:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Label returns the capitalized mode name.
func (m Mode) Label() string {
	if m == "" {
		return ""
	}

	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// ParseTheme validates a theme.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeDark, ThemeLight:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}

	return ThemeDark
}

// ParseYear parses a persisted year. Zero is rejected.
func ParseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, s)
	}

	return y, nil
}

// State is the current selection.
type State struct {
	Mode    Mode   `json:"mode"`
	Theme   Theme  `json:"theme"`
	Country string `json:"country"`
	Year    int    `json:"year"`
}

// Default returns the state used on first launch.
func Default() State {
	return State{Mode: DefaultMode, Theme: DefaultTheme, Country: DefaultCountry, Year: DefaultYear}
}

// Value returns the string persisted for key.
func (s State) Value(key string) string {
	switch key {
	case KeyMode:
		return string(s.Mode)
	case KeyTheme:
		return string(s.Theme)
	case KeyCountry:
		return s.Country
	case KeyYear:
		return strconv.Itoa(s.Year)
	default:
		return ""
	}
}

// KV is the key-value store the state is persisted into.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Load reads the state from kv over Default.
func Load(ctx context.Context, kv KV) (State, error) {
	return LoadOver(ctx, kv, Default())
}

// LoadOver reads the state from kv. Missing or invalid values keep their
// value from base; an unknown country is kept as-is. Backend errors are
// returned together with base.
func LoadOver(ctx context.Context, kv KV, base State) (State, error) {
	s := base

	raw := make(map[string]string, len(AllKeys))

	for _, key := range AllKeys {
		v, ok, err := kv.Get(ctx, key)
		if err != nil {
			return s, fmt.Errorf("load %s: %w", key, err)
		}

		if ok {
			raw[key] = v
		}
	}

	if m, err := ParseMode(raw[KeyMode]); err == nil {
		s.Mode = m
	}

	if t, err := ParseTheme(raw[KeyTheme]); err == nil {
		s.Theme = t
	}

	if c := raw[KeyCountry]; c != "" {
		s.Country = c
	}

	if y, err := ParseYear(raw[KeyYear]); err == nil {
		s.Year = y
	}

	return s, nil
}

// Save writes the given keys of s to kv, in order. With no keys it writes
// all of them.
func Save(ctx context.Context, kv KV, s State, keys ...string) error {
	if len(keys) == 0 {
		keys = AllKeys
	}

	for _, key := range keys {
		err := kv.Set(ctx, key, s.Value(key))
		if err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}
