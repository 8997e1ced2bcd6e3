package config

import "time"

// Server defaults.
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// Storage defaults.
const (
	DefaultStorageBackend = "file"
	DefaultStoragePath    = ".sharechart-state.json"
)

// Source defaults.
const (
	DefaultSourceEndpoint = "https://example.com/api/marketshare"
	DefaultSourceTimeout  = 5 * time.Second
)

// Render defaults.
const (
	DefaultRenderEngine      = EngineECharts
	DefaultRenderWidth       = 800
	DefaultRenderHeight      = 450
	DefaultAnimationDuration = 900 * time.Millisecond
	DefaultAnimationEasing   = "easeOutQuart"
)

// Cache defaults.
const (
	DefaultCacheMaxSize = "16MB"
)

// UI defaults.
const (
	DefaultUIMode    = "bar"
	DefaultUITheme   = "dark"
	DefaultUICountry = "Global"
	DefaultUIYear    = 2025
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatText
)
