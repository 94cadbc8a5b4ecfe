// Package config defines process configuration for the report server and
// the roadreport CLI.
//
// Conventions:
// - New() returns defaults; Load(ctx) layers a YAML file and env vars on top.
// - Validation errors wrap ErrInvalidConfig.
package config

// Capacity policies accepted by capacity_policy.
const (
	PolicyRejectAll    = "reject_all"
	PolicyAcceptPrefix = "accept_prefix"
)

// MaxPhotosLimit is the most photos a single report may carry.
const MaxPhotosLimit = 10

// Store backends accepted by store.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// Addr configures the report server listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIBaseURL is the report store the CLI talks to.
	APIBaseURL string `koanf:"api_base_url"`
	// DetectBaseURL is the detection service; empty means APIBaseURL.
	DetectBaseURL string `koanf:"detect_base_url"`
	// HTTPTimeoutMS bounds every remote call.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// MaxPhotos caps the staging store.
	MaxPhotos int `koanf:"max_photos"`
	// CapacityPolicy is reject_all or accept_prefix.
	CapacityPolicy string `koanf:"capacity_policy"`
	// MaxImageBytes rejects larger photos at encoding time.
	MaxImageBytes int64 `koanf:"max_image_bytes"`
	// PreviewDir holds preview thumbnails; empty means the OS temp dir.
	PreviewDir string `koanf:"preview_dir"`
	// PreviewSize is the thumbnail edge in pixels.
	PreviewSize int `koanf:"preview_size"`

	// RecentLimit and HistoryLimit are the two ticket list page sizes.
	RecentLimit  int `koanf:"recent_limit"`
	HistoryLimit int `koanf:"history_limit"`
	// MaxListLimit caps GET /api/tickets?limit on the server.
	MaxListLimit int `koanf:"max_list_limit"`

	// OutcomeQueueSize bounds undelivered pipeline outcomes.
	OutcomeQueueSize int `koanf:"outcome_queue_size"`

	// Store selects the server ticket store: memory or sqlite.
	Store string `koanf:"store"`
	// SQLitePath is the database file used when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		APIBaseURL:       "http://localhost:9080",
		HTTPTimeoutMS:    30_000,
		MaxPhotos:        10,
		CapacityPolicy:   PolicyRejectAll,
		MaxImageBytes:    10 << 20,
		PreviewSize:      256,
		RecentLimit:      5,
		HistoryLimit:     50,
		MaxListLimit:     100,
		OutcomeQueueSize: 64,
		Store:            StoreMemory,
		SQLitePath:       "roadreport.db",
	}
}

// DetectURL returns the detection service base URL.
func (c *Config) DetectURL() string {
	if c.DetectBaseURL != "" {
		return c.DetectBaseURL
	}
	return c.APIBaseURL
}
