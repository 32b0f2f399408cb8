package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/example/treewarden/internal/core/bounds"
)

// Environment overrides.
const (
	EnvToken       = "TREEWARDEN_OSM_TOKEN"
	EnvOverpassURL = "TREEWARDEN_OVERPASS_URL"
	EnvOSMAPIURL   = "TREEWARDEN_OSM_API_URL"
	EnvHome        = "TREEWARDEN_HOME"
)

const (
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"
	DefaultOSMAPIURL   = "https://api.openstreetmap.org"
	currentVersion     = "1"
)

// Config is the TreeWarden configuration stored in config.json.
type Config struct {
	Version     string      `json:"version"`
	OverpassURL string      `json:"overpass_url"`
	OSMAPIURL   string      `json:"osm_api_url"`
	AccessToken string      `json:"access_token,omitempty"`
	Username    string      `json:"username,omitempty"`
	UserID      int64       `json:"user_id,omitempty"`
	Fetch       FetchConfig `json:"fetch"`
	Viewport    *Viewport   `json:"viewport,omitempty"` // last viewed area

	fileToken    string
	tokenFromEnv bool
}

// FetchConfig tunes the fetch scheduler.
type FetchConfig struct {
	BoundsExpansion        float64 `json:"bounds_expansion"`
	OrchardOverscan        float64 `json:"orchard_overscan"`
	CenterShiftRatio       float64 `json:"center_shift_ratio"`
	ZoomRatio              float64 `json:"zoom_ratio"`
	OrchardPanDegrees      float64 `json:"orchard_pan_degrees"`
	OrchardLogSize         float64 `json:"orchard_log_size"`
	FruitTreeZoomThreshold int     `json:"fruit_tree_zoom_threshold"`
	TimeoutSeconds         int     `json:"timeout_seconds"`
	WatchdogSeconds        int     `json:"watchdog_seconds"`
	MaxResponseBytes       int64   `json:"max_response_bytes"`
}

// Viewport is the last area requested with `treewarden view`.
type Viewport struct {
	Bounds string `json:"bounds"`
	Zoom   int    `json:"zoom,omitempty"`
}

// DefaultFetchConfig returns the stock scheduler tuning.
func DefaultFetchConfig() FetchConfig {
	th := bounds.DefaultThresholds()
	area := bounds.DefaultAreaThresholds()
	return FetchConfig{
		BoundsExpansion:        0.25,
		OrchardOverscan:        4.5,
		CenterShiftRatio:       th.CenterShiftRatio,
		ZoomRatio:              th.ZoomRatio,
		OrchardPanDegrees:      area.PanDegrees,
		OrchardLogSize:         area.LogSize,
		FruitTreeZoomThreshold: 13,
		TimeoutSeconds:         10,
		WatchdogSeconds:        30,
		MaxResponseBytes:       5 * 1024 * 1024,
	}
}

// DefaultConfig returns a config with every field filled.
func DefaultConfig() *Config {
	return &Config{
		Version:     currentVersion,
		OverpassURL: DefaultOverpassURL,
		OSMAPIURL:   DefaultOSMAPIURL,
		Fetch:       DefaultFetchConfig(),
	}
}

// Timeout is the transport timeout of one fetch.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Watchdog is the hard limit after which a fetch is abandoned.
func (f FetchConfig) Watchdog() time.Duration {
	return time.Duration(f.WatchdogSeconds) * time.Second
}

// Thresholds returns the point-fetch hysteresis.
func (f FetchConfig) Thresholds() bounds.Thresholds {
	return bounds.Thresholds{CenterShiftRatio: f.CenterShiftRatio, ZoomRatio: f.ZoomRatio}
}

// AreaThresholds returns the orchard-fetch hysteresis.
func (f FetchConfig) AreaThresholds() bounds.AreaThresholds {
	return bounds.AreaThresholds{PanDegrees: f.OrchardPanDegrees, LogSize: f.OrchardLogSize}
}

// Dir returns the TreeWarden state directory: $TREEWARDEN_HOME or ~/.treewarden.
func Dir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".treewarden"), nil
}

// LoadConfig reads config.json from dir. A missing file yields the defaults.
// Zero fields are filled from the defaults and environment overrides applied.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.fillDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// SaveConfig writes config.json to dir. A token taken from the environment is not written.
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	out := *cfg
	if cfg.tokenFromEnv {
		out.AccessToken = cfg.fileToken
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold an access token.
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) fillDefaults() {
	d := DefaultFetchConfig()
	f := &c.Fetch
	if c.Version == "" {
		c.Version = currentVersion
	}
	if c.OverpassURL == "" {
		c.OverpassURL = DefaultOverpassURL
	}
	if c.OSMAPIURL == "" {
		c.OSMAPIURL = DefaultOSMAPIURL
	}
	if f.BoundsExpansion <= 0 {
		f.BoundsExpansion = d.BoundsExpansion
	}
	if f.OrchardOverscan <= 0 {
		f.OrchardOverscan = d.OrchardOverscan
	}
	if f.CenterShiftRatio <= 0 {
		f.CenterShiftRatio = d.CenterShiftRatio
	}
	if f.ZoomRatio <= 1 {
		f.ZoomRatio = d.ZoomRatio
	}
	if f.OrchardPanDegrees <= 0 {
		f.OrchardPanDegrees = d.OrchardPanDegrees
	}
	if f.OrchardLogSize <= 0 {
		f.OrchardLogSize = d.OrchardLogSize
	}
	if f.FruitTreeZoomThreshold <= 0 {
		f.FruitTreeZoomThreshold = d.FruitTreeZoomThreshold
	}
	if f.TimeoutSeconds <= 0 {
		f.TimeoutSeconds = d.TimeoutSeconds
	}
	if f.WatchdogSeconds <= 0 {
		f.WatchdogSeconds = d.WatchdogSeconds
	}
	if f.MaxResponseBytes <= 0 {
		f.MaxResponseBytes = d.MaxResponseBytes
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.fileToken = c.AccessToken
		c.tokenFromEnv = true
		c.AccessToken = v
	}
	if v := os.Getenv(EnvOverpassURL); v != "" {
		c.OverpassURL = v
	}
	if v := os.Getenv(EnvOSMAPIURL); v != "" {
		c.OSMAPIURL = v
	}
}

// SetAccessToken replaces the stored token. A token from the environment keeps
// precedence for the running process.
func (c *Config) SetAccessToken(token string) {
	c.fileToken = token
	if !c.tokenFromEnv {
		c.AccessToken = token
	}
}

// ViewportBounds parses the stored viewport, if any.
func (c *Config) ViewportBounds() (*bounds.Box, int, error) {
	if c.Viewport == nil || c.Viewport.Bounds == "" {
		return nil, 0, nil
	}
	b, err := bounds.Parse(c.Viewport.Bounds)
	if err != nil {
		return nil, 0, fmt.Errorf("stored viewport %s: %w", strconv.Quote(c.Viewport.Bounds), err)
	}
	return &b, c.Viewport.Zoom, nil
}
