package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CalendarConfig describes a single calendar file feeding the day view.
type CalendarConfig struct {
	// Path is the location of the .ics file on disk.
	Path string `yaml:"path" json:"path"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
	// Color is the tile fill color (any SVG color value).
	Color string `yaml:"color" json:"color"`
}

// ViewConfig holds the day-view geometry handed to the layout engine.
type ViewConfig struct {
	// RegionWidth is the total rendering width in pixels, hours column included.
	RegionWidth float64 `yaml:"region_width" json:"region_width"`

	// HeightPerMinute is the vertical pixel scale per minute of elapsed time.
	HeightPerMinute float64 `yaml:"height_per_minute" json:"height_per_minute"`

	// SlotMinutes is the slot granularity policy. Supported values:
	// 5, 15, 30, 60. Unknown values fall back to 30.
	SlotMinutes int `yaml:"slot_minutes" json:"slot_minutes"`

	// HoursColumnWidth is the left margin reserved for time labels.
	HoursColumnWidth float64 `yaml:"hours_column_width" json:"hours_column_width"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// driving periodic preview re-rendering in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// PreviewPath is where the rendered preview PNG is written and served from.
	PreviewPath string `yaml:"preview_path" json:"preview_path"`

	// View is the day-view geometry.
	View ViewConfig `yaml:"view" json:"view"`

	// Calendars is the list of calendar file sources.
	Calendars []CalendarConfig `yaml:"calendars" json:"calendars"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		RefreshCron: "*/15 * * * *",
		PreviewPath: "./cache/preview.png",
		View: ViewConfig{
			RegionWidth:      660,
			HeightPerMinute:  1,
			SlotMinutes:      30,
			HoursColumnWidth: 60,
		},
		Calendars: []CalendarConfig{},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.PreviewPath == "" {
		c.PreviewPath = "./cache/preview.png"
	}
	if c.View.RegionWidth <= 0 {
		c.View.RegionWidth = 660
	}
	if c.View.HeightPerMinute <= 0 {
		c.View.HeightPerMinute = 1
	}
	switch c.View.SlotMinutes {
	case 5, 15, 30, 60:
		// ok
	default:
		c.View.SlotMinutes = 30
	}
	if c.View.HoursColumnWidth < 0 {
		c.View.HoursColumnWidth = 0
	}
	// The hours column must leave room for event tiles.
	if c.View.HoursColumnWidth >= c.View.RegionWidth {
		c.View.HoursColumnWidth = 0
	}
	if c.Calendars == nil {
		c.Calendars = []CalendarConfig{}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".dayview-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
