package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"campusevents/internal/eventbus"
)

const (
	DefaultBaseURL      = "https://stonybrook.campuslabs.com"
	DefaultImageBaseURL = "https://se-images.campuslabs.com"
	DefaultPageSize     = 100
	DefaultTimeout      = 20
	DefaultDebounceMS   = 200
	DefaultPageRows     = 5
	DefaultLogFile      = "campusevents.log"
)

// Config represents the application configuration
type Config struct {
	Version int                `toml:"version"`
	API     APIConfig          `toml:"api"`
	Search  SearchConfig       `toml:"search"`
	UI      UISettings         `toml:"ui"`
	Log     LogConfig          `toml:"log"`
	Links   map[string]AppLink `toml:"links"` // service name -> store/web links
}

// APIConfig describes the remote events endpoint
type APIConfig struct {
	BaseURL        string `toml:"base_url" env:"CAMPUSEVENTS_BASE_URL"`
	ImageBaseURL   string `toml:"image_base_url" env:"CAMPUSEVENTS_IMAGE_BASE_URL"`
	PageSize       int    `toml:"page_size" env:"CAMPUSEVENTS_PAGE_SIZE"`
	TimeoutSeconds int    `toml:"timeout_seconds" env:"CAMPUSEVENTS_TIMEOUT_SECONDS"`
}

// SearchConfig tunes the search box
type SearchConfig struct {
	DebounceMS int `toml:"debounce_ms" env:"CAMPUSEVENTS_DEBOUNCE_MS"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	PageRows   int    `toml:"page_rows" env:"CAMPUSEVENTS_PAGE_ROWS"` // cards rendered per page
	ShowImages bool   `toml:"show_images" env:"CAMPUSEVENTS_SHOW_IMAGES"`
	Timezone   string `toml:"timezone" env:"CAMPUSEVENTS_TIMEZONE"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level    string `toml:"level" env:"CAMPUSEVENTS_LOG_LEVEL"`
	Encoding string `toml:"encoding" env:"CAMPUSEVENTS_LOG_ENCODING"`
	File     string `toml:"file" env:"CAMPUSEVENTS_LOG_FILE"`
}

// AppLink holds the store and web links for one campus service app
type AppLink struct {
	IOS        string `toml:"ios"`
	Android    string `toml:"android"`
	Web        string `toml:"web,omitempty"`
	WebIOS     string `toml:"web_ios,omitempty"`
	WebAndroid string `toml:"web_android,omitempty"`
	Browser    string `toml:"browser,omitempty"`
}

// Timeout returns the per-request timeout
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Debounce returns the search debounce window
func (c SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Location resolves the display timezone, falling back to local time
func (s UISettings) Location() *time.Location {
	if s.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns $XDG_CONFIG_HOME/campusevents/config.toml (or a home-based fallback)
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "campusevents", "config.toml")
}

// NewConfigService creates a config service bound to path ("" means DefaultPath)
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, falling back to defaults when the
// file does not exist. Environment overrides are applied last.
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
		cfg.Normalize()
	} else if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// Normalize fills in missing or invalid values with defaults
func (c *Config) Normalize() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.ImageBaseURL == "" {
		c.API.ImageBaseURL = DefaultImageBaseURL
	}
	if c.API.PageSize <= 0 {
		c.API.PageSize = DefaultPageSize
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = DefaultTimeout
	}
	if c.Search.DebounceMS < 0 {
		c.Search.DebounceMS = DefaultDebounceMS
	}
	if c.UI.PageRows <= 0 {
		c.UI.PageRows = DefaultPageRows
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		c.Log.Encoding = "console"
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
	if c.Links == nil {
		c.Links = DefaultLinks()
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL:        DefaultBaseURL,
			ImageBaseURL:   DefaultImageBaseURL,
			PageSize:       DefaultPageSize,
			TimeoutSeconds: DefaultTimeout,
		},
		Search: SearchConfig{DebounceMS: DefaultDebounceMS},
		UI: UISettings{
			PageRows:   DefaultPageRows,
			ShowImages: false,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
			File:     DefaultLogFile,
		},
		Links: DefaultLinks(),
	}
}

// DefaultLinks returns the campus service app links
func DefaultLinks() map[string]AppLink {
	return map[string]AppLink{
		"fitness": {
			IOS:        "itms-apps://itunes.apple.com/us/app/sbu-recreation-and-wellness/id1534915719",
			Android:    "market://details?id=com.innosoftfusiongo.stonybrookuniversity",
			WebIOS:     "https://apps.apple.com/us/app/sbu-recreation-and-wellness/id1534915719",
			WebAndroid: "https://play.google.com/store/apps/details?id=com.innosoftfusiongo.stonybrookuniversity",
		},
		"printing": {
			IOS:        "itms-apps://itunes.apple.com/us/app/pharos-print/id918145672",
			Android:    "market://details?id=com.pharossystems.pharosprint",
			WebIOS:     "https://apps.apple.com/us/app/pharos-print/id918145672",
			WebAndroid: "https://play.google.com/store/apps/details?id=com.pharossystems.pharosprint",
			Browser:    "https://print.stonybrook.edu",
		},
		"bus": {
			IOS:     "itms-apps://itunes.apple.com/app/eta-spot/id1021211544",
			Android: "market://details?id=com.etatransit",
			Web:     "https://stonybrook.edu/etaspot",
		},
		"bike": {
			IOS:        "itms-apps://itunes.apple.com/app/pbsc/id557237724",
			Android:    "market://details?id=pbsc.bikes",
			WebIOS:     "https://apps.apple.com/ca/app/pbsc/id557237724",
			WebAndroid: "https://play.google.com/store/apps/details?id=pbsc.bikes",
		},
		"dining-get": {
			IOS:        "itms-apps://itunes.apple.com/us/app/get-mobile/id844091049",
			Android:    "market://details?id=com.cbord.get",
			WebIOS:     "https://apps.apple.com/us/app/get-mobile/id844091049",
			WebAndroid: "https://play.google.com/store/apps/details?id=com.cbord.get",
		},
		"dining-nutrislice": {
			IOS:        "itms-apps://itunes.apple.com/us/app/nutrislice/id567183091",
			Android:    "market://details?id=com.nutrislice.schoollunch",
			WebIOS:     "https://apps.apple.com/us/app/nutrislice/id567183091",
			WebAndroid: "https://play.google.com/store/apps/details?id=com.nutrislice.schoollunch",
		},
	}
}
