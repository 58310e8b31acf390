package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jgoulah/pumplog/internal/feed"
)

const (
	DefaultSheetID    = "1tXVmhvaNf9vClVWidGftayzfFK3ZThGhBu1d93BzOrw"
	DefaultSheetName  = "Formularantworten 2"
	DefaultTimeout    = 30 * time.Second
	DefaultAddr       = ":8080"
	DefaultWidth      = 600
	DefaultHeight     = 300
	DefaultUnit       = "ml"
	DefaultMQTTPrefix = "pumplog"
)

// Config holds the application configuration
type Config struct {
	Feed          FeedConfig   `yaml:"feed"`
	Timezone      string       `yaml:"timezone,omitempty"` // IANA name, empty means local time
	Server        ServerConfig `yaml:"server"`
	Charts        ChartsConfig `yaml:"charts"`
	Unit          string       `yaml:"unit,omitempty"`
	Log           LogConfig    `yaml:"log"`
	HomeAssistant HAConfig     `yaml:"home_assistant,omitempty"`
	MQTT          MQTTConfig   `yaml:"mqtt,omitempty"`
}

// FeedConfig locates the form-response spreadsheet
type FeedConfig struct {
	SheetID   string `yaml:"sheet_id,omitempty"`
	SheetName string `yaml:"sheet_name,omitempty"`
	URL       string `yaml:"url,omitempty"` // overrides sheet_id/sheet_name when set
	// Timeout bounds one fetch. Nil means DefaultTimeout, 0 disables it.
	Timeout *time.Duration `yaml:"timeout,omitempty"`
}

// ServerConfig holds the HTTP dashboard settings
type ServerConfig struct {
	Addr            string        `yaml:"addr,omitempty"`
	RefreshInterval time.Duration `yaml:"refresh_interval,omitempty"` // 0 rebuilds on every page load
}

// ChartsConfig holds the default chart surface size
type ChartsConfig struct {
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://homeassistant.local:5050"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.pumped_milk_daily"
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// Starter returns a config with every default spelled out, for `pumplog init`
func Starter() *Config {
	timeout := DefaultTimeout
	return &Config{
		Feed: FeedConfig{
			SheetID:   DefaultSheetID,
			SheetName: DefaultSheetName,
			Timeout:   &timeout,
		},
		Server: ServerConfig{Addr: DefaultAddr},
		Charts: ChartsConfig{Width: DefaultWidth, Height: DefaultHeight},
		Unit:   DefaultUnit,
		Log:    LogConfig{Level: "info"},
		HomeAssistant: HAConfig{
			EntityID: "sensor.pumped_milk_daily",
		},
		MQTT: MQTTConfig{TopicPrefix: DefaultMQTTPrefix},
	}
}

// ApplyEnv overrides file values with environment variables. Call it after
// loading .env so both sources are seen.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PUMPLOG_FEED_URL"); v != "" {
		c.Feed.URL = v
	}
	if v := os.Getenv("PUMPLOG_HA_TOKEN"); v != "" {
		c.HomeAssistant.Token = v
	}
	if v := os.Getenv("PUMPLOG_MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// GetFeedURL returns the explicit feed URL, or the CSV export URL of the
// configured sheet
func (c *Config) GetFeedURL() string {
	if c.Feed.URL != "" {
		return c.Feed.URL
	}
	id := c.Feed.SheetID
	if id == "" {
		id = DefaultSheetID
	}
	name := c.Feed.SheetName
	if name == "" {
		name = DefaultSheetName
	}
	return feed.SheetURL(id, name)
}

// GetTimeout returns the fetch timeout with a default of 30 seconds
func (c *Config) GetTimeout() time.Duration {
	if c.Feed.Timeout == nil || *c.Feed.Timeout < 0 {
		return DefaultTimeout
	}
	return *c.Feed.Timeout
}

// GetAddr returns the listen address with a default of :8080
func (c *Config) GetAddr() string {
	if c.Server.Addr == "" {
		return DefaultAddr
	}
	return c.Server.Addr
}

// GetLocation resolves the configured timezone, falling back to local time
func (c *Config) GetLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GetChartSize returns the default chart surface size
func (c *Config) GetChartSize() (width, height int) {
	width, height = c.Charts.Width, c.Charts.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return width, height
}

// GetUnit returns the display unit for amounts
func (c *Config) GetUnit() string {
	if c.Unit == "" {
		return DefaultUnit
	}
	return c.Unit
}

// GetTopicPrefix returns the MQTT topic prefix with a default of "pumplog"
func (c MQTTConfig) GetTopicPrefix() string {
	if c.TopicPrefix == "" {
		return DefaultMQTTPrefix
	}
	return c.TopicPrefix
}
