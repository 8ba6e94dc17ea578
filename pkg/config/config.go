package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for freegrab
type Config struct {
	// Remote endpoints and HTTP behaviour
	Marketplace MarketplaceConfig `yaml:"marketplace" json:"marketplace"`

	// Caller credential
	Session SessionConfig `yaml:"session" json:"session"`

	// Catalog search filters
	Search SearchConfig `yaml:"search" json:"search"`

	Output OutputConfig `yaml:"output" json:"output"`

	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// MarketplaceConfig holds the base URLs of every remote service the tool talks to
type MarketplaceConfig struct {
	CatalogURL     string        `yaml:"catalog_url" json:"catalog_url"`
	UsersURL       string        `yaml:"users_url" json:"users_url"`
	InventoryURL   string        `yaml:"inventory_url" json:"inventory_url"`
	EconomyURL     string        `yaml:"economy_url" json:"economy_url"`
	WebURL         string        `yaml:"web_url" json:"web_url"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// SessionConfig holds the caller's session credential
type SessionConfig struct {
	Auth    string `yaml:"auth" json:"auth"`
	Account string `yaml:"account" json:"account"`
}

// SearchConfig holds the optional catalog filters
type SearchConfig struct {
	Category    string `yaml:"category" json:"category"`
	Subcategory string `yaml:"subcategory" json:"subcategory"`
}

// OutputConfig controls terminal rendering
type OutputConfig struct {
	Color      bool `yaml:"color" json:"color"`
	Hyperlinks bool `yaml:"hyperlinks" json:"hyperlinks"`
}

// NotificationConfig holds desktop notification preferences
type NotificationConfig struct {
	Enabled     bool `yaml:"enabled" json:"enabled"`
	OnComplete  bool `yaml:"on_complete" json:"on_complete"`
	OnRateLimit bool `yaml:"on_rate_limit" json:"on_rate_limit"`
}

// MetricsConfig controls the optional prometheus listener
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Marketplace: MarketplaceConfig{
			CatalogURL:     "https://catalog.roblox.com",
			UsersURL:       "https://users.roblox.com",
			InventoryURL:   "https://inventory.roblox.com",
			EconomyURL:     "https://economy.roblox.com",
			WebURL:         "https://www.roblox.com",
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			RequestTimeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Color:      true,
			Hyperlinks: true,
		},
		Notifications: NotificationConfig{
			Enabled:     false,
			OnComplete:  true,
			OnRateLimit: false,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Pretty: true,
		},
	}
}

// LoadFromEnv loads configuration from FREEGRAB_* environment variables
func (c *Config) LoadFromEnv() error {
	if auth := os.Getenv("FREEGRAB_AUTH"); auth != "" {
		c.Session.Auth = auth
	}
	if account := os.Getenv("FREEGRAB_ACCOUNT"); account != "" {
		c.Session.Account = account
	}
	if category := os.Getenv("FREEGRAB_CATEGORY"); category != "" {
		c.Search.Category = category
	}
	if subcategory := os.Getenv("FREEGRAB_SUBCATEGORY"); subcategory != "" {
		c.Search.Subcategory = subcategory
	}
	if userAgent := os.Getenv("FREEGRAB_USER_AGENT"); userAgent != "" {
		c.Marketplace.UserAgent = userAgent
	}
	if timeout := os.Getenv("FREEGRAB_REQUEST_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid FREEGRAB_REQUEST_TIMEOUT: %w", err)
		}
		c.Marketplace.RequestTimeout = d
	}
	if addr := os.Getenv("FREEGRAB_METRICS_ADDR"); addr != "" {
		c.Metrics.ListenAddr = addr
	}
	if notify := os.Getenv("FREEGRAB_NOTIFICATIONS_ENABLED"); notify != "" {
		c.Notifications.Enabled = strings.ToLower(notify) == "true"
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.Output.Color = false
	}
	if logLevel := os.Getenv("FREEGRAB_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("FREEGRAB_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for a config file in standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".freegrab.yaml",
		".freegrab.yml",
		filepath.Join(home, ".config", "freegrab", "config.yaml"),
		filepath.Join(home, ".config", "freegrab", "config.yml"),
		filepath.Join(home, ".freegrab.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. The credential is not
// checked here; it may still be resolved from a credential store.
func (c *Config) Validate() error {
	var errs []error

	urls := map[string]string{
		"catalog_url":   c.Marketplace.CatalogURL,
		"users_url":     c.Marketplace.UsersURL,
		"inventory_url": c.Marketplace.InventoryURL,
		"economy_url":   c.Marketplace.EconomyURL,
		"web_url":       c.Marketplace.WebURL,
	}
	for _, name := range []string{"catalog_url", "users_url", "inventory_url", "economy_url", "web_url"} {
		if urls[name] == "" {
			errs = append(errs, fmt.Errorf("marketplace %s is required", name))
		}
	}

	if c.Marketplace.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map override.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if auth, ok := flags["auth"].(string); ok && auth != "" {
		c.Session.Auth = auth
	}
	if category, ok := flags["category"].(string); ok {
		c.Search.Category = category
	}
	if subcategory, ok := flags["subcategory"].(string); ok {
		c.Search.Subcategory = subcategory
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noColor, ok := flags["no-color"].(bool); ok && noColor {
		c.Output.Color = false
		c.Output.Hyperlinks = false
	}
	if addr, ok := flags["metrics-addr"].(string); ok && addr != "" {
		c.Metrics.ListenAddr = addr
	}
	if notify, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = notify
	}
}

// Load loads configuration from all sources with proper precedence:
// flags > environment > .env files > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".freegrab.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
