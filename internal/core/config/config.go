// Package config handles configuration loading and validation for
// tdsctl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/activus-tech/tdsctl/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	// Server is the base URL of the approval server, without a
	// trailing slash.
	Server ServerConfig `yaml:"server"`
	// Downloads configures where fetched documents land and how they
	// are opened.
	Downloads DownloadsConfig `yaml:"downloads"`
	TUI       TUIConfig       `yaml:"tui"`
	DataDir   string          `yaml:"-"` // set by caller, not from config file
}

// ServerConfig holds connection settings for the approval server.
type ServerConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DownloadsConfig holds document download settings.
type DownloadsConfig struct {
	// Dir is where downloaded documents are written. Defaults to
	// <data-dir>/downloads.
	Dir string `yaml:"dir"`
	// Opener is the command used to open a downloaded document in a
	// viewer. Empty disables opening; the saved path is printed
	// instead.
	Opener string `yaml:"opener"`
}

// TUIConfig holds interactive-mode settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL:            "http://localhost:8080",
			TimeoutSeconds: 30,
		},
		Downloads: DownloadsConfig{
			Opener: defaultOpener(),
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

func defaultOpener() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}

// Load reads configuration from the given path and sets the data
// directory. If configPath is empty or doesn't exist, returns defaults
// with the provided dataDir. A .env file in the working directory is
// applied first so TDSCTL_* variables can override the file.
func Load(configPath, dataDir string) (*Config, error) {
	// Missing .env is the normal case; only real values matter.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if v := os.Getenv("TDSCTL_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = defaults.Server.TimeoutSeconds
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.Downloads.Dir == "" {
		c.Downloads.Dir = filepath.Join(c.DataDir, "downloads")
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url cannot be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Server.TimeoutSeconds < 1 {
		return fmt.Errorf("server.timeout_seconds must be at least 1")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("unknown theme %q, valid themes: %v", c.TUI.Theme, styles.ThemeNames())
	}

	return nil
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "tdsctl.log")
}
