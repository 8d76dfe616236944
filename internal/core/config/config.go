// Package config handles configuration loading and validation for taskflow.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taskflowhq/taskflow/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig `yaml:"server"`
	Sound   SoundConfig  `yaml:"sound"`
	TUI     TUIConfig    `yaml:"tui"`
	DataDir string       `yaml:"-"` // set by caller, not from config file
}

// TUIConfig controls terminal UI appearance.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// ServerConfig locates the TaskFlow server. The API and the realtime hubs
// share one base URL; paths default to the server's conventional layout.
type ServerConfig struct {
	BaseURL              string `yaml:"base_url"`
	APIPath              string `yaml:"api_path"`
	ChatHubPath          string `yaml:"chat_hub_path"`
	NotificationsHubPath string `yaml:"notifications_hub_path"`
}

// SoundConfig controls the audible notification alert.
type SoundConfig struct {
	// Enabled: nil means on by default, false disables the alert entirely.
	Enabled *bool `yaml:"enabled"`
}

// On reports whether the notification sound is enabled.
func (s SoundConfig) On() bool {
	return s.Enabled == nil || *s.Enabled
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:              "https://localhost:55358",
			APIPath:              "/api",
			ChatHubPath:          "/hubs/chat",
			NotificationsHubPath: "/hubs/notifications",
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

// Load reads configuration from path, applying defaults for anything unset.
// A missing file is not an error; defaults apply.
func Load(path string, dataDir string) (*Config, error) {
	cfg := Default()
	cfg.DataDir = dataDir

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Server.APIPath == "" {
		c.Server.APIPath = def.Server.APIPath
	}
	if c.Server.ChatHubPath == "" {
		c.Server.ChatHubPath = def.Server.ChatHubPath
	}
	if c.Server.NotificationsHubPath == "" {
		c.Server.NotificationsHubPath = def.Server.NotificationsHubPath
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = def.TUI.Theme
	}
}

// APIBaseURL returns the base URL for REST calls.
func (c *Config) APIBaseURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + c.Server.APIPath
}

// ChatHubURL returns the websocket URL for the chat channel.
func (c *Config) ChatHubURL() string {
	return hubURL(c.Server.BaseURL, c.Server.ChatHubPath)
}

// NotificationsHubURL returns the websocket URL for the notifications channel.
func (c *Config) NotificationsHubURL() string {
	return hubURL(c.Server.BaseURL, c.Server.NotificationsHubPath)
}

// hubURL rewrites the http(s) scheme to ws(s) and appends the hub path.
func hubURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + path
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server.base_url: missing host")
	}
	for name, p := range map[string]string{
		"server.api_path":               c.Server.APIPath,
		"server.chat_hub_path":          c.Server.ChatHubPath,
		"server.notifications_hub_path": c.Server.NotificationsHubPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s: must start with /", name)
		}
	}
	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme: unknown theme %q, available: %v", c.TUI.Theme, styles.ThemeNames())
	}
	return nil
}
