// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/tetratip/internal/popup"
	"github.com/jmylchreest/tetratip/internal/position"
)

// DefaultBusName is the well-known D-Bus name the daemon requests.
const DefaultBusName = "io.github.jmylchreest.Tetratip"

// Config is the configuration for tetratip and tetratipd.
// Loaded from ~/.config/tetratip/tetratip.toml (or .yaml).
type Config struct {
	Tooltip TooltipConfig `toml:"tooltip" yaml:"tooltip"`
	Display DisplayConfig `toml:"display" yaml:"display"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	DBus    DBusConfig    `toml:"dbus" yaml:"dbus"`
}

// TooltipConfig contains popup behaviour settings.
type TooltipConfig struct {
	AnimationInterval Duration `toml:"animation_interval" yaml:"animation_interval"` // "0" disables fading
	AutoClose         Duration `toml:"auto_close" yaml:"auto_close"`
	EnableAutoClose   bool     `toml:"enable_auto_close" yaml:"enable_auto_close"`
	ShowShadow        bool     `toml:"show_shadow" yaml:"show_shadow"`
	Placement         string   `toml:"placement" yaml:"placement"` // "auto", "mouse-pointer", "custom-client", "custom-screen"
	CustomLocation    Point    `toml:"custom_location" yaml:"custom_location"`
}

// Point is a pixel coordinate.
type Point struct {
	X int `toml:"x" yaml:"x"`
	Y int `toml:"y" yaml:"y"`
}

// DisplayConfig contains native window settings.
type DisplayConfig struct {
	Namespace  string `toml:"namespace" yaml:"namespace"`     // Layer-shell namespace
	CursorSize int    `toml:"cursor_size" yaml:"cursor_size"` // 0 = ask the toolkit
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// DBusConfig contains D-Bus service settings.
type DBusConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Name    string `toml:"name" yaml:"name"`
}

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Tooltip: TooltipConfig{
			AnimationInterval: Duration(20 * time.Millisecond),
			AutoClose:         Duration(3 * time.Second),
			EnableAutoClose:   true,
			ShowShadow:        true,
			Placement:         position.Auto.String(),
		},
		Display: DisplayConfig{
			Namespace: "tetratip",
		},
		Log: LogConfig{
			Level: "info",
		},
		DBus: DBusConfig{
			Enabled: true,
			Name:    DefaultBusName,
		},
	}
}

// Path returns the path to the default config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "tetratip", "tetratip.toml"), nil
}

// isYAML reports whether path should be read as YAML rather than TOML.
func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads the configuration from path, or the default path if empty.
// If the file doesn't exist, returns the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Marshal encodes the configuration as TOML, or YAML when asYAML is set.
func (c *Config) Marshal(asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(c)
	}
	return toml.Marshal(c)
}

// Save writes the configuration to path, or the default path if empty.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal(isYAML(path))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Tooltip.AnimationInterval < 0 || c.Tooltip.AnimationInterval.Duration() > time.Second {
		return fmt.Errorf("animation_interval must be between 0 and 1s, got %s", c.Tooltip.AnimationInterval.Duration())
	}
	if c.Tooltip.AutoClose < 0 {
		return fmt.Errorf("auto_close must not be negative, got %s", c.Tooltip.AutoClose.Duration())
	}
	if _, err := position.ParsePlacement(c.Tooltip.Placement); err != nil {
		return fmt.Errorf("invalid placement %q, must be one of: %v", c.Tooltip.Placement, position.ValidPlacements())
	}
	if c.Display.CursorSize < 0 || c.Display.CursorSize > 256 {
		return fmt.Errorf("cursor_size must be between 0 and 256, got %d", c.Display.CursorSize)
	}
	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.DBus.Enabled && c.DBus.Name == "" {
		return errors.New("dbus name must be set when dbus is enabled")
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	if lvl, ok := logLevels[strings.ToLower(l.Level)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// PopupConfig converts the tooltip section into a popup configuration
// snapshot. The placement must already be valid.
func (t TooltipConfig) PopupConfig() popup.Config {
	placement, err := position.ParsePlacement(t.Placement)
	if err != nil {
		placement = position.Auto
	}
	return popup.Config{
		AnimationInterval: t.AnimationInterval.Duration(),
		AutoClose:         t.AutoClose.Duration(),
		EnableAutoClose:   t.EnableAutoClose,
		ShowShadow:        t.ShowShadow,
		Placement:         placement,
		CustomLocation:    image.Pt(t.CustomLocation.X, t.CustomLocation.Y),
	}
}
