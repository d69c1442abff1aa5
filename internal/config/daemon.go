package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastui/internal/model"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "300ms", "1m", or integer milliseconds.
// A value of "0" or 0 means use the built-in default.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '300ms', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int64 {
	return time.Duration(d).Milliseconds()
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for toastuid.
// Loaded from ~/.config/toastui/toastuid.toml
type DaemonConfig struct {
	Timeouts  TimeoutConfig   `toml:"timeouts"`
	Animation AnimationConfig `toml:"animation"`
	Display   DisplayConfig   `toml:"display"`
	Theme     ThemeConfig     `toml:"theme"`
	Server    ServerConfig    `toml:"server"`
	Audio     AudioConfig     `toml:"audio"`
	Mirror    MirrorConfig    `toml:"mirror"`
	Bridge    BridgeConfig    `toml:"bridge"`
}

// TimeoutConfig holds the auto-expiry delay per severity.
// Zero falls back to the built-in default for that severity.
type TimeoutConfig struct {
	Success Duration `toml:"success"`
	Error   Duration `toml:"error"`
	Warning Duration `toml:"warning"`
	Info    Duration `toml:"info"`
}

// AnimationConfig holds lifecycle timings.
type AnimationConfig struct {
	EnterDelay Duration `toml:"enter_delay"` // entering -> visible
	Grace      Duration `toml:"grace"`       // leaving -> removed
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	Position   string `toml:"position"`    // "top-right", "top-left", etc.
	Width      int    `toml:"width"`       // Toast width in terminal columns
	Gap        int    `toml:"gap"`         // Blank lines between stacked toasts
	MaxVisible int    `toml:"max_visible"` // 0 = unbounded
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Stylesheet name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Listen         string   `toml:"listen"`
	AllowedOrigins []string `toml:"allowed_origins"` // Websocket origins; empty = same host only
	RateLimit      float64  `toml:"rate_limit"`      // Created toasts per second; 0 = unlimited
	Burst          int      `toml:"burst"`
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-severity sound file paths.
type SoundConfig struct {
	Success string `toml:"success"`
	Error   string `toml:"error"`
	Warning string `toml:"warning"`
	Info    string `toml:"info"`
}

// MirrorConfig controls mirroring toasts to the desktop notification daemon.
type MirrorConfig struct {
	DBus    bool   `toml:"dbus"`
	AppName string `toml:"app_name"`
}

// BridgeConfig controls serving org.freedesktop.Notifications, turning
// desktop notifications into toasts.
type BridgeConfig struct {
	DBus bool `toml:"dbus"`
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// Position represents the surface corner.
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionBottomLeft,
		PositionBottomRight,
	}
}

// Default lifecycle timings.
const (
	DefaultEnterDelay = 100 * time.Millisecond
	DefaultGrace      = 300 * time.Millisecond
	DefaultListen     = "127.0.0.1:7878"
)

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Timeouts: TimeoutConfig{
			Success: Duration(model.DefaultSuccessDuration),
			Error:   Duration(model.DefaultErrorDuration),
			Warning: Duration(model.DefaultWarningDuration),
			Info:    Duration(model.DefaultInfoDuration),
		},
		Animation: AnimationConfig{
			EnterDelay: Duration(DefaultEnterDelay),
			Grace:      Duration(DefaultGrace),
		},
		Display: DisplayConfig{
			Position:   string(PositionTopRight),
			Width:      44,
			Gap:        0,
			MaxVisible: 0,
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
		Server: ServerConfig{
			Listen:    DefaultListen,
			RateLimit: 0,
			Burst:     10,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
		},
		Mirror: MirrorConfig{
			DBus:    false,
			AppName: "toastui",
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() string {
	return filepath.Join(configHome(), "toastui", "toastuid.toml")
}

// LoadDaemonConfig loads the daemon configuration from path, or from
// DaemonConfigPath when path is empty. A missing file yields the defaults.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		path = DaemonConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig writes the daemon configuration to path, or to
// DaemonConfigPath when path is empty.
func SaveDaemonConfig(config *DaemonConfig, path string) error {
	if path == "" {
		path = DaemonConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
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
func (c *DaemonConfig) Validate() error {
	if !slices.Contains(ValidPositions(), Position(c.Display.Position)) {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Display.Position, ValidPositions())
	}
	if !slices.Contains(ValidColorSchemes(), ColorScheme(c.Theme.ColorScheme)) {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	for name, d := range map[string]Duration{
		"timeouts.success":      c.Timeouts.Success,
		"timeouts.error":        c.Timeouts.Error,
		"timeouts.warning":      c.Timeouts.Warning,
		"timeouts.info":         c.Timeouts.Info,
		"animation.enter_delay": c.Animation.EnterDelay,
		"animation.grace":       c.Animation.Grace,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d.Duration())
		}
	}

	if c.Display.Width < 20 || c.Display.Width > 200 {
		return fmt.Errorf("width must be between 20 and 200, got %d", c.Display.Width)
	}
	if c.Display.Gap < 0 || c.Display.Gap > 5 {
		return fmt.Errorf("gap must be between 0 and 5, got %d", c.Display.Gap)
	}
	if c.Display.MaxVisible < 0 || c.Display.MaxVisible > 50 {
		return fmt.Errorf("max_visible must be between 0 and 50, got %d", c.Display.MaxVisible)
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got %g", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be at least 1 when rate_limit is set, got %d", c.Server.Burst)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if c.Mirror.DBus && c.Bridge.DBus {
		return fmt.Errorf("mirror.dbus and bridge.dbus cannot both be enabled")
	}

	return nil
}

// TimeoutFor returns the auto-expiry delay for a severity, falling back to
// the severity's built-in default when unset.
func (c *DaemonConfig) TimeoutFor(sev model.Severity) time.Duration {
	var d Duration
	switch sev.Normalize() {
	case model.SeveritySuccess:
		d = c.Timeouts.Success
	case model.SeverityError:
		d = c.Timeouts.Error
	case model.SeverityWarning:
		d = c.Timeouts.Warning
	case model.SeverityInfo:
		d = c.Timeouts.Info
	default:
		d = c.Timeouts.Info
	}
	if d <= 0 {
		return sev.DefaultDuration()
	}
	return d.Duration()
}

// EnterDelay returns the entering -> visible delay. The entrance is never
// skipped, so an unset or zero value falls back to DefaultEnterDelay.
func (c *DaemonConfig) EnterDelay() time.Duration {
	if c.Animation.EnterDelay <= 0 {
		return DefaultEnterDelay
	}
	return c.Animation.EnterDelay.Duration()
}

// Grace returns the leaving -> removed delay, falling back to DefaultGrace
// when unset or zero.
func (c *DaemonConfig) Grace() time.Duration {
	if c.Animation.Grace <= 0 {
		return DefaultGrace
	}
	return c.Animation.Grace.Duration()
}

// SoundFor returns the sound file path for a severity.
// Expands ~ to home directory.
func (c *DaemonConfig) SoundFor(sev model.Severity) string {
	var path string
	switch sev.Normalize() {
	case model.SeveritySuccess:
		path = c.Audio.Sounds.Success
	case model.SeverityError:
		path = c.Audio.Sounds.Error
	case model.SeverityWarning:
		path = c.Audio.Sounds.Warning
	default:
		path = c.Audio.Sounds.Info
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
