// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultServer        = "http://" + DefaultListen
	DefaultFormat        = "plain"
	DefaultClientTimeout = 5 * time.Second
	DefaultMessageLength = 60
)

// Config represents the toastui CLI configuration.
type Config struct {
	Client    ClientConfig    `toml:"client"`
	Output    OutputConfig    `toml:"output"`
	TUI       TUIConfig       `toml:"tui"`
	Clipboard ClipboardConfig `toml:"clipboard"`
}

// ClientConfig holds how the CLI reaches toastuid.
type ClientConfig struct {
	Server  string   `toml:"server"`
	Timeout Duration `toml:"timeout"`
}

// OutputConfig holds defaults for list output.
type OutputConfig struct {
	Format        string `toml:"format"`         // plain, json, yaml, ids
	MessageLength int    `toml:"message_length"` // Truncation for plain output
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	ShowHelp bool   `toml:"show_help"`
	Position string `toml:"position"`
}

// ClipboardConfig holds clipboard settings.
type ClipboardConfig struct {
	Command string `toml:"command"` // Empty = auto-detect wl-copy, xclip or xsel
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Server:  DefaultServer,
			Timeout: Duration(DefaultClientTimeout),
		},
		Output: OutputConfig{
			Format:        DefaultFormat,
			MessageLength: DefaultMessageLength,
		},
		TUI: TUIConfig{
			ShowHelp: true,
			Position: string(PositionTopRight),
		},
	}
}

// configHome returns XDG_CONFIG_HOME, or ~/.config when unset.
func configHome() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return dir
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	return filepath.Join(configHome(), "toastui", "config.toml")
}

// ThemesDir returns the directory searched for user stylesheets.
func ThemesDir() string {
	return filepath.Join(configHome(), "toastui", "themes")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
