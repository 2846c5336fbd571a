// Package config loads tetrawell settings from a YAML file found through the
// XDG base directories.
package config

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"tetrawell/internal/piece"
)

// RelPath is the config file location relative to an XDG config directory.
const RelPath = "tetrawell/config.yaml"

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "TETRAWELL_CONFIG"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// InvalidConfig describes one rejected setting.
type InvalidConfig struct {
	Field  string
	Reason string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

func (e *InvalidConfig) Unwrap() error { return ErrInvalid }

type Game struct {
	StartLevel     int   `yaml:"start_level"`
	WeightedValues bool  `yaml:"weighted_values"`
	WallKick       bool  `yaml:"wall_kick"`
	Ghost          bool  `yaml:"ghost"`
	Seed           int64 `yaml:"seed"` // 0 means seed from the clock
}

type Theme struct {
	CellGlyph  string      `yaml:"cell_glyph"`
	GhostGlyph string      `yaml:"ghost_glyph"`
	WellColor  piece.Color `yaml:"well_color"`
	Border     piece.Color `yaml:"border_color"`
	PanelColor piece.Color `yaml:"panel_color"`
	TextColor  piece.Color `yaml:"text_color"`
	ValueColor piece.Color `yaml:"value_color"`
}

type Server struct {
	Port        int    `yaml:"port"`
	HostKey     string `yaml:"host_key"`
	MetricsAddr string `yaml:"metrics_addr"`
	MaxSessions int    `yaml:"max_sessions"`
}

type Config struct {
	Game   Game   `yaml:"game"`
	Theme  Theme  `yaml:"theme"`
	Server Server `yaml:"server"`
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		Game: Game{
			StartLevel:     1,
			WeightedValues: true,
			WallKick:       true,
			Ghost:          true,
		},
		Theme: Theme{
			CellGlyph:  "██",
			GhostGlyph: "░░",
			WellColor:  piece.Color{R: 30, G: 30, B: 30},
			Border:     piece.Color{R: 127, G: 127, B: 127},
			PanelColor: piece.Color{R: 50, G: 50, B: 50},
			TextColor:  piece.Color{R: 200, G: 200, B: 200},
			ValueColor: piece.Color{R: 255, G: 120, B: 80},
		},
		Server: Server{
			Port:        2222,
			HostKey:     "server_host_key",
			MaxSessions: 32,
		},
	}
}

// Load reads the config from path. An empty path falls back to
// $TETRAWELL_CONFIG and then to the XDG config directories; when no file is
// found the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		found, err := xdg.SearchConfigFile(RelPath)
		if err != nil {
			return &cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c *Config) Validate() error {
	if c.Game.StartLevel < 1 {
		return &InvalidConfig{"game.start_level", "must be at least 1"}
	}
	for field, glyph := range map[string]string{
		"theme.cell_glyph":  c.Theme.CellGlyph,
		"theme.ghost_glyph": c.Theme.GhostGlyph,
	} {
		if glyph == "" {
			return &InvalidConfig{field, "must not be empty"}
		}
		for _, r := range glyph {
			if r < 32 || (r >= 127 && r <= 159) || r == utf8.RuneError {
				return &InvalidConfig{field, "control characters are not allowed"}
			}
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &InvalidConfig{"server.port", fmt.Sprintf("%d is not a TCP port", c.Server.Port)}
	}
	if c.Server.MaxSessions < 1 {
		return &InvalidConfig{"server.max_sessions", "must be at least 1"}
	}
	return nil
}

// Save writes c to the user's XDG config directory and returns the path.
func (c *Config) Save() (string, error) {
	path, err := xdg.ConfigFile(RelPath)
	if err != nil {
		return "", fmt.Errorf("locate config file: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write config %s: %w", path, err)
	}
	return path, nil
}
