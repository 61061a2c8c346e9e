// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Board    BoardConfig    `toml:"board"`
	Server   ServerConfig   `toml:"server"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	User     *string `toml:"user"`
	Variant  *string `toml:"variant"`
	TextFile *string `toml:"text-file"`
}

// BoardConfig maps leaderboard settings.
type BoardConfig struct {
	User    *string   `toml:"user"`
	Limit   *int      `toml:"limit"`
	Refresh *Duration `toml:"refresh"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	Addr           *string           `toml:"addr"`
	AdminToken     *string           `toml:"admin-token"`
	AllowedOrigins []string          `toml:"allowed-origins"`
	DBPath         *string           `toml:"db-path"`
	TextFiles      map[string]string `toml:"text-files"`
}

// Duration decodes TOML strings such as "5s" or "1m30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
