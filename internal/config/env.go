package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/verte-zerg/japa/internal/model"
)

const (
	envAddr       = "JAPA_ADDR"
	envAdminToken = "JAPA_ADMIN_TOKEN"
	envDBPath     = "JAPA_DB_PATH"
	envOrigins    = "JAPA_ALLOWED_ORIGINS"
)

// DefaultServerConfig returns server settings before file and environment
// overrides.
func DefaultServerConfig() model.ServerConfig {
	return model.ServerConfig{
		Addr:           ":8080",
		AllowedOrigins: []string{"*"},
		DBPath:         DefaultDBPath(),
		TextFiles:      map[string]string{},
	}
}

// ApplyServerFile overlays file settings onto cfg.
func ApplyServerFile(cfg *model.ServerConfig, file ServerConfig) {
	if file.Addr != nil {
		cfg.Addr = *file.Addr
	}
	if file.AdminToken != nil {
		cfg.AdminToken = *file.AdminToken
	}
	if len(file.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append([]string(nil), file.AllowedOrigins...)
	}
	if file.DBPath != nil {
		cfg.DBPath = *file.DBPath
	}
	for variant, path := range file.TextFiles {
		if cfg.TextFiles == nil {
			cfg.TextFiles = map[string]string{}
		}
		cfg.TextFiles[variant] = path
	}
}

// LoadDotEnv loads envFile into the process environment without replacing
// variables that are already set. A missing file reports false.
func LoadDotEnv(envFile string) (bool, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat env file: %w", err)
	}
	if err := godotenv.Load(envFile); err != nil {
		return false, fmt.Errorf("failed to load env file: %w", err)
	}
	return true, nil
}

// ApplyServerEnv overlays JAPA_* environment variables onto cfg.
func ApplyServerEnv(cfg *model.ServerConfig) {
	if v := os.Getenv(envAddr); v != "" {
		cfg.Addr = v
	}
	if v, ok := os.LookupEnv(envAdminToken); ok {
		cfg.AdminToken = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}
	}
}

// ValidateServer checks that required server settings are present.
func ValidateServer(cfg model.ServerConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	return nil
}
