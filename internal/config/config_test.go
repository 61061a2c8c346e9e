package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if cfg.Practice.User != nil || cfg.Server.Addr != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[practice]
user = "asha"
variant = "devanagari"

[board]
limit = 5
refresh = "30s"

[server]
addr = ":9000"
allowed-origins = ["https://example.org"]

[server.text-files]
roman = "/srv/texts/roman.txt"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Practice.User == nil || *cfg.Practice.User != "asha" {
		t.Fatalf("unexpected practice user: %v", cfg.Practice.User)
	}
	if cfg.Board.Limit == nil || *cfg.Board.Limit != 5 {
		t.Fatalf("unexpected board limit: %v", cfg.Board.Limit)
	}
	if cfg.Board.Refresh == nil || cfg.Board.Refresh.Duration != 30*time.Second {
		t.Fatalf("unexpected board refresh: %v", cfg.Board.Refresh)
	}
	server := DefaultServerConfig()
	ApplyServerFile(&server, cfg.Server)
	if server.Addr != ":9000" || len(server.AllowedOrigins) != 1 || server.TextFiles["roman"] != "/srv/texts/roman.txt" {
		t.Fatalf("unexpected server config: %+v", server)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[practice]\nlang = \"en\"\n")
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "practice.lang") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[board]\nrefresh = \"soon\"\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestServerEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "JAPA_ADDR=:7070\nJAPA_ADMIN_TOKEN=secret\n")
	t.Setenv("JAPA_ADDR", "")
	t.Setenv("JAPA_ADMIN_TOKEN", "")
	t.Setenv("JAPA_DB_PATH", filepath.Join(dir, "env.db"))
	t.Setenv("JAPA_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	// godotenv never replaces variables that exist, even empty ones.
	_ = os.Unsetenv("JAPA_ADDR")
	_ = os.Unsetenv("JAPA_ADMIN_TOKEN")

	loaded, err := LoadDotEnv(envFile)
	if err != nil || !loaded {
		t.Fatalf("load env: loaded=%v err=%v", loaded, err)
	}
	cfg := DefaultServerConfig()
	ApplyServerEnv(&cfg)
	if cfg.Addr != ":7070" || cfg.AdminToken != "secret" {
		t.Fatalf("unexpected env overrides: %+v", cfg)
	}
	if cfg.DBPath != filepath.Join(dir, "env.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if err := ValidateServer(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	loaded, err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	if err != nil || loaded {
		t.Fatalf("expected missing env file to be skipped, loaded=%v err=%v", loaded, err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	if got := DefaultConfigPath(); got != filepath.Join(dir, "cfg", "japa", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join(dir, "data", "japa", "japa.db") {
		t.Fatalf("unexpected db path %s", got)
	}
}
