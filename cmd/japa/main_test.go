package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/japa/internal/achievement"
	"github.com/verte-zerg/japa/internal/config"
	"github.com/verte-zerg/japa/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Practice.User != nil || cfg.Board.Limit != nil || cfg.Server.Addr != nil {
		t.Fatalf("expected every template value to be commented out, got %+v", cfg)
	}
}

func TestParseAchievementList(t *testing.T) {
	ids, err := parseAchievementList("first-steps, devoted,,first-steps")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 3 || ids[0] != achievement.FirstSteps || ids[1] != achievement.Devoted {
		t.Fatalf("unexpected ids: %v", ids)
	}

	ids, err = parseAchievementList("")
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("expected an empty non-nil set, got %v", ids)
	}

	if _, err := parseAchievementList("devoted,nirvana"); err == nil {
		t.Fatalf("expected error for unknown achievement")
	}
}

func TestCorrectionFromFlags(t *testing.T) {
	cmd := newAdminCmd()
	set, _, err := cmd.Find([]string{"set"})
	if err != nil {
		t.Fatalf("find set: %v", err)
	}
	if _, err := correctionFromFlags(set); err == nil {
		t.Fatalf("expected error when no flag is set")
	}
	if err := set.Flags().Parse([]string{"--points", "25", "--reaward"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	c, err := correctionFromFlags(set)
	if err != nil {
		t.Fatalf("correction: %v", err)
	}
	if c.TotalPoints == nil || *c.TotalPoints != 25 || c.CompletedSessions != nil || !c.Reaward {
		t.Fatalf("unexpected correction: %+v", c)
	}
	got := c.Apply(model.NewProgress("asha"))
	if got.TotalPoints != 25 || len(got.Achievements) != 1 || got.Achievements[0] != achievement.FirstSteps {
		t.Fatalf("unexpected corrected record: %+v", got)
	}
}

func TestValidateBoardConfig(t *testing.T) {
	if err := validateBoardConfig(model.BoardConfig{Limit: 10, Refresh: time.Second}); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}
	if err := validateBoardConfig(model.BoardConfig{Limit: -1, Refresh: time.Second}); err == nil {
		t.Fatalf("expected error for negative limit")
	}
	if err := validateBoardConfig(model.BoardConfig{Refresh: 10 * time.Millisecond}); err == nil {
		t.Fatalf("expected error for short refresh")
	}
}
