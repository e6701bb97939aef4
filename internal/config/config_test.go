package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.WeekEndsOn != "sunday" {
		t.Fatalf("default week_ends_on = %q, want sunday", cfg.WeekEndsOn)
	}
	if cfg.LogLevel != "INFO" {
		t.Fatalf("default log_level = %q, want INFO", cfg.LogLevel)
	}
}

func TestLoadFromReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "db_path: /tmp/test.db\nweek_ends_on: saturday\nlog_level: DEBUG\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("db_path = %q", cfg.DBPath)
	}
	if cfg.WeekEndsOn != "saturday" {
		t.Fatalf("week_ends_on = %q", cfg.WeekEndsOn)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Fatalf("log_level = %q", cfg.LogLevel)
	}
}

func TestLoadFromRejectsBadWeekEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("week_ends_on: tuesday\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WeekEndsOn != "sunday" {
		t.Fatalf("invalid week_ends_on should fall back to sunday, got %q", cfg.WeekEndsOn)
	}
}

func TestLoadFromBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("malformed yaml should error")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TEMPO_DB", "/custom/path.db")
	cfg := DefaultConfig()
	if cfg.DBPath != "/custom/path.db" {
		t.Fatalf("TEMPO_DB override not applied, got %q", cfg.DBPath)
	}
}
