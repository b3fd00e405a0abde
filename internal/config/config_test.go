package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Port)
	}
	if cfg.DBPath != "wotrack.db" {
		t.Errorf("Expected wotrack.db, got %s", cfg.DBPath)
	}
	if cfg.NCRRepeatWindowDays != 90 {
		t.Errorf("Expected 90 day window, got %d", cfg.NCRRepeatWindowDays)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "port: 8080\ndb_path: /tmp/test.db\ncompany_name: Acme\nncr_repeat_window_days: 30\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("Write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 || cfg.DBPath != "/tmp/test.db" || cfg.CompanyName != "Acme" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.NCRRepeatWindowDays != 30 {
		t.Errorf("Expected 30 day window, got %d", cfg.NCRRepeatWindowDays)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WOTRACK_PORT", "7000")
	t.Setenv("WOTRACK_COMPANY_NAME", "Envco")
	t.Setenv("WOTRACK_NCR_REPEAT_WINDOW_DAYS", "0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("Expected env port 7000, got %d", cfg.Port)
	}
	if cfg.CompanyName != "Envco" {
		t.Errorf("Expected Envco, got %s", cfg.CompanyName)
	}
	// Zero window falls back to the default.
	if cfg.NCRRepeatWindowDays != 90 {
		t.Errorf("Expected window fallback to 90, got %d", cfg.NCRRepeatWindowDays)
	}
}

func TestLoadBadPort(t *testing.T) {
	t.Setenv("WOTRACK_PORT", "not-a-port")
	if _, err := Load(""); err == nil {
		t.Error("Expected error for invalid WOTRACK_PORT")
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Missing file should not error: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}
