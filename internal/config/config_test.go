package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.DefaultLimit != 100 {
		t.Errorf("DefaultLimit = %d, want 100", cfg.General.DefaultLimit)
	}
	if cfg.Store.IDField != "Id" {
		t.Errorf("IDField = %q, want Id", cfg.Store.IDField)
	}
	if !cfg.UI.FormatDocuments {
		t.Error("expected FormatDocuments default true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "general:\n  default_limit: 25\nstore:\n  id_field: DocId\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", dir)

	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.DefaultLimit != 25 {
		t.Errorf("DefaultLimit = %d, want 25", cfg.General.DefaultLimit)
	}
	if cfg.Store.IDField != "DocId" {
		t.Errorf("IDField = %q, want DocId", cfg.Store.IDField)
	}
	// Untouched sections keep defaults
	if cfg.Store.QueryTimeout != 30000 {
		t.Errorf("QueryTimeout = %d, want 30000", cfg.Store.QueryTimeout)
	}
}
