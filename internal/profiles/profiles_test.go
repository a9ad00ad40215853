package profiles

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newTestManager returns a manager that writes into a temp dir and never
// touches the real keyring by keeping passwords empty.
func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestAddAssignsID(t *testing.T) {
	m := newTestManager(t)

	saved, err := m.Add(Profile{Name: "local", Driver: "sqlite", DSN: "test.db"}, "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("expected a generated ID")
	}
	if saved.LastUsed.IsZero() {
		t.Error("expected LastUsed to be set")
	}
}

func TestAddUpdatesExistingByName(t *testing.T) {
	m := newTestManager(t)

	first, err := m.Add(Profile{Name: "local", Driver: "sqlite", DSN: "a.db"}, "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	second, err := m.Add(Profile{Name: "local", Driver: "sqlite", DSN: "b.db"}, "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected update to keep ID %s, got %s", first.ID, second.ID)
	}
	if len(m.All()) != 1 {
		t.Errorf("expected 1 profile, got %d", len(m.All()))
	}
	got, ok := m.Get("local")
	if !ok {
		t.Fatal("Get() did not find profile")
	}
	if got.DSN != "b.db" {
		t.Errorf("expected updated DSN b.db, got %s", got.DSN)
	}
}

func TestAllSortsByLastUsed(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Add(Profile{Name: "older", Driver: "sqlite", DSN: "a.db"}, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := m.Add(Profile{Name: "newer", Driver: "postgres", DSN: "postgres://localhost/test"}, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	all := m.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(all))
	}
	if all[0].Name != "newer" {
		t.Errorf("expected most recently used first, got %s", all[0].Name)
	}
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Add(Profile{Name: "gone", Driver: "sqlite", DSN: "x.db"}, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Delete("gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := m.Get("gone"); ok {
		t.Error("expected profile to be removed")
	}

	if err := m.Delete("missing"); err == nil {
		t.Error("expected error deleting unknown profile")
	}
}

func TestRoundTripThroughFile(t *testing.T) {
	dir := t.TempDir()

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if _, err := m.Add(Profile{Name: "persisted", Driver: "postgres", DSN: "postgres://localhost/docs", User: "app", IDField: "Id"}, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	reloaded, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager() after save error = %v", err)
	}
	got, ok := reloaded.Get("persisted")
	if !ok {
		t.Fatal("expected profile to survive reload")
	}
	if got.Driver != "postgres" || got.User != "app" || got.IDField != "Id" {
		t.Errorf("unexpected profile after reload: %+v", got)
	}

	info, err := os.Stat(filepath.Join(dir, "profiles.yaml"))
	if err != nil {
		t.Fatalf("expected profiles.yaml to exist: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}
