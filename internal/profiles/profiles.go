// Package profiles manages named document-store connection profiles.
// Profiles are persisted as YAML under the user config directory; passwords
// go to the OS keyring, never to the file.
package profiles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Profile is a saved connection to a document database
type Profile struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Driver   string    `yaml:"driver"` // "postgres" or "sqlite"
	DSN      string    `yaml:"dsn"`    // connection string or database file path
	User     string    `yaml:"user"`
	// Note: Password is NOT stored in the file; see PasswordStore
	IDField  string    `yaml:"id_field"`
	LastUsed time.Time `yaml:"last_used"`
}

// Manager loads and saves connection profiles
type Manager struct {
	path      string
	profiles  []Profile
	passwords *PasswordStore
}

// NewManager creates a profile manager rooted at the given config directory
func NewManager(configDir string) (*Manager, error) {
	m := &Manager{
		path:      filepath.Join(configDir, "profiles.yaml"),
		profiles:  []Profile{},
		passwords: NewPasswordStore(),
	}

	if _, err := os.Stat(m.path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
	}

	return m, nil
}

// Load reads the profile file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read profile file: %w", err)
	}
	if err := yaml.Unmarshal(data, &m.profiles); err != nil {
		return fmt.Errorf("failed to parse profiles: %w", err)
	}
	return nil
}

// Save writes the profile file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// 0600: the file carries connection details
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	return nil
}

// Add stores a profile, updating any existing one with the same name.
// A non-empty password goes to the keyring; keyring failure does not fail
// the save since password storage is optional.
func (m *Manager) Add(profile Profile, password string) (Profile, error) {
	if password != "" {
		if err := m.passwords.Save(profile.Name, profile.User, password); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save password to keyring: %v\n", err)
		}
	}

	for i, existing := range m.profiles {
		if existing.Name == profile.Name {
			profile.ID = existing.ID
			profile.LastUsed = time.Now()
			m.profiles[i] = profile
			return profile, m.Save()
		}
	}

	profile.ID = uuid.New().String()
	profile.LastUsed = time.Now()
	m.profiles = append(m.profiles, profile)
	return profile, m.Save()
}

// All returns every profile, most recently used first
func (m *Manager) All() []Profile {
	sorted := make([]Profile, len(m.profiles))
	copy(sorted, m.profiles)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastUsed.After(sorted[j].LastUsed)
	})
	return sorted
}

// Get finds a profile by name
func (m *Manager) Get(name string) (Profile, bool) {
	for _, profile := range m.profiles {
		if profile.Name == name {
			return profile, true
		}
	}
	return Profile{}, false
}

// Delete removes a profile and its stored password
func (m *Manager) Delete(name string) error {
	for i, profile := range m.profiles {
		if profile.Name == name {
			_ = m.passwords.Delete(profile.Name, profile.User)
			m.profiles = append(m.profiles[:i], m.profiles[i+1:]...)
			return m.Save()
		}
	}
	return fmt.Errorf("profile '%s' not found", name)
}

// Touch records a use of the profile
func (m *Manager) Touch(name string) error {
	for i, profile := range m.profiles {
		if profile.Name == name {
			m.profiles[i].LastUsed = time.Now()
			return m.Save()
		}
	}
	return nil
}

// Password retrieves the stored password for a profile, or "" when none is
// stored
func (m *Manager) Password(profile Profile) string {
	password, err := m.passwords.Get(profile.Name, profile.User)
	if err != nil {
		return ""
	}
	return password
}
