package profiles

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "docbrowse"

// PasswordStore keeps profile passwords in the OS keyring
type PasswordStore struct {
	service string
}

// NewPasswordStore creates a password store backed by the system keyring
func NewPasswordStore() *PasswordStore {
	return &PasswordStore{service: keyringService}
}

func (p *PasswordStore) account(profileName, user string) string {
	return fmt.Sprintf("%s/%s", profileName, user)
}

// Save stores a password for the profile
func (p *PasswordStore) Save(profileName, user, password string) error {
	if err := keyring.Set(p.service, p.account(profileName, user), password); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}
	return nil
}

// Get retrieves the password for the profile
func (p *PasswordStore) Get(profileName, user string) (string, error) {
	password, err := keyring.Get(p.service, p.account(profileName, user))
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// Delete removes the stored password for the profile
func (p *PasswordStore) Delete(profileName, user string) error {
	if err := keyring.Delete(p.service, p.account(profileName, user)); err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
