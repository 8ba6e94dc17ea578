package auth

import (
	"os"
	"time"
)

// EnvAuth holds the session cookie for the environment store
const EnvAuth = "FREEGRAB_AUTH"

// EnvironmentStore is a read-only store over FREEGRAB_AUTH
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns FREEGRAB_AUTH under whatever name is asked for
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	cookie := os.Getenv(EnvAuth)
	if cookie == "" {
		return nil, ErrCredentialsNotFound
	}
	if name == "" {
		name = DefaultAccountName
	}
	return &Account{Name: name, Cookie: cookie, LastModified: time.Now()}, nil
}
