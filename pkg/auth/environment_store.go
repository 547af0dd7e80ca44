package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables,
// for CI runs and one-off invocations where no keychain is available.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	token := os.Getenv("FLICKR_OAUTH_TOKEN")
	tokenSecret := os.Getenv("FLICKR_OAUTH_TOKEN_SECRET")
	nsid := os.Getenv("FLICKR_USER_NSID")

	if token == "" || tokenSecret == "" {
		return nil, ErrCredentialsNotFound
	}

	if username == "" {
		if username = os.Getenv("FLICKR_USERNAME"); username == "" {
			username = "default"
		}
	}

	return &Account{
		Username:     username,
		NSID:         nsid,
		Token:        token,
		TokenSecret:  tokenSecret,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(username string) bool {
	return os.Getenv("FLICKR_OAUTH_TOKEN") != "" && os.Getenv("FLICKR_OAUTH_TOKEN_SECRET") != ""
}
