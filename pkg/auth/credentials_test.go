package auth

import (
	"errors"
	"testing"
	"time"

	"flickrarchiver/pkg/flickr"
)

func testAccount(username string) *Account {
	return &Account{
		Username:    username,
		NSID:        "12345678@N00",
		FullName:    "Test User",
		Token:       "72157720-abcdef0123456789",
		TokenSecret: "fedcba9876543210",
	}
}

func TestManagerStoreAndRetrieve(t *testing.T) {
	manager, mockStore := NewMockManager()

	account := testAccount("tester")
	if err := manager.Store(account); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if mockStore.Count() != 1 {
		t.Errorf("Expected 1 stored account, got %d", mockStore.Count())
	}
	if account.LastModified.IsZero() {
		t.Error("Store should stamp LastModified")
	}

	got, err := manager.Retrieve("tester")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got.Token != account.Token || got.NSID != account.NSID {
		t.Errorf("Retrieved account does not match stored one: %+v", got)
	}
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	tests := []struct {
		name    string
		account *Account
	}{
		{"missing username", &Account{Token: "t", TokenSecret: "s"}},
		{"missing token", &Account{Username: "tester", TokenSecret: "s"}},
		{"missing token secret", &Account{Username: "tester", Token: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := manager.Store(tt.account); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestManagerFallsBackAcrossStores(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	broken.RetrieveError = errors.New("keychain locked")
	working := NewMockStore()

	manager := NewMockManagerWithStores(broken, working)

	if err := manager.Store(testAccount("tester")); err != nil {
		t.Fatalf("Store should fall through to the second store: %v", err)
	}
	if working.Count() != 1 {
		t.Errorf("Expected account in fallback store, got %d", working.Count())
	}

	got, err := manager.Retrieve("tester")
	if err != nil {
		t.Fatalf("Retrieve should fall through to the second store: %v", err)
	}
	if got.Username != "tester" {
		t.Errorf("Unexpected account: %+v", got)
	}
}

func TestManagerRetrieveNotFound(t *testing.T) {
	manager, _ := NewMockManager()

	if _, err := manager.Retrieve("nobody"); err == nil {
		t.Error("Expected error for unknown account")
	}
}

func TestManagerDelete(t *testing.T) {
	manager, mockStore := NewMockManager()

	if err := manager.Store(testAccount("tester")); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := manager.Delete("tester"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if mockStore.Exists("tester") {
		t.Error("Account should be gone after delete")
	}
	if err := manager.Delete("tester"); err == nil {
		t.Error("Deleting a missing account should fail")
	}
}

func TestManagerListMergesByRecency(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()

	stale := testAccount("tester")
	stale.Token = "stale-token-0000000000"
	stale.LastModified = time.Now().Add(-time.Hour)
	older.accounts["tester"] = stale

	fresh := testAccount("tester")
	fresh.LastModified = time.Now()
	newer.accounts["tester"] = fresh

	manager := NewMockManagerWithStores(older, newer)

	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("Expected 1 merged account, got %d", len(accounts))
	}
	if accounts[0].Token != fresh.Token {
		t.Error("List should prefer the most recently modified copy")
	}
}

func TestRetrieveDefaultPrefersEnvironment(t *testing.T) {
	t.Setenv("FLICKR_OAUTH_TOKEN", "env-token")
	t.Setenv("FLICKR_OAUTH_TOKEN_SECRET", "env-secret")
	t.Setenv("FLICKR_USER_NSID", "99999999@N00")
	t.Setenv("FLICKR_USERNAME", "env_user")

	stored := NewMockStore()
	stored.accounts["tester"] = testAccount("tester")

	manager := NewMockManagerWithStores(stored, NewEnvironmentStore())

	account, err := manager.RetrieveDefault()
	if err != nil {
		t.Fatalf("RetrieveDefault failed: %v", err)
	}
	if account.Token != "env-token" || account.NSID != "99999999@N00" {
		t.Errorf("Expected environment credentials, got %+v", account)
	}
}

func TestRetrieveDefaultFallsBackToFirstListed(t *testing.T) {
	t.Setenv("FLICKR_OAUTH_TOKEN", "")
	t.Setenv("FLICKR_OAUTH_TOKEN_SECRET", "")

	stored := NewMockStore()
	stored.accounts["tester"] = testAccount("tester")

	manager := NewMockManagerWithStores(stored, NewEnvironmentStore())

	account, err := manager.RetrieveDefault()
	if err != nil {
		t.Fatalf("RetrieveDefault failed: %v", err)
	}
	if account.Username != "tester" {
		t.Errorf("Expected stored account, got %+v", account)
	}
}

func TestAccountTokenRoundTrip(t *testing.T) {
	token := flickr.AccessToken{
		Token:       "72157720-abcdef0123456789",
		TokenSecret: "fedcba9876543210",
		UserNSID:    "12345678@N00",
		Username:    "tester",
		FullName:    "Test User",
	}

	account := AccountFromToken(token)
	back := account.AccessToken()

	if back != token {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", back, token)
	}
}

func TestSanitizeAccount(t *testing.T) {
	account := testAccount("tester")
	masked := SanitizeAccount(account)

	if masked.Token == account.Token {
		t.Error("Token should be masked")
	}
	if masked.Token != "7215...6789" {
		t.Errorf("Unexpected mask: %s", masked.Token)
	}
	if masked.Username != "tester" || masked.NSID != account.NSID {
		t.Error("Non-sensitive fields should survive sanitization")
	}
	if account.Token == masked.Token {
		t.Error("Original account must not be mutated")
	}

	if SanitizeAccount(nil) != nil {
		t.Error("Sanitizing nil should return nil")
	}
}

func TestMaskString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "********"},
		{"short", "********"},
		{"12345678", "********"},
		{"123456789", "1234...6789"},
		{"72157720-abcdef0123456789", "7215...6789"},
	}

	for _, tt := range tests {
		if got := maskString(tt.in); got != tt.want {
			t.Errorf("maskString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvironmentStoreDefaults(t *testing.T) {
	t.Setenv("FLICKR_OAUTH_TOKEN", "env-token")
	t.Setenv("FLICKR_OAUTH_TOKEN_SECRET", "env-secret")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if account.Username != "default" {
		t.Errorf("Expected default username, got %q", account.Username)
	}

	if err := store.Store(account); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Environment store must reject writes, got %v", err)
	}
	if err := store.Delete("default"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Environment store must reject deletes, got %v", err)
	}
}
