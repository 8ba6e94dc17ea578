package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

const testCookie = "_|WARNING:-DO-NOT-SHARE-THIS.--abcdef0123456789"

func TestManagerStoreAndRetrieve(t *testing.T) {
	manager, mockStore := NewMockManager()

	err := manager.Store(&Account{Cookie: testCookie})
	require.NoError(t, err)
	assert.Equal(t, 1, mockStore.Count())

	account, err := manager.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAccountName, account.Name)
	assert.Equal(t, testCookie, account.Cookie)
	assert.False(t, account.LastModified.IsZero())
}

func TestManagerRejectsEmptyCookie(t *testing.T) {
	manager, _ := NewMockManager()
	assert.ErrorIs(t, manager.Store(&Account{Name: "alt"}), ErrInvalidCredentials)
	assert.ErrorIs(t, manager.Store(nil), ErrInvalidCredentials)
}

func TestManagerFallsThroughStores(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keyring locked")
	broken.RetrieveError = errors.New("keyring locked")
	working := NewMockStore()

	manager := NewManagerWithStores(broken, working)

	require.NoError(t, manager.Store(&Account{Name: "alt", Cookie: testCookie}))
	assert.Equal(t, 1, working.Count())

	account, err := manager.Retrieve("alt")
	require.NoError(t, err)
	assert.Equal(t, testCookie, account.Cookie)
}

func TestManagerAllStoresFail(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("disk full")
	manager := NewManagerWithStores(broken)

	err := manager.Store(&Account{Cookie: testCookie})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, err = manager.Retrieve("missing")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault", "credentials.enc")

	store, err := NewEncryptedFileStore(path, "correct horse")
	require.NoError(t, err)

	_, err = store.Retrieve("default")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Store(&Account{Name: "default", Cookie: testCookie}))
	require.NoError(t, store.Store(&Account{Name: "alt", Cookie: "other-cookie-value"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), testCookie)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewEncryptedFileStore(path, "correct horse")
	require.NoError(t, err)
	account, err := reopened.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, testCookie, account.Cookie)

	wrong, err := NewEncryptedFileStore(path, "battery staple")
	require.NoError(t, err)
	_, err = wrong.Retrieve("default")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(EnvPassphrase, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.enc")

	store, err := NewEncryptedFileStore(path, "")
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Name: "default", Cookie: testCookie}))

	_, err = os.Stat(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)

	again, err := NewEncryptedFileStore(path, "")
	require.NoError(t, err)
	account, err := again.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, testCookie, account.Cookie)
}

func TestEncryptedFileStorePassphraseFromEnv(t *testing.T) {
	t.Setenv(EnvPassphrase, "from-env")
	dir := t.TempDir()

	_, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"), "")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".passphrase"))
	assert.True(t, os.IsNotExist(err))
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	_, err = store.Retrieve("default")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Store(&Account{Name: "default", Cookie: testCookie}))

	account, err := store.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, testCookie, account.Cookie)

	assert.ErrorIs(t, store.Store(&Account{}), ErrInvalidCredentials)
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	t.Setenv(EnvAuth, "")
	_, err := store.Retrieve("default")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	t.Setenv(EnvAuth, testCookie)
	account, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAccountName, account.Name)
	assert.Equal(t, testCookie, account.Cookie)

	assert.ErrorIs(t, store.Store(account), ErrStoreUnavailable)
}

func TestSanitizeAccount(t *testing.T) {
	account := &Account{Name: "default", Cookie: testCookie}

	sanitized := SanitizeAccount(account)
	assert.Equal(t, "default", sanitized.Name)
	assert.NotEqual(t, testCookie, sanitized.Cookie)
	assert.Equal(t, "_|WA...6789", sanitized.Cookie)

	assert.Equal(t, "********", MaskSecret("short"))
	assert.Nil(t, SanitizeAccount(nil))
}
