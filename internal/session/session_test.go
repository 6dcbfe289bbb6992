package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret-test-secret-test-secret"))
	require.NoError(t, err)
	return s
}

func TestManager_EstablishPersistsAndInitRestores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.toml")
	access := signed(t, "1", time.Now().Add(time.Hour))

	m := NewManager(path, nil)
	require.NoError(t, m.Establish(Identity{ID: "1", FullName: "Admin", Email: "admin@x.io"}, access, "refresh"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored := NewManager(path, nil)
	require.NoError(t, restored.Init())
	assert.Equal(t, access, restored.Token())
	assert.Equal(t, "1", restored.CurrentUserID())
	assert.True(t, restored.Authenticated())
	id, ok := restored.Identity()
	assert.True(t, ok)
	assert.Equal(t, "Admin", id.FullName)
}

func TestManager_InitWithoutFileIsLoggedOut(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.toml"), nil)
	require.NoError(t, m.Init())
	assert.False(t, m.Authenticated())
	assert.Empty(t, m.Token())
	assert.Empty(t, m.CurrentUserID())
}

func TestManager_InitIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("{{{ nope"), 0o600))

	m := NewManager(path, nil)
	require.NoError(t, m.Init())
	assert.False(t, m.Authenticated())
}

func TestManager_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	m := NewManager(path, nil)
	require.NoError(t, m.Establish(Identity{ID: "1"}, "opaque-token", ""))

	require.NoError(t, m.Clear())
	assert.False(t, m.Authenticated())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, m.Clear(), "clearing twice is fine")
}

func TestManager_InvalidateLogsOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	m := NewManager(path, nil)
	require.NoError(t, m.Establish(Identity{ID: "1"}, "opaque-token", ""))

	m.Invalidate()
	assert.Empty(t, m.Token())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestManager_ExpiredTokenIsNotAuthenticated(t *testing.T) {
	m := NewManager("", nil)
	require.NoError(t, m.Establish(Identity{}, signed(t, "9", time.Now().Add(-time.Minute)), ""))

	assert.False(t, m.Authenticated())
	assert.Equal(t, "9", m.CurrentUserID(), "subject used when identity has no id")
	exp, ok := m.ExpiresAt()
	assert.True(t, ok)
	assert.True(t, exp.Before(time.Now()))
}

func TestManager_OpaqueTokenTrusted(t *testing.T) {
	m := NewManager("", nil)
	require.NoError(t, m.Establish(Identity{ID: "3"}, "not-a-jwt", ""))
	assert.True(t, m.Authenticated())
	_, ok := m.ExpiresAt()
	assert.False(t, ok)
}

func TestManager_EstablishRequiresToken(t *testing.T) {
	m := NewManager("", nil)
	assert.Error(t, m.Establish(Identity{ID: "1"}, "  ", ""))
	assert.False(t, m.Authenticated())
}

func TestManager_UpdateIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	m := NewManager(path, nil)
	assert.ErrorIs(t, m.UpdateIdentity(Identity{ID: "1"}), ErrNotAuthenticated)

	require.NoError(t, m.Establish(Identity{ID: "1", FullName: "Old"}, "opaque-token", "r"))
	require.NoError(t, m.UpdateIdentity(Identity{ID: "1", FullName: "New"}))

	restored := NewManager(path, nil)
	require.NoError(t, restored.Init())
	id, _ := restored.Identity()
	assert.Equal(t, "New", id.FullName)
	assert.Equal(t, "opaque-token", restored.Token())
}

func TestManager_LogoutNotUndoneByConcurrentSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	m := NewManager(path, nil)

	for i := range 50 {
		require.NoError(t, m.Establish(Identity{ID: "1"}, "opaque-token", ""))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.UpdateIdentity(Identity{ID: "1", FullName: "Renamed"})
		}()
		go func() {
			defer wg.Done()
			m.Invalidate()
		}()
		wg.Wait()

		require.False(t, m.Authenticated())
		_, err := os.Stat(path)
		require.True(t, os.IsNotExist(err), "iteration %d: session file survived logout", i)
	}
}
