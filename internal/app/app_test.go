package app

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-assistant/concierge/internal/config"
	"github.com/travel-assistant/concierge/internal/fakeapi"
	"github.com/travel-assistant/concierge/internal/state"
)

func TestBootstrap_RestoresSession(t *testing.T) {
	ts := httptest.NewServer(fakeapi.New(fakeapi.Options{}))
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.BaseURL = ts.URL
	cfg.SessionPath = filepath.Join(t.TempDir(), "session.toml")

	first, err := Bootstrap(cfg, nil)
	require.NoError(t, err)
	_, err = first.Workspace.Login(context.Background(), fakeapi.DefaultEmail, fakeapi.DefaultPassword)
	require.NoError(t, err)
	first.Close()

	second, err := Bootstrap(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(second.Close)
	require.True(t, second.Session.Authenticated())
	assert.Equal(t, "900", second.Session.CurrentUserID())

	interests, err := second.Client.Interests().List(context.Background(), state.Query{})
	require.NoError(t, err)
	assert.Len(t, interests, 5)
}

func TestRun_RequiresSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("base_url = %q\nsession_path = %q\nlog_path = %q\nprefs_path = %q\n",
		"http://127.0.0.1:1",
		filepath.Join(dir, "session.toml"),
		filepath.Join(dir, "logs", "concierge.log"),
		filepath.Join(dir, "prefs.toml"),
	)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	err := Run(context.Background(), Options{ConfigPath: path})
	require.ErrorIs(t, err, ErrNotSignedIn)

	_, statErr := os.Stat(filepath.Join(dir, "logs", "concierge.log"))
	assert.NoError(t, statErr, "log file is created before the session check")
}

func TestSetup_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("session_path = %q\n", filepath.Join(dir, "session.toml"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	env, err := Setup(Options{
		ConfigPath: path,
		BaseURL:    "http://example.test:9000",
		PrefsPath:  filepath.Join(dir, "p.toml"),
		LogStderr:  true,
	})
	require.NoError(t, err)
	t.Cleanup(env.Close)

	assert.Equal(t, "http://example.test:9000", env.Client.BaseURL())
	assert.Equal(t, filepath.Join(dir, "p.toml"), env.Config.PrefsPath)
	assert.Empty(t, env.Config.LogPath)
	assert.False(t, env.Session.Authenticated())
}
