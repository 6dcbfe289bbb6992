package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))
	for _, name := range []string{"CONCIERGE_BASE_URL", "CONCIERGE_LOG_LEVEL", "CONCIERGE_LOG_FORMAT", "CONCIERGE_POLL"} {
		t.Setenv(name, "")
	}
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, defaultBaseURL)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Fatalf("PollInterval = %v, want %v", cfg.PollInterval, defaultPollInterval)
	}
	wantSession := filepath.Join(home, ".local", "state", "concierge", "session.toml")
	if cfg.SessionPath != wantSession {
		t.Fatalf("SessionPath = %q, want %q", cfg.SessionPath, wantSession)
	}
	if !strings.HasSuffix(cfg.LogPath, filepath.FromSlash("concierge/concierge.log")) {
		t.Fatalf("LogPath = %q, want it to end with concierge/concierge.log", cfg.LogPath)
	}
	if cfg.Endpoints.Users != "/api/v1/admin/all_user_list/" {
		t.Fatalf("Endpoints.Users = %q", cfg.Endpoints.Users)
	}
}

func TestLoad_EmptyPathUsesXDGLocation(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "concierge")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`base_url = "https://xdg.example.com"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "https://xdg.example.com" {
		t.Fatalf("BaseURL = %q, want the XDG file's value", cfg.BaseURL)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, `
base_url = "  https://api.example.com  "
timeout = "15s"
poll_interval = " 1m "
requests_per_second = 2.5
burst = 3
session_path = "  ~/.concierge/session.toml  "
log_level = "DEBUG"
log_format = "json"

[endpoints]
plans = "/api/v1/admin/subscription_plans/"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 15*time.Second || cfg.PollInterval != time.Minute {
		t.Fatalf("Timeout = %v, PollInterval = %v", cfg.Timeout, cfg.PollInterval)
	}
	if cfg.RequestsPerSecond != 2.5 || cfg.Burst != 3 {
		t.Fatalf("rate = %v/%d", cfg.RequestsPerSecond, cfg.Burst)
	}
	if !strings.HasPrefix(cfg.SessionPath, home) {
		t.Fatalf("SessionPath = %q, want it under HOME %q", cfg.SessionPath, home)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("log = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Endpoints.Plans != "/api/v1/admin/subscription_plans/" {
		t.Fatalf("Endpoints.Plans = %q", cfg.Endpoints.Plans)
	}
	if cfg.Endpoints.Terms != "/api/v1/admin/terms_and_conditions/" {
		t.Fatalf("Endpoints.Terms = %q, want default", cfg.Endpoints.Terms)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
base_url = "   "
log_level = ""
poll_interval = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, defaultBaseURL)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
base_url = "https://file.example.com"
log_level = "info"
`)
	t.Setenv("CONCIERGE_BASE_URL", "https://env.example.com")
	t.Setenv("CONCIERGE_LOG_LEVEL", "warn")
	t.Setenv("CONCIERGE_POLL", "5s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "https://env.example.com" {
		t.Fatalf("BaseURL = %q, want env value", cfg.BaseURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	isolate(t)
	_, err := Load(writeConfig(t, `base_url = [`))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"duration", `timeout = "soon"`, "timeout"},
		{"log level", `log_level = "loud"`, "log_level"},
		{"log format", `log_format = "xml"`, "log_format"},
		{"poll too fast", `poll_interval = "10ms"`, "poll_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	cfg.BaseURL = "https://api.example.com"
	opts := cfg.ClientOptions()
	if opts.BaseURL != cfg.BaseURL || opts.Timeout != cfg.Timeout || opts.Burst != cfg.Burst {
		t.Fatalf("ClientOptions = %+v", opts)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath returned nil error, want error")
	}
}
