// Package session keeps track of the signed-in administrator and persists the
// token pair between runs.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	toml "github.com/pelletier/go-toml/v2"
)

// ErrNotAuthenticated is returned when an operation needs a signed-in admin.
var ErrNotAuthenticated = errors.New("not logged in")

// Identity describes the signed-in administrator.
type Identity struct {
	ID       string `toml:"id"`
	FullName string `toml:"full_name"`
	Email    string `toml:"email"`
	Image    string `toml:"image"`
}

type record struct {
	Identity Identity  `toml:"identity"`
	Access   string    `toml:"access"`
	Refresh  string    `toml:"refresh"`
	SavedAt  time.Time `toml:"saved_at"`
}

// Manager owns the session. Pass it to adminapi as the TokenSource and hook
// Invalidate to 401 responses.
type Manager struct {
	path string
	log  *slog.Logger
	now  func() time.Time

	// persist serializes a state change with the file write that follows
	// it, so the file never outlives a logout.
	persist sync.Mutex

	mu  sync.RWMutex
	rec record
}

// NewManager returns a logged-out manager persisting to path. An empty path
// keeps the session in memory only.
func NewManager(path string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		path: path,
		log:  logger.With("component", "session"),
		now:  time.Now,
	}
}

// Init loads a previously persisted session. A missing file means logged
// out; an unreadable one is logged and ignored.
func (m *Manager) Init() error {
	if m.path == "" {
		return nil
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session: %w", err)
	}
	var rec record
	if err := toml.Unmarshal(data, &rec); err != nil {
		m.log.Warn("ignoring corrupt session file", "path", m.path, "error", err)
		return nil
	}
	m.mu.Lock()
	m.rec = rec
	m.mu.Unlock()
	return nil
}

// Establish records a successful login and persists it.
func (m *Manager) Establish(id Identity, access, refresh string) error {
	if strings.TrimSpace(access) == "" {
		return errors.New("establish session: empty access token")
	}
	rec := record{Identity: id, Access: access, Refresh: refresh, SavedAt: m.now().UTC()}
	m.persist.Lock()
	defer m.persist.Unlock()
	m.mu.Lock()
	m.rec = rec
	m.mu.Unlock()
	m.log.Info("session established", "user_id", id.ID, "email", id.Email)
	return m.save(rec)
}

// UpdateIdentity replaces the stored identity, keeping the tokens.
func (m *Manager) UpdateIdentity(id Identity) error {
	m.persist.Lock()
	defer m.persist.Unlock()
	m.mu.Lock()
	if m.rec.Access == "" {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	m.rec.Identity = id
	rec := m.rec
	m.mu.Unlock()
	return m.save(rec)
}

// Clear logs out and removes the persisted session.
func (m *Manager) Clear() error {
	m.persist.Lock()
	defer m.persist.Unlock()
	m.mu.Lock()
	m.rec = record{}
	m.mu.Unlock()
	if m.path == "" {
		return nil
	}
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Invalidate drops the session after the API rejected its token.
func (m *Manager) Invalidate() {
	if !m.hasToken() {
		return
	}
	m.log.Warn("session rejected by api, logging out")
	if err := m.Clear(); err != nil {
		m.log.Error("clear session", "error", err)
	}
}

func (m *Manager) hasToken() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec.Access != ""
}

// Token returns the access token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec.Access
}

// CurrentUserID returns the signed-in admin's id, or "".
func (m *Manager) CurrentUserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rec.Access == "" {
		return ""
	}
	if m.rec.Identity.ID != "" {
		return m.rec.Identity.ID
	}
	if claims, ok := parseClaims(m.rec.Access); ok {
		if sub, err := claims.GetSubject(); err == nil {
			return sub
		}
	}
	return ""
}

// Identity returns the signed-in admin.
func (m *Manager) Identity() (Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec.Identity, m.rec.Access != ""
}

// ExpiresAt returns the access token's exp claim when it has one.
func (m *Manager) ExpiresAt() (time.Time, bool) {
	claims, ok := parseClaims(m.Token())
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Authenticated reports whether a token is held and not known to be expired.
// Tokens that are not JWTs are trusted until the API rejects them.
func (m *Manager) Authenticated() bool {
	if m.Token() == "" {
		return false
	}
	exp, ok := m.ExpiresAt()
	return !ok || m.now().Before(exp)
}

// parseClaims reads the claims without verifying the signature; the API does
// the verifying.
func parseClaims(token string) (jwt.MapClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func (m *Manager) save(rec record) error {
	if m.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
