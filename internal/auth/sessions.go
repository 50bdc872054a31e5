package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/booklend/booklend/internal/config"
)

// Session data keys
const (
	SessionKeyName    = "identity_name"
	SessionKeyFlashes = "flashes"
)

func init() {
	// Register types that will be stored in sessions
	gob.Register([]string{})
}

// SessionManager wraps scs.SessionManager with application-specific
// methods. Only the account name is persisted; the role is re-resolved
// from the database on every request.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession establishes a session for an authenticated identity.
func (sm *SessionManager) CreateSession(r *http.Request, identity *Identity) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}
	sm.Put(r.Context(), SessionKeyName, identity.Name)
	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// IdentityName retrieves the logged-in account name from the session.
// Returns "" when the request is anonymous.
func (sm *SessionManager) IdentityName(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyName)
}

// Flash queues a one-shot message for the next rendered page.
func (sm *SessionManager) Flash(r *http.Request, message string) {
	flashes, _ := sm.Get(r.Context(), SessionKeyFlashes).([]string)
	sm.Put(r.Context(), SessionKeyFlashes, append(flashes, message))
}

// PopFlashes returns the queued messages and clears them.
func (sm *SessionManager) PopFlashes(r *http.Request) []string {
	flashes, _ := sm.Pop(r.Context(), SessionKeyFlashes).([]string)
	return flashes
}
