// Package session stores the caller identity in a signed, HttpOnly cookie.
//
// The cookie value is an HS256 token produced by auth.GenerateToken, so the
// server keeps no per-session state: Start overwrites whatever cookie the
// client had, End expires it.
package session

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/admissions/internal/server/auth"
)

// Options configure the session cookie.
type Options struct {
	CookieName string
	Secret     []byte
	Validity   time.Duration
	Secure     bool
}

type Manager struct {
	opts Options
	now  func() time.Time
}

func NewManager(opts Options) *Manager {
	return &Manager{opts: opts, now: time.Now}
}

// Start issues a new session for id, replacing any previous one.
func (m *Manager) Start(w http.ResponseWriter, id auth.Identity) error {
	token, err := auth.GenerateToken(id, m.opts.Secret, m.opts.Validity)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  m.now().Add(m.opts.Validity),
		MaxAge:   int(m.opts.Validity.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current returns the identity carried by the request cookie. Missing,
// tampered and expired cookies all read as "no session".
func (m *Manager) Current(r *http.Request) (*auth.Identity, bool) {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}

	id, err := auth.ParseToken(c.Value, m.opts.Secret)
	if err != nil {
		return nil, false
	}
	return id, true
}

// End clears the session cookie. Safe to call without a session.
func (m *Manager) End(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Resolve is middleware that puts the session identity, if any, into the
// request context for handlers to read with auth.IdentityFromContext.
func (m *Manager) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := m.Current(r); ok {
			r = r.WithContext(auth.WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
