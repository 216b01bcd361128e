package server

import (
	"net/http"
	"sync"

	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/shared"
)

const sessionCookie = "amx_session"

// webSession is the per-browser state for an in-flight migration: the source
// URL captured from the form, the OAuth state bound to the consent redirect,
// and the credential once the exchange completes.
type webSession struct {
	SourceURL  string
	State      string
	Credential *auth.Credential
}

// sessionStore is an in-memory cookie session store. State is lost on
// restart, which invalidates in-flight OAuth flows but leaks nothing to disk.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*webSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*webSession)}
}

// get returns the session for the request's cookie, creating both when
// absent. The cookie is host-only and HTTP-only.
func (s *sessionStore) get(w http.ResponseWriter, r *http.Request) *webSession {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		sess, ok := s.sessions[cookie.Value]
		s.mu.Unlock()
		if ok {
			return sess
		}
	}

	id := shared.GenerateID()
	sess := &webSession{}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sess
}
