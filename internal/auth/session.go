// package auth owns the delegated-authorization credential lifecycle for the
// YouTube Data API: begin the consent redirect, complete the code exchange,
// and keep access tokens fresh.
//
// Uses [oauth2] for the authorization-code flow. Credentials are typed records
// passed explicitly between this package and the catalog client; the caller is
// responsible for persisting them between requests (web session store or
// config file), there is no process-wide session state.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/desertthunder/amx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	// ScopeYouTube grants playlist management on the user's YouTube account.
	ScopeYouTube = "https://www.googleapis.com/auth/youtube.force-ssl"
)

// Credential is the authorization state required by catalog requests.
//
// Fields originate only from a successful authorization exchange or a refresh
// response, never from untrusted input. Serializable to JSON for
// caller-provided storage.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Token converts the credential to an [oauth2.Token].
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// Expired reports whether the access token is past its declared expiry.
func (c *Credential) Expired() bool {
	return !c.Token().Valid()
}

// FromToken builds a Credential from an [oauth2.Token].
func FromToken(tok *oauth2.Token) *Credential {
	return &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}

// Session manages OAuth2 authorization flows against Google's endpoints.
//
// Each Begin call registers an opaque state token bound to the in-flight
// request; Complete rejects callbacks whose state was never issued, which
// prevents cross-request confusion.
type Session struct {
	config  *oauth2.Config
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewSession creates a Session with the given client credentials and redirect URI.
// Scopes default to [ScopeYouTube] when none are provided.
func NewSession(clientID, clientSecret, redirectURI string, scopes ...string) (*Session, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeYouTube}
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}

	return &Session{config: config, pending: make(map[string]struct{})}, nil
}

// Config returns the underlying [oauth2.Config].
func (s *Session) Config() *oauth2.Config {
	return s.config
}

// Begin starts an authorization flow: returns the consent URL to redirect the
// user to, and the opaque state token bound to this request.
//
// Requests offline access so the exchange yields a refresh token.
func (s *Session) Begin() (string, string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", "", err
	}

	s.mu.Lock()
	s.pending[state] = struct{}{}
	s.mu.Unlock()

	authURL := s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	return authURL, state, nil
}

// Complete finishes an authorization flow with the callback URL the provider
// redirected to.
//
// Fails with [shared.ErrStateMismatch] if the callback's state parameter does
// not match a prior Begin call, and with [shared.ErrAuthFailed] if the
// provider rejected the request or the code exchange fails. The state is
// consumed either way; a second callback with the same state is rejected.
func (s *Session) Complete(ctx context.Context, state, callbackURL string) (*Credential, error) {
	if state == "" {
		return nil, fmt.Errorf("%w: no state bound to request", shared.ErrStateMismatch)
	}

	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid callback URL: %v", shared.ErrAuthFailed, err)
	}
	query := parsed.Query()

	if query.Get("state") != state {
		return nil, fmt.Errorf("%w: callback state does not match request", shared.ErrStateMismatch)
	}

	s.mu.Lock()
	_, known := s.pending[state]
	delete(s.pending, state)
	s.mu.Unlock()

	if !known {
		return nil, fmt.Errorf("%w: unknown or already used state", shared.ErrStateMismatch)
	}

	if errParam := query.Get("error"); errParam != "" {
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, query.Get("error_description"))
	}

	code := query.Get("code")
	if code == "" {
		return nil, fmt.Errorf("%w: callback has no authorization code", shared.ErrAuthFailed)
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)
	}

	return FromToken(token), nil
}

// Valid returns a credential guaranteed to be unexpired.
//
// An unexpired credential is returned unchanged. An expired credential with a
// refresh token is refreshed (the refresh token is preserved, the access token
// and expiry are replaced). An expired credential without a refresh token
// fails with [shared.ErrReauthRequired] - it is never sent to the catalog.
func (s *Session) Valid(ctx context.Context, cred *Credential) (*Credential, error) {
	if cred == nil || cred.AccessToken == "" {
		return nil, fmt.Errorf("%w: no credential established", shared.ErrReauthRequired)
	}

	if !cred.Expired() {
		return cred, nil
	}

	if cred.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %v and no refresh token available", shared.ErrReauthRequired, shared.ErrTokenExpired)
	}

	token, err := s.config.TokenSource(ctx, cred.Token()).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh rejected: %v", shared.ErrReauthRequired, err)
	}

	refreshed := FromToken(token)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}
	return refreshed, nil
}

// Client returns an HTTP client that authorizes requests with the credential.
// The credential must have passed through [Session.Valid] first.
func (s *Session) Client(ctx context.Context, cred *Credential) *http.Client {
	return s.config.Client(ctx, cred.Token())
}
