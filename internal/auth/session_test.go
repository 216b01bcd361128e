package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/amx/internal/shared"
)

// fakeTokenServer serves the OAuth2 token endpoint, recording the grant type
// of each request.
func fakeTokenServer(t *testing.T, accessToken, refreshToken string, grantTypes *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse token request form: %v", err)
		}
		if grantTypes != nil {
			*grantTypes = append(*grantTypes, r.FormValue("grant_type"))
		}

		resp := map[string]any{
			"access_token": accessToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		if refreshToken != "" {
			resp["refresh_token"] = refreshToken
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestSession(t *testing.T, tokenURL string) *Session {
	t.Helper()
	s, err := NewSession("client-id", "client-secret", "http://localhost:8080/oauth2callback")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if tokenURL != "" {
		s.config.Endpoint.TokenURL = tokenURL
	}
	return s
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSession", func(t *testing.T) {
		t.Run("requires client credentials", func(t *testing.T) {
			if _, err := NewSession("", "", ""); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Fatalf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("defaults to the youtube scope", func(t *testing.T) {
			s := newTestSession(t, "")
			if len(s.config.Scopes) != 1 || s.config.Scopes[0] != ScopeYouTube {
				t.Errorf("expected default scope %s, got %v", ScopeYouTube, s.config.Scopes)
			}
		})
	})

	t.Run("Begin", func(t *testing.T) {
		s := newTestSession(t, "")

		authURL, state, err := s.Begin()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if state == "" {
			t.Fatal("expected a non-empty state token")
		}
		if !strings.Contains(authURL, "state="+state) {
			t.Errorf("expected auth URL to carry the state token: %s", authURL)
		}
		if !strings.Contains(authURL, "access_type=offline") {
			t.Errorf("expected offline access request: %s", authURL)
		}

		if _, ok := s.pending[state]; !ok {
			t.Error("expected state to be registered as in-flight")
		}
	})

	t.Run("Complete", func(t *testing.T) {
		callback := func(state string) string {
			return fmt.Sprintf("http://localhost:8080/oauth2callback?state=%s&code=auth-code", state)
		}

		t.Run("exchanges code for credential", func(t *testing.T) {
			server := fakeTokenServer(t, "access-123", "refresh-456", nil)
			defer server.Close()

			s := newTestSession(t, server.URL)
			_, state, _ := s.Begin()

			cred, err := s.Complete(ctx, state, callback(state))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cred.AccessToken != "access-123" {
				t.Errorf("expected access token access-123, got %s", cred.AccessToken)
			}
			if cred.RefreshToken != "refresh-456" {
				t.Errorf("expected refresh token refresh-456, got %s", cred.RefreshToken)
			}
			if cred.Expired() {
				t.Error("expected a fresh credential")
			}
		})

		t.Run("rejects missing state", func(t *testing.T) {
			s := newTestSession(t, "")
			if _, err := s.Complete(ctx, "", callback("")); !errors.Is(err, shared.ErrStateMismatch) {
				t.Fatalf("expected ErrStateMismatch, got %v", err)
			}
		})

		t.Run("rejects mismatched state", func(t *testing.T) {
			s := newTestSession(t, "")
			_, state, _ := s.Begin()

			if _, err := s.Complete(ctx, state, callback("some-other-state")); !errors.Is(err, shared.ErrStateMismatch) {
				t.Fatalf("expected ErrStateMismatch, got %v", err)
			}
		})

		t.Run("rejects state that was never issued", func(t *testing.T) {
			s := newTestSession(t, "")
			if _, err := s.Complete(ctx, "forged", callback("forged")); !errors.Is(err, shared.ErrStateMismatch) {
				t.Fatalf("expected ErrStateMismatch, got %v", err)
			}
		})

		t.Run("consumes state on first use", func(t *testing.T) {
			server := fakeTokenServer(t, "access-123", "", nil)
			defer server.Close()

			s := newTestSession(t, server.URL)
			_, state, _ := s.Begin()

			if _, err := s.Complete(ctx, state, callback(state)); err != nil {
				t.Fatalf("first completion failed: %v", err)
			}
			if _, err := s.Complete(ctx, state, callback(state)); !errors.Is(err, shared.ErrStateMismatch) {
				t.Fatalf("expected replayed state to be rejected, got %v", err)
			}
		})

		t.Run("surfaces provider denial", func(t *testing.T) {
			s := newTestSession(t, "")
			_, state, _ := s.Begin()

			denied := fmt.Sprintf("http://localhost:8080/oauth2callback?state=%s&error=access_denied&error_description=user+declined", state)
			if _, err := s.Complete(ctx, state, denied); !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("fails when exchange is rejected", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":"invalid_grant"}`)
			}))
			defer server.Close()

			s := newTestSession(t, server.URL)
			_, state, _ := s.Begin()

			if _, err := s.Complete(ctx, state, callback(state)); !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
		})
	})

	t.Run("Valid", func(t *testing.T) {
		t.Run("returns unexpired credential unchanged", func(t *testing.T) {
			s := newTestSession(t, "")
			cred := &Credential{AccessToken: "live", Expiry: time.Now().Add(time.Hour)}

			got, err := s.Valid(ctx, cred)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != cred {
				t.Error("expected the same credential back")
			}
		})

		t.Run("refreshes expired credential", func(t *testing.T) {
			var grants []string
			server := fakeTokenServer(t, "fresh-token", "", &grants)
			defer server.Close()

			s := newTestSession(t, server.URL)
			cred := &Credential{
				AccessToken:  "stale",
				RefreshToken: "refresh-789",
				Expiry:       time.Now().Add(-time.Minute),
			}

			got, err := s.Valid(ctx, cred)
			if err != nil {
				t.Fatalf("expected refresh to succeed, got %v", err)
			}
			if got.AccessToken != "fresh-token" {
				t.Errorf("expected refreshed access token, got %s", got.AccessToken)
			}
			if got.RefreshToken != "refresh-789" {
				t.Errorf("expected refresh token to be preserved, got %s", got.RefreshToken)
			}
			if got.Expired() {
				t.Error("expected refreshed credential to be unexpired")
			}
			if len(grants) != 1 || grants[0] != "refresh_token" {
				t.Errorf("expected a single refresh_token grant, got %v", grants)
			}
		})

		t.Run("requires reauthorization without refresh token", func(t *testing.T) {
			s := newTestSession(t, "")
			cred := &Credential{AccessToken: "stale", Expiry: time.Now().Add(-time.Minute)}

			if _, err := s.Valid(ctx, cred); !errors.Is(err, shared.ErrReauthRequired) {
				t.Fatalf("expected ErrReauthRequired, got %v", err)
			}
		})

		t.Run("requires reauthorization for missing credential", func(t *testing.T) {
			s := newTestSession(t, "")
			if _, err := s.Valid(ctx, nil); !errors.Is(err, shared.ErrReauthRequired) {
				t.Fatalf("expected ErrReauthRequired, got %v", err)
			}
		})

		t.Run("surfaces rejected refresh", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":"invalid_grant"}`)
			}))
			defer server.Close()

			s := newTestSession(t, server.URL)
			cred := &Credential{
				AccessToken:  "stale",
				RefreshToken: "revoked",
				Expiry:       time.Now().Add(-time.Minute),
			}

			if _, err := s.Valid(ctx, cred); !errors.Is(err, shared.ErrReauthRequired) {
				t.Fatalf("expected ErrReauthRequired, got %v", err)
			}
		})
	})
}
