package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

func pageWithData(data string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Playlist</title></head>
<body>
<div id="app">visible markup without track data</div>
<script id="serialized-server-data" type="application/json">%s</script>
</body>
</html>`, data)
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
			t.Errorf("expected browser User-Agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, html)
	}))
}

func TestExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("Extract", func(t *testing.T) {
		t.Run("extracts name and ordered tracks", func(t *testing.T) {
			data := `[{"data":{"name":"Road Trip","sections":[
				{"itemKind":"heroShelf","items":[{"title":"ignored"}]},
				{"itemKind":"trackLockup","items":[
					{"title":"Song A","artistName":"Artist X"},
					{"title":"Song B","artistName":"Artist Y"}
				]},
				{"itemKind":"trackLockup","items":[
					{"title":"Song C","artistName":"Artist Z"}
				]}
			]}}]`
			server := serveHTML(t, pageWithData(data))
			defer server.Close()

			playlist, err := New(nil, "").Extract(ctx, server.URL)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if playlist.Name != "Road Trip" {
				t.Errorf("expected name 'Road Trip', got %q", playlist.Name)
			}
			if len(playlist.Tracks) != 3 {
				t.Fatalf("expected 3 tracks, got %d", len(playlist.Tracks))
			}

			want := []models.Track{
				{Title: "Song A", Artist: "Artist X"},
				{Title: "Song B", Artist: "Artist Y"},
				{Title: "Song C", Artist: "Artist Z"},
			}
			for i, tr := range want {
				if playlist.Tracks[i] != tr {
					t.Errorf("track %d: expected %+v, got %+v", i, tr, playlist.Tracks[i])
				}
			}
		})

		t.Run("substitutes placeholders for missing fields", func(t *testing.T) {
			data := `[{"data":{"name":"Sparse","sections":[
				{"itemKind":"trackLockup","items":[
					{"artistName":"Artist Only"},
					{"title":"Title Only"},
					{}
				]}
			]}}]`
			server := serveHTML(t, pageWithData(data))
			defer server.Close()

			playlist, err := New(nil, "").Extract(ctx, server.URL)
			if err != nil {
				t.Fatalf("expected extraction to succeed, got %v", err)
			}

			if playlist.Tracks[0].Title != models.UnknownTitle {
				t.Errorf("expected placeholder title, got %q", playlist.Tracks[0].Title)
			}
			if playlist.Tracks[1].Artist != models.UnknownArtist {
				t.Errorf("expected placeholder artist, got %q", playlist.Tracks[1].Artist)
			}
			if playlist.Tracks[2].Query() != "Unknown Title by Unknown Artist" {
				t.Errorf("unexpected query: %q", playlist.Tracks[2].Query())
			}
		})

		t.Run("defaults playlist name when absent", func(t *testing.T) {
			data := `[{"data":{"sections":[{"itemKind":"trackLockup","items":[{"title":"A","artistName":"B"}]}]}}]`
			server := serveHTML(t, pageWithData(data))
			defer server.Close()

			playlist, err := New(nil, "").Extract(ctx, server.URL)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if playlist.Name != models.UnknownName {
				t.Errorf("expected %q, got %q", models.UnknownName, playlist.Name)
			}
		})
	})

	t.Run("Failure Classes", func(t *testing.T) {
		t.Run("missing data block", func(t *testing.T) {
			server := serveHTML(t, `<html><body><p>consent wall</p></body></html>`)
			defer server.Close()

			playlist, err := New(nil, "").Extract(ctx, server.URL)
			if !errors.Is(err, shared.ErrMissingData) {
				t.Fatalf("expected ErrMissingData, got %v", err)
			}
			if playlist != nil {
				t.Error("expected no partially populated playlist")
			}
		})

		t.Run("empty data block", func(t *testing.T) {
			server := serveHTML(t, pageWithData("  "))
			defer server.Close()

			if _, err := New(nil, "").Extract(ctx, server.URL); !errors.Is(err, shared.ErrMissingData) {
				t.Fatalf("expected ErrMissingData, got %v", err)
			}
		})

		t.Run("malformed JSON", func(t *testing.T) {
			server := serveHTML(t, pageWithData(`{"not":"an array"`))
			defer server.Close()

			if _, err := New(nil, "").Extract(ctx, server.URL); !errors.Is(err, shared.ErrMalformedData) {
				t.Fatalf("expected ErrMalformedData, got %v", err)
			}
		})

		t.Run("shape mismatch", func(t *testing.T) {
			for name, data := range map[string]string{
				"empty array":  `[]`,
				"null payload": `[{"data":null}]`,
			} {
				t.Run(name, func(t *testing.T) {
					server := serveHTML(t, pageWithData(data))
					defer server.Close()

					if _, err := New(nil, "").Extract(ctx, server.URL); !errors.Is(err, shared.ErrMalformedData) {
						t.Fatalf("expected ErrMalformedData, got %v", err)
					}
				})
			}
		})

		t.Run("non-2xx status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			if _, err := New(nil, "").Extract(ctx, server.URL); !errors.Is(err, shared.ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
		})

		t.Run("unreachable host", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close()

			if _, err := New(nil, "").Extract(ctx, server.URL); !errors.Is(err, shared.ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
		})
	})
}
