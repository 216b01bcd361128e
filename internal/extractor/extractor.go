// package extractor turns an Apple Music playlist URL into a canonical track list.
//
// Apple Music has no public API for playlist pages: track data is not reliably
// present in the visible markup, but the page embeds a serialized snapshot of
// its state in a <script id="serialized-server-data"> element. The extractor
// fetches the page with a browser User-Agent (non-browser clients get a
// reduced response), locates that element, and decodes its JSON payload with a
// defensive schema where every navigation step tolerates absent fields.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

const (
	// DefaultUserAgent mimics a desktop Chrome client.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	serverDataID  = "serialized-server-data"
	trackItemKind = "trackLockup"
)

// serverData mirrors the serialized page state. Every field is optional:
// the page layout is not under our control and partial data must not panic.
type serverData []struct {
	Data *pageData `json:"data"`
}

type pageData struct {
	Name     *string       `json:"name"`
	Sections []pageSection `json:"sections"`
}

type pageSection struct {
	ItemKind string     `json:"itemKind"`
	Items    []pageItem `json:"items"`
}

type pageItem struct {
	Title      *string `json:"title"`
	ArtistName *string `json:"artistName"`
}

// Extractor scrapes Apple Music playlist pages.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
}

// New creates an Extractor with the given HTTP client and User-Agent.
// A nil client falls back to [http.DefaultClient]; an empty User-Agent falls
// back to [DefaultUserAgent].
func New(client *http.Client, userAgent string) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Extractor{httpClient: client, userAgent: userAgent}
}

// Extract fetches the playlist page at sourceURL and returns its name and
// ordered track list.
//
// A single fetch is made per call, no retries. Failures are returned, never
// panicked, in three classes: transport ([shared.ErrFetchFailed]), missing
// embedded data ([shared.ErrMissingData]), and shape mismatches in the decoded
// tree ([shared.ErrMalformedData]).
func (e *Extractor) Extract(ctx context.Context, sourceURL string) (*models.Playlist, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d from %s", shared.ErrFetchFailed, resp.StatusCode, sourceURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedData, err)
	}

	return e.parseDocument(doc)
}

// parseDocument locates the serialized server data block and decodes it into a
// [models.Playlist].
func (e *Extractor) parseDocument(doc *goquery.Document) (*models.Playlist, error) {
	sel := doc.Find("script#" + serverDataID)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: no #%s script element (page layout changed or content is gated)", shared.ErrMissingData, serverDataID)
	}

	payload := strings.TrimSpace(sel.First().Text())
	if payload == "" {
		return nil, fmt.Errorf("%w: #%s script element is empty", shared.ErrMissingData, serverDataID)
	}

	var pages serverData
	if err := json.Unmarshal([]byte(payload), &pages); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedData, err)
	}

	if len(pages) == 0 || pages[0].Data == nil {
		return nil, fmt.Errorf("%w: serialized data has no page payload", shared.ErrMalformedData)
	}

	page := pages[0].Data

	playlist := &models.Playlist{Name: models.UnknownName}
	if page.Name != nil && *page.Name != "" {
		playlist.Name = *page.Name
	}

	for _, section := range page.Sections {
		if section.ItemKind != trackItemKind {
			continue
		}
		for _, item := range section.Items {
			playlist.Tracks = append(playlist.Tracks, trackFromItem(item))
		}
	}

	return playlist, nil
}

// trackFromItem converts a decoded page item to a track descriptor,
// substituting placeholders for absent fields.
func trackFromItem(item pageItem) models.Track {
	track := models.Track{Title: models.UnknownTitle, Artist: models.UnknownArtist}
	if item.Title != nil && *item.Title != "" {
		track.Title = *item.Title
	}
	if item.ArtistName != nil && *item.ArtistName != "" {
		track.Artist = *item.ArtistName
	}
	return track
}
