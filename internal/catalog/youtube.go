// package catalog is a typed façade over the three YouTube Data API v3
// operations the migration pipeline needs: create a playlist, search for a
// video, and append a video to a playlist.
//
// Request/response shapes follow
// https://developers.google.com/youtube/v3/docs - only the fields the
// pipeline reads are modeled. Ranking of search results is entirely delegated
// to YouTube's own relevance.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
	watchBaseURL   = "https://www.youtube.com/playlist?list="

	videoKind = "youtube#video"
)

// Category classifies an upstream API failure. The orchestrator does not
// branch on these beyond "this call failed"; they exist so reports and logs
// can name the failure class.
type Category string

const (
	Unauthorized    Category = "unauthorized"
	RateLimited     Category = "rate_limited"
	NotFound        Category = "not_found"
	Malformed       Category = "malformed_request"
	TransientServer Category = "transient_server"
	Unknown         Category = "unknown"
)

// Error is a catalog API failure carrying the upstream HTTP status and the
// upstream message verbatim for user-facing reporting.
type Error struct {
	Status   int
	Category Category
	Message  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("youtube API error (status %d, %s): %s", e.Status, e.Category, e.Message)
	}
	return fmt.Sprintf("youtube API error: status %d (%s)", e.Status, e.Category)
}

// CreatedPlaylist identifies a freshly created destination playlist.
type CreatedPlaylist struct {
	ID  string
	URL string
}

// Client issues authenticated requests against the YouTube Data API.
//
// The HTTP client is expected to inject credentials (an [oauth2] transport
// from the auth session); Client itself holds no token state. Requests are
// paced by a client-side limiter so bulk migrations stay clear of per-minute
// quota bursts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a catalog client. A nil HTTP client falls back to
// [http.DefaultClient]; an empty baseURL falls back to the public API.
func New(client *http.Client, baseURL string) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(8), 4),
	}
}

// apiError mirrors the Google API error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// doRequest performs a paced, authenticated request and decodes the response
// into result. Non-2xx responses become a categorized [*Error].
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request cancelled: %w", err)
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.categorize(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// categorize maps an error response to a [*Error], keeping the upstream
// message verbatim.
func (c *Client) categorize(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode, Category: Unknown}

	var envelope apiError
	var reason string
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Message = envelope.Error.Message
		if len(envelope.Error.Errors) > 0 {
			reason = envelope.Error.Errors[0].Reason
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.Category = RateLimited
	case resp.StatusCode == http.StatusForbidden && strings.Contains(strings.ToLower(reason), "uota"):
		// quotaExceeded / dailyLimitExceeded come back as 403s.
		apiErr.Category = RateLimited
	case resp.StatusCode == http.StatusForbidden && strings.Contains(strings.ToLower(reason), "ratelimit"):
		apiErr.Category = RateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr.Category = Unauthorized
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Category = NotFound
	case resp.StatusCode == http.StatusBadRequest:
		apiErr.Category = Malformed
	case resp.StatusCode >= 500:
		apiErr.Category = TransientServer
	}

	return apiErr
}

// CreatePlaylist creates a private playlist and returns its ID and watch URL.
func (c *Client) CreatePlaylist(ctx context.Context, title, description string) (*CreatedPlaylist, error) {
	body := map[string]any{
		"snippet": map[string]any{
			"title":       title,
			"description": description,
		},
		"status": map[string]any{
			"privacyStatus": "private",
		},
	}

	var created struct {
		ID string `json:"id"`
	}

	if err := c.doRequest(ctx, http.MethodPost, "/playlists?part=snippet,status", body, &created); err != nil {
		return nil, err
	}

	return &CreatedPlaylist{ID: created.ID, URL: watchBaseURL + created.ID}, nil
}

// Search returns the top-ranked video ID for the query, or "" when the
// catalog reports zero matches. Re-querying an unchanged catalog with the
// same query yields the same ID, so callers may cache results.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("/search?part=snippet&type=video&maxResults=1&q=%s", url.QueryEscape(query))

	var results struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}

	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return "", err
	}

	if len(results.Items) == 0 {
		return "", nil
	}

	return results.Items[0].ID.VideoID, nil
}

// Attach appends a video to the end of a playlist.
func (c *Client) Attach(ctx context.Context, playlistID, videoID string) error {
	body := map[string]any{
		"snippet": map[string]any{
			"playlistId": playlistID,
			"resourceId": map[string]any{
				"kind":    videoKind,
				"videoId": videoID,
			},
		},
	}

	return c.doRequest(ctx, http.MethodPost, "/playlistItems?part=snippet", body, nil)
}
