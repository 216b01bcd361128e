// package models defines the data model for the playlist migration pipeline
package models

import "fmt"

// Placeholder values substituted when the source page omits a field.
// Extraction never fails solely because one track is missing a title or artist.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
	UnknownName   = "Untitled Playlist"
)

// Track is a single track descriptor extracted from the source playlist.
// Immutable once extracted.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Query builds the destination catalog search query for the track.
func (t Track) Query() string {
	return fmt.Sprintf("%s by %s", t.Title, t.Artist)
}

// Playlist is the canonical track list scraped from the source page.
// Track order is preserved end-to-end into the destination playlist.
type Playlist struct {
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// Outcome is the single result record of a migration run.
//
// Invariants: FatalError set implies PlaylistURL empty and no per-track
// processing occurred; FatalError empty implies exactly TotalTracks search
// attempts were made and MigratedCount <= TotalTracks.
type Outcome struct {
	PlaylistURL   string   `json:"playlist_url,omitempty"`
	TotalTracks   int      `json:"total_tracks"`
	MigratedCount int      `json:"migrated_count"`
	TrackErrors   []string `json:"track_errors,omitempty"`
	FatalError    string   `json:"fatal_error,omitempty"`
}

// Failed reports whether the run aborted before any per-track processing.
func (o *Outcome) Failed() bool {
	return o.FatalError != ""
}

// FatalOutcome builds an Outcome for a run that aborted before any
// destination-side mutation.
func FatalOutcome(err error) *Outcome {
	return &Outcome{FatalError: err.Error()}
}
