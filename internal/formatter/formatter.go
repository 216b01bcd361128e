// package formatter provides functions to export extracted playlists and
// migration outcomes to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

// PlaylistToCSV converts an extracted playlist to CSV format with columns: #, Title, Artist
func PlaylistToCSV(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"#", "Title", "Artist"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range playlist.Tracks {
		record := []string{
			fmt.Sprintf("%d", i+1),
			track.Title,
			track.Artist,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistToMarkdown converts an extracted playlist to Markdown format
func PlaylistToMarkdown(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(playlist.Tracks)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range playlist.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// PlaylistToText converts an extracted playlist to plain text format
func PlaylistToText(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(playlist.Tracks)))

	for i, track := range playlist.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// PlaylistToJSON generates a JSON representation of an extracted playlist
func PlaylistToJSON(playlist *models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// OutcomeToText converts a migration outcome to a plain text summary
func OutcomeToText(outcome *models.Outcome) ([]byte, error) {
	var buf bytes.Buffer

	if outcome.Failed() {
		buf.WriteString("Migration failed\n")
		buf.WriteString(fmt.Sprintf("Error: %s\n", outcome.FatalError))
		return buf.Bytes(), nil
	}

	buf.WriteString(fmt.Sprintf("Migrated: %d/%d tracks\n", outcome.MigratedCount, outcome.TotalTracks))
	buf.WriteString(fmt.Sprintf("Playlist: %s\n", outcome.PlaylistURL))

	if len(outcome.TrackErrors) > 0 {
		buf.WriteString("\nFailed tracks:\n")
		for _, trackErr := range outcome.TrackErrors {
			buf.WriteString(fmt.Sprintf("  - %s\n", trackErr))
		}
	}

	return buf.Bytes(), nil
}

// OutcomeToJSON generates a JSON representation of a migration outcome
func OutcomeToJSON(outcome *models.Outcome) ([]byte, error) {
	return shared.MarshalJSON(outcome, true)
}
