package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/amx/internal/extractor"
	"github.com/desertthunder/amx/internal/formatter"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/urfave/cli/v3"
)

// extractCommand scrapes a playlist without touching the destination
func extractCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Extract a playlist from an Apple Music URL (dry run, no migration)",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv, markdown",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to a file instead of stdout",
			},
		},
		Action: r.Extract,
	}
}

// Extract fetches and prints the playlist at the given URL.
func (r *Runner) Extract(ctx context.Context, cmd *cli.Command) error {
	sourceURL := cmd.StringArg("url")
	if sourceURL == "" {
		return fmt.Errorf("%w: playlist URL", shared.ErrMissingArgument)
	}

	r.logger.Info("extracting playlist", "url", sourceURL)

	ext := extractor.New(r.httpClient, r.config.Source.UserAgent)
	playlist, err := ext.Extract(ctx, sourceURL)
	if err != nil {
		return err
	}

	r.logger.Info("extraction complete", "name", playlist.Name, "tracks", len(playlist.Tracks))

	data, err := formatPlaylist(playlist, cmd.String("format"))
	if err != nil {
		return err
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return r.writePlain("✓ Playlist written to %s\n", outputPath)
	}

	return r.writePlain("%s", data)
}

func formatPlaylist(playlist *models.Playlist, format string) ([]byte, error) {
	switch format {
	case "text":
		return formatter.PlaylistToText(playlist)
	case "json":
		return formatter.PlaylistToJSON(playlist)
	case "csv":
		return formatter.PlaylistToCSV(playlist)
	case "markdown", "md":
		return formatter.PlaylistToMarkdown(playlist)
	default:
		return nil, fmt.Errorf("%w: unknown format '%s'", shared.ErrInvalidArgument, format)
	}
}
