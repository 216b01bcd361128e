package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/amx/internal/repositories"
	"github.com/urfave/cli/v3"
)

// runsCommand lists past migration runs
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List past migration runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Runs,
	}
}

// Runs prints the stored migration history, newest first.
func (r *Runner) Runs(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	db := r.openDatabase()
	if db == nil {
		return fmt.Errorf("no database configured, run 'amx setup' first")
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No migration runs recorded yet.\n")
	}

	r.writePlainHeader("Migration Runs")
	for _, run := range runs {
		if run.FatalError != "" {
			r.writePlain("✗ %s  %s\n    failed: %s\n", run.CreatedAt.Format("2006-01-02 15:04"), run.SourceURL, run.FatalError)
			continue
		}
		r.writePlain("✓ %s  %s\n    %d/%d tracks → %s\n", run.CreatedAt.Format("2006-01-02 15:04"),
			run.SourceURL, run.MigratedCount, run.TotalTracks, run.PlaylistURL)
	}

	return nil
}
