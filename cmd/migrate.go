package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/catalog"
	"github.com/desertthunder/amx/internal/extractor"
	"github.com/desertthunder/amx/internal/repositories"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/desertthunder/amx/internal/tasks"
	"github.com/desertthunder/amx/internal/ui"
	"github.com/urfave/cli/v3"
)

// migrateCommand runs the full migration pipeline
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate an Apple Music playlist to YouTube",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the outcome as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the local search cache",
			},
		},
		Action: r.Migrate,
	}
}

// Migrate runs the pipeline end to end: authorize, extract, create, attach.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	sourceURL := cmd.StringArg("url")
	if sourceURL == "" {
		return fmt.Errorf("%w: playlist URL", shared.ErrMissingArgument)
	}

	configPath := cmd.String("config")
	r.reloadConfig(configPath)

	session, err := r.newAuthSession()
	if err != nil {
		return err
	}

	cred, err := r.ensureCredential(ctx, session, configPath)
	if err != nil {
		return err
	}

	db := r.openDatabase()
	if db != nil {
		defer db.Close()
	}

	var cache tasks.SearchCache
	if db != nil && !cmd.Bool("no-cache") {
		cache = repositories.NewSearchCacheRepository(db)
	}

	cat := catalog.New(session.Client(ctx, cred), r.catalogURL)
	engine := tasks.NewMigrationEngine(extractor.New(r.httpClient, r.config.Source.UserAgent), cat, cache)

	progress := make(chan tasks.ProgressUpdate, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	outcome := engine.Migrate(ctx, sourceURL, progress)
	close(progress)
	wg.Wait()

	if db != nil {
		if err := repositories.NewRunRepository(db).Create(repositories.NewMigrationRun(sourceURL, outcome)); err != nil {
			r.logger.Warn("failed to record migration run", "error", err)
		}
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(outcome, true); err != nil {
			return err
		}
	} else {
		if err := r.writePlain("%s", ui.RenderOutcome(outcome)); err != nil {
			return err
		}
	}

	if outcome.Failed() {
		return fmt.Errorf("migration failed: %s", outcome.FatalError)
	}
	return nil
}

// ensureCredential returns a valid credential, running the browser flow when
// the stored one is missing or can no longer be refreshed. Refreshed or newly
// issued tokens are persisted back to the config.
func (r *Runner) ensureCredential(ctx context.Context, session *auth.Session, configPath string) (*auth.Credential, error) {
	stored := credentialFromConfig(r.config)

	cred, err := session.Valid(ctx, stored)
	if errors.Is(err, shared.ErrReauthRequired) {
		r.logger.Info("no usable credential, starting authorization")
		if cred, err = r.doOAuth(session); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if stored == nil || cred.AccessToken != stored.AccessToken {
		if err := r.storeCredential(configPath, cred); err != nil {
			r.logger.Warn("failed to persist tokens", "error", err)
		}
	}

	return cred, nil
}

// openDatabase opens the configured database, returning nil when persistence
// is unavailable. Migration runs fine without it, just uncached.
func (r *Runner) openDatabase() *sql.DB {
	if r.config.Database.Path == "" {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("database unavailable, continuing without cache", "error", err)
		return nil
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("failed to run migrations, continuing without cache", "error", err)
		db.Close()
		return nil
	}

	return db
}
