package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/catalog"
	"github.com/desertthunder/amx/internal/extractor"
	"github.com/desertthunder/amx/internal/repositories"
	"github.com/desertthunder/amx/internal/server"
	"github.com/desertthunder/amx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// serveCommand starts the browser front-end
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web front-end for browser-driven migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Serve,
	}
}

// Serve runs the web application until the process is stopped.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	session, err := r.newAuthSession()
	if err != nil {
		return err
	}

	db := r.openDatabase()
	if db != nil {
		defer db.Close()
	}

	var cache tasks.SearchCache
	var runs server.RunRecorder
	if db != nil {
		cache = repositories.NewSearchCacheRepository(db)
		runs = repositories.NewRunRepository(db)
	}

	ext := extractor.New(r.httpClient, r.config.Source.UserAgent)

	factory := func(ctx context.Context, cred *auth.Credential) (server.Migrator, error) {
		cat := catalog.New(session.Client(ctx, cred), r.catalogURL)
		return tasks.NewMigrationEngine(ext, cat, cache), nil
	}

	app := server.NewApp(r.logger, session, factory, runs)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger), server.Recover(r.logger))
	router.Handler(app)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	r.logger.Info("starting web server", "addr", addr)
	r.writePlain("→ Listening on http://%s\n", addr)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
