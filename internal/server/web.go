package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/repositories"
	"github.com/desertthunder/amx/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

// Migrator runs a playlist migration with an authorized catalog client.
type Migrator interface {
	Migrate(ctx context.Context, sourceURL string, progress chan<- tasks.ProgressUpdate) *models.Outcome
}

// EngineFactory builds a Migrator bound to a validated credential. The web
// app calls it once per processed migration so each run gets a catalog client
// carrying fresh tokens.
type EngineFactory func(ctx context.Context, cred *auth.Credential) (Migrator, error)

// RunRecorder persists finished migration runs. Optional.
type RunRecorder interface {
	Create(run *repositories.MigrationRun) error
}

// App is the browser-facing front-end for the migration pipeline.
//
// Flow: the index form posts a playlist URL to /migrate, which stashes the
// URL in the session and redirects to Google's consent page; the provider
// redirects back to /oauth2callback, which completes the exchange; /process
// runs the migration and renders the outcome.
type App struct {
	logger    *log.Logger
	auth      *auth.Session
	engines   EngineFactory
	runs      RunRecorder
	store     *sessionStore
	templates *template.Template
}

// NewApp creates the web application. runs may be nil to skip run history.
func NewApp(logger *log.Logger, session *auth.Session, engines EngineFactory, runs RunRecorder) *App {
	return &App{
		logger:    logger,
		auth:      session,
		engines:   engines,
		runs:      runs,
		store:     newSessionStore(),
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Routes returns the HTTP routes this handler serves.
func (a *App) Routes() []string {
	return []string{"/", "/migrate", "/oauth2callback", "/process"}
}

// ServeHTTP dispatches to the page handlers.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		a.handleIndex(w, r)
	case r.URL.Path == "/migrate" && r.Method == http.MethodPost:
		a.handleMigrate(w, r)
	case r.URL.Path == "/oauth2callback" && r.Method == http.MethodGet:
		a.handleCallback(w, r)
	case r.URL.Path == "/process" && r.Method == http.MethodGet:
		a.handleProcess(w, r)
	case r.URL.Path == "/":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.store.get(w, r)
	a.render(w, "index.html", map[string]any{})
}

// handleMigrate captures the source URL and starts the consent redirect.
func (a *App) handleMigrate(w http.ResponseWriter, r *http.Request) {
	sess := a.store.get(w, r)

	if err := r.ParseForm(); err != nil {
		a.renderError(w, http.StatusBadRequest, "Could not read the submitted form.")
		return
	}

	sourceURL := strings.TrimSpace(r.PostFormValue("playlist_url"))
	if sourceURL == "" {
		a.renderError(w, http.StatusBadRequest, "A playlist URL is required.")
		return
	}

	authURL, state, err := a.auth.Begin()
	if err != nil {
		a.logger.Error("failed to begin authorization", "error", err)
		a.renderError(w, http.StatusInternalServerError, "Could not start authorization.")
		return
	}

	sess.SourceURL = sourceURL
	sess.State = state
	sess.Credential = nil

	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback completes the code exchange and hands off to /process.
func (a *App) handleCallback(w http.ResponseWriter, r *http.Request) {
	sess := a.store.get(w, r)

	cred, err := a.auth.Complete(r.Context(), sess.State, r.URL.String())
	if err != nil {
		a.logger.Error("authorization failed", "error", err)
		a.renderError(w, http.StatusBadRequest, "Authorization failed. Please try again.")
		return
	}

	sess.State = ""
	sess.Credential = cred

	http.Redirect(w, r, "/process", http.StatusFound)
}

// handleProcess runs the migration for the session's source URL and renders
// the outcome. A missing or stale credential sends the user back to the form.
func (a *App) handleProcess(w http.ResponseWriter, r *http.Request) {
	sess := a.store.get(w, r)

	if sess.SourceURL == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	cred, err := a.auth.Valid(r.Context(), sess.Credential)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	sess.Credential = cred

	engine, err := a.engines(r.Context(), cred)
	if err != nil {
		a.logger.Error("failed to build migration engine", "error", err)
		a.renderError(w, http.StatusInternalServerError, "Could not start the migration.")
		return
	}

	outcome := engine.Migrate(r.Context(), sess.SourceURL, nil)

	if a.runs != nil {
		if err := a.runs.Create(repositories.NewMigrationRun(sess.SourceURL, outcome)); err != nil {
			a.logger.Warn("failed to record migration run", "error", err)
		}
	}

	if outcome.Failed() {
		a.logger.Error("migration failed", "source", sess.SourceURL, "error", outcome.FatalError)
	} else {
		a.logger.Info("migration complete", "source", sess.SourceURL,
			"migrated", outcome.MigratedCount, "total", outcome.TotalTracks)
	}

	sess.SourceURL = ""
	a.render(w, "results.html", map[string]any{"Outcome": outcome})
}

func (a *App) render(w http.ResponseWriter, name string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("failed to render template", "template", name, "error", err)
	}
}

func (a *App) renderError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.templates.ExecuteTemplate(w, "index.html", map[string]any{"Error": message}); err != nil {
		a.logger.Error("failed to render template", "template", "index.html", "error", err)
	}
}
