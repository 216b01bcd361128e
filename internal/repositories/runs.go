package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

// MigrationRun is a persisted record of a single migration outcome.
type MigrationRun struct {
	ID            string
	SourceURL     string
	PlaylistURL   string
	TotalTracks   int
	MigratedCount int
	TrackErrors   []string
	FatalError    string
	CreatedAt     time.Time
}

// NewMigrationRun builds a MigrationRun from an outcome with a fresh ID.
func NewMigrationRun(sourceURL string, outcome *models.Outcome) *MigrationRun {
	return &MigrationRun{
		ID:            shared.GenerateID(),
		SourceURL:     sourceURL,
		PlaylistURL:   outcome.PlaylistURL,
		TotalTracks:   outcome.TotalTracks,
		MigratedCount: outcome.MigratedCount,
		TrackErrors:   outcome.TrackErrors,
		FatalError:    outcome.FatalError,
	}
}

// RunRepository persists migration run history.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository with the given database.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a migration run record.
func (r *RunRepository) Create(run *MigrationRun) error {
	trackErrors, err := json.Marshal(run.TrackErrors)
	if err != nil {
		return fmt.Errorf("failed to marshal track errors: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO migration_runs (id, source_url, playlist_url, total_tracks, migrated_count, track_errors, fatal_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceURL, run.PlaylistURL, run.TotalTracks, run.MigratedCount, string(trackErrors), run.FatalError,
	)
	if err != nil {
		return fmt.Errorf("failed to insert migration run: %w", err)
	}
	return nil
}

// Get retrieves a migration run by ID.
func (r *RunRepository) Get(id string) (*MigrationRun, error) {
	row := r.db.QueryRow(
		`SELECT id, source_url, playlist_url, total_tracks, migrated_count, track_errors, fatal_error, created_at
		 FROM migration_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migration run: %w", err)
	}
	return run, nil
}

// List returns the most recent migration runs, newest first.
func (r *RunRepository) List(limit int) ([]MigrationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		`SELECT id, source_url, playlist_url, total_tracks, migrated_count, track_errors, fatal_error, created_at
		 FROM migration_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list migration runs: %w", err)
	}
	defer rows.Close()

	var runs []MigrationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan migration run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*MigrationRun, error) {
	var run MigrationRun
	var playlistURL, trackErrors, fatalError sql.NullString

	err := row.Scan(&run.ID, &run.SourceURL, &playlistURL, &run.TotalTracks,
		&run.MigratedCount, &trackErrors, &fatalError, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	run.PlaylistURL = playlistURL.String
	run.FatalError = fatalError.String
	if trackErrors.Valid && trackErrors.String != "" {
		if err := json.Unmarshal([]byte(trackErrors.String), &run.TrackErrors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal track errors: %w", err)
		}
	}

	return &run, nil
}
