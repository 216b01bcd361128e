package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestSearchCacheRepository(t *testing.T) {
	t.Run("miss on empty cache", func(t *testing.T) {
		repo := NewSearchCacheRepository(newTestDB(t))

		_, found, err := repo.Get("Song A by Artist X")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if found {
			t.Error("expected a cache miss")
		}
	})

	t.Run("put then get", func(t *testing.T) {
		repo := NewSearchCacheRepository(newTestDB(t))

		if err := repo.Put("Song A by Artist X", "vid123"); err != nil {
			t.Fatalf("failed to cache result: %v", err)
		}

		videoID, found, err := repo.Get("Song A by Artist X")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !found {
			t.Fatal("expected a cache hit")
		}
		if videoID != "vid123" {
			t.Errorf("expected vid123, got %s", videoID)
		}
	})

	t.Run("duplicate put is ignored", func(t *testing.T) {
		repo := NewSearchCacheRepository(newTestDB(t))

		if err := repo.Put("Song A by Artist X", "vid123"); err != nil {
			t.Fatalf("first put failed: %v", err)
		}
		if err := repo.Put("Song A by Artist X", "vid999"); err != nil {
			t.Fatalf("expected duplicate put to be ignored, got %v", err)
		}

		videoID, _, err := repo.Get("Song A by Artist X")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if videoID != "vid123" {
			t.Errorf("expected original cached value vid123, got %s", videoID)
		}
	})
}

func TestRunRepository(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))

		outcome := &models.Outcome{
			PlaylistURL:   "https://www.youtube.com/playlist?list=PL123",
			TotalTracks:   2,
			MigratedCount: 1,
			TrackErrors:   []string{"no match found for 'Song B by Artist Y'"},
		}
		run := NewMigrationRun("https://music.apple.com/us/playlist/road-trip/pl.123", outcome)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.PlaylistURL != outcome.PlaylistURL {
			t.Errorf("expected playlist URL %s, got %s", outcome.PlaylistURL, got.PlaylistURL)
		}
		if got.MigratedCount != 1 || got.TotalTracks != 2 {
			t.Errorf("unexpected counts: %d/%d", got.MigratedCount, got.TotalTracks)
		}
		if len(got.TrackErrors) != 1 {
			t.Fatalf("expected 1 track error, got %d", len(got.TrackErrors))
		}
	})

	t.Run("get unknown run", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))
		if _, err := repo.Get("missing"); err == nil {
			t.Fatal("expected error for unknown run")
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))

		for _, url := range []string{"https://example.com/a", "https://example.com/b"} {
			run := NewMigrationRun(url, &models.Outcome{TotalTracks: 1})
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.List(10)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("fatal run round-trips", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))

		run := NewMigrationRun("https://example.com/gone", models.FatalOutcome(shared.ErrMissingData))
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.FatalError == "" {
			t.Error("expected fatal error to be persisted")
		}
		if got.PlaylistURL != "" {
			t.Error("expected no playlist URL on fatal run")
		}
	})
}
