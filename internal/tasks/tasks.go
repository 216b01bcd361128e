package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/amx/internal/catalog"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

// defaultSearchWorkers bounds concurrent catalog searches. Searches are
// read-only and independent, so they fan out; playlist appends stay
// sequential to preserve source order.
const defaultSearchWorkers = 4

// Extractor produces a canonical track list from a source playlist URL.
type Extractor interface {
	Extract(ctx context.Context, sourceURL string) (*models.Playlist, error)
}

// Catalog is the destination-side surface the engine needs.
type Catalog interface {
	CreatePlaylist(ctx context.Context, title, description string) (*catalog.CreatedPlaylist, error)
	Search(ctx context.Context, query string) (string, error)
	Attach(ctx context.Context, playlistID, videoID string) error
}

// SearchCache persists resolved search queries across runs. Optional.
type SearchCache interface {
	Get(query string) (string, bool, error)
	Put(query, videoID string) error
}

// MigrationEngine runs full playlist migrations.
type MigrationEngine struct {
	extractor Extractor
	catalog   Catalog
	cache     SearchCache
	workers   int
}

// NewMigrationEngine creates a MigrationEngine. The cache may be nil, in
// which case every query hits the catalog.
func NewMigrationEngine(extractor Extractor, cat Catalog, cache SearchCache) *MigrationEngine {
	return &MigrationEngine{
		extractor: extractor,
		catalog:   cat,
		cache:     cache,
		workers:   defaultSearchWorkers,
	}
}

// searchResult is the per-track resolution outcome, indexed by source position.
type searchResult struct {
	videoID string
	err     error
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never blocks execution.
func (e *MigrationEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Migrate runs the full pipeline for the playlist at sourceURL and returns a
// single outcome record. The returned outcome is never nil: fatal failures
// (extraction, playlist creation) are reported through its FatalError field
// with no per-track processing performed.
func (e *MigrationEngine) Migrate(ctx context.Context, sourceURL string, progress chan<- ProgressUpdate) *models.Outcome {
	if e.extractor == nil || e.catalog == nil {
		return models.FatalOutcome(fmt.Errorf("%w: migration engine not initialized", shared.ErrServiceUnavailable))
	}

	e.sendProgress(progress, fetchSourceUpdate(sourceURL))

	playlist, err := e.extractor.Extract(ctx, sourceURL)
	if err != nil {
		return models.FatalOutcome(err)
	}

	total := len(playlist.Tracks)
	e.sendProgress(progress, foundPlaylistUpdate(playlist, total))
	e.sendProgress(progress, createDestinationUpdate(playlist.Name))

	created, err := e.catalog.CreatePlaylist(ctx,
		fmt.Sprintf("%s (Migrated)", playlist.Name),
		fmt.Sprintf("Migrated from %s", sourceURL))
	if err != nil {
		return models.FatalOutcome(err)
	}

	outcome := &models.Outcome{
		PlaylistURL: created.URL,
		TotalTracks: total,
	}

	results := e.resolveTracks(ctx, playlist.Tracks, progress)

	for i, track := range playlist.Tracks {
		query := track.Query()
		result := results[i]

		switch {
		case result.err != nil:
			outcome.TrackErrors = append(outcome.TrackErrors, fmt.Sprintf("search failed for '%s': %v", query, result.err))
		case result.videoID == "":
			outcome.TrackErrors = append(outcome.TrackErrors, fmt.Sprintf("no match found for '%s'", query))
		default:
			e.sendProgress(progress, attachTrackUpdate(i+1, total, track))
			if err := e.catalog.Attach(ctx, created.ID, result.videoID); err != nil {
				outcome.TrackErrors = append(outcome.TrackErrors, fmt.Sprintf("failed to add '%s': %v", query, err))
				continue
			}
			outcome.MigratedCount++
		}
	}

	e.sendProgress(progress, completeUpdate(outcome))
	return outcome
}

// resolveTracks resolves every track to a video ID with a bounded worker
// pool. Results land in a slice indexed by source position, so fan-out never
// disturbs ordering.
func (e *MigrationEngine) resolveTracks(ctx context.Context, tracks []models.Track, progress chan<- ProgressUpdate) []searchResult {
	total := len(tracks)
	results := make([]searchResult, total)
	if total == 0 {
		return results
	}

	workers := e.workers
	if workers > total {
		workers = total
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				e.sendProgress(progress, searchTrackUpdate(i+1, total, tracks[i]))
				videoID, err := e.resolve(ctx, tracks[i].Query())
				results[i] = searchResult{videoID: videoID, err: err}
			}
		}()
	}

	for i := range tracks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// resolve answers a single query, consulting the cache before the catalog.
// Re-querying an unchanged catalog returns the same top result, so a cache
// hit is equivalent to a live search.
func (e *MigrationEngine) resolve(ctx context.Context, query string) (string, error) {
	if e.cache != nil {
		if videoID, found, err := e.cache.Get(query); err == nil && found {
			return videoID, nil
		}
	}

	videoID, err := e.catalog.Search(ctx, query)
	if err != nil {
		return "", err
	}

	if e.cache != nil && videoID != "" {
		e.cache.Put(query, videoID)
	}

	return videoID, nil
}
