package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SearchCacheRepository stores resolved search queries.
//
// Safe to consult before every catalog search: an unchanged catalog returns
// the same top result for the same query, so a cache hit skips the network
// call without changing the migration outcome.
type SearchCacheRepository struct {
	db *sql.DB
}

// NewSearchCacheRepository creates a SearchCacheRepository with the given database.
func NewSearchCacheRepository(db *sql.DB) *SearchCacheRepository {
	return &SearchCacheRepository{db: db}
}

// Get returns the cached video ID for a query, and whether one was found.
func (r *SearchCacheRepository) Get(query string) (string, bool, error) {
	var videoID string
	err := r.db.QueryRow("SELECT video_id FROM search_cache WHERE query = ?", query).Scan(&videoID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read search cache: %w", err)
	}
	return videoID, true, nil
}

// Put caches a resolved query. Duplicate queries are silently ignored
// (UNIQUE constraint), so concurrent writers do not fail each other.
func (r *SearchCacheRepository) Put(query, videoID string) error {
	_, err := r.db.Exec("INSERT INTO search_cache (query, video_id) VALUES (?, ?)", query, videoID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache search result: %w", err)
	}
	return nil
}
