package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tuneport/tuneport/internal/match"
	"github.com/tuneport/tuneport/internal/shared"
)

// MatchCacheRepository implements match.Cache over the match_cache table.
//
// Keys are normalized title|artist pairs, so lookups survive case and
// whitespace differences between runs. Only positive matches are stored;
// the matcher never asks to cache a miss.
type MatchCacheRepository struct {
	db *sql.DB
}

// NewMatchCacheRepository creates a MatchCacheRepository with the given database connection.
func NewMatchCacheRepository(db *sql.DB) *MatchCacheRepository {
	return &MatchCacheRepository{db: db}
}

// Lookup returns the cached match for a search key, if any.
func (r *MatchCacheRepository) Lookup(key match.SearchKey) (match.Result, bool) {
	var res match.Result

	row := r.db.QueryRow(
		`SELECT uri, name, artist FROM match_cache WHERE key = ?`,
		shared.NormalizeTrackKey(key.Title, key.Artist),
	)
	if err := row.Scan(&res.URI, &res.Name, &res.Artist); err != nil {
		return match.Result{}, false
	}

	res.Matched = true
	return res, true
}

// Store caches a positive match. Re-storing an existing key is a no-op.
func (r *MatchCacheRepository) Store(key match.SearchKey, res match.Result) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO match_cache (key, uri, name, artist, created_at) VALUES (?, ?, ?, ?, ?)`,
		shared.NormalizeTrackKey(key.Title, key.Artist), res.URI, res.Name, res.Artist, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache match: %w", err)
	}

	return nil
}
