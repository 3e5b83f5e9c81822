// package repositories persists transfer runs and match results to SQLite.
//
// RunRepository stores finished runs and their per-track outcomes for the
// report commands. MatchCacheRepository caches positive search results so
// repeated migrations skip already-resolved tracks.
package repositories

import (
	"time"
)

// RunRecord is one persisted transfer run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Matched    int
	Unmatched  int
	Errored    int
}

// OutcomeRecord is one persisted per-track outcome.
type OutcomeRecord struct {
	RunID            string
	PlaylistSourceID string
	SourceID         string
	Title            string
	Artist           string
	Matched          bool
	DestURI          string
	DestName         string
	DestArtist       string
	WriteError       string
}
