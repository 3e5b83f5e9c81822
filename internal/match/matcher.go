package match

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
)

// Result is the outcome of resolving one SearchKey: either exactly one
// destination track or nothing. There is no partial or fuzzy state.
type Result struct {
	Matched bool
	URI     string
	Name    string
	Artist  string
}

// Cache looks up previously resolved keys so repeated tracks across
// playlists and runs skip the search round trip. Implementations only cache
// positive results; an absent key always falls through to the catalog.
type Cache interface {
	Lookup(key SearchKey) (Result, bool)
	Store(key SearchKey, res Result) error
}

// Matcher resolves SearchKeys against the destination catalog.
//
// Policy: one search, one candidate requested, first result authoritative.
// False positives (wrong version or cover) are accepted in exchange for never
// blocking on ambiguity.
type Matcher struct {
	dest   services.DestinationClient
	cache  Cache
	logger *log.Logger
}

// NewMatcher creates a Matcher. cache may be nil to disable caching.
func NewMatcher(dest services.DestinationClient, cache Cache, logger *log.Logger) *Matcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Matcher{dest: dest, cache: cache, logger: logger}
}

// Match resolves a key to zero-or-one destination track.
//
// An empty catalog result is a normal Unmatched outcome, never an error.
// Transient search failures also resolve to Unmatched so a single flaky
// round trip cannot halt a run; only authentication expiry propagates.
func (m *Matcher) Match(ctx context.Context, key SearchKey) (Result, error) {
	if m.cache != nil {
		if res, ok := m.cache.Lookup(key); ok {
			m.logger.Debug("match cache hit", "title", key.Title, "artist", key.Artist)
			return res, nil
		}
	}

	candidate, err := m.dest.SearchTrack(ctx, key.Title, key.Artist)
	if err != nil {
		if errors.Is(err, shared.ErrAuthExpired) {
			return Result{}, err
		}
		m.logger.Warn("track search failed", "title", key.Title, "artist", key.Artist, "err", err)
		return Result{}, nil
	}

	if candidate == nil {
		return Result{}, nil
	}

	res := Result{
		Matched: true,
		URI:     candidate.URI,
		Name:    candidate.Name,
		Artist:  candidate.Artist,
	}

	if m.cache != nil {
		if err := m.cache.Store(key, res); err != nil {
			m.logger.Warn("failed to cache match", "title", key.Title, "err", err)
		}
	}

	return res, nil
}
