package match

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
)

type mockDestination struct {
	results     map[string]*services.TrackCandidate
	searchErr   error
	searchCalls int
}

func (m *mockDestination) CurrentUserID(ctx context.Context) (string, error) { return "user", nil }

func (m *mockDestination) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*services.DestinationPlaylist, error) {
	return &services.DestinationPlaylist{ID: "pl", Name: name, Description: description}, nil
}

func (m *mockDestination) SearchTrack(ctx context.Context, title, artist string) (*services.TrackCandidate, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results[title+"|"+artist], nil
}

func (m *mockDestination) AddItems(ctx context.Context, playlistID string, uris []string) error {
	return nil
}

type mapCache struct {
	entries map[SearchKey]Result
}

func (c *mapCache) Lookup(key SearchKey) (Result, bool) {
	res, ok := c.entries[key]
	return res, ok
}

func (c *mapCache) Store(key SearchKey, res Result) error {
	c.entries[key] = res
	return nil
}

func TestMatcherMatch(t *testing.T) {
	dest := &mockDestination{results: map[string]*services.TrackCandidate{
		"Song A|Band B": {URI: "spotify:track:a", Name: "Song A", Artist: "Band B"},
	}}
	m := NewMatcher(dest, nil, nil)

	res, err := m.Match(context.Background(), SearchKey{Title: "Song A", Artist: "Band B"})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !res.Matched || res.URI != "spotify:track:a" {
		t.Errorf("Match() = %+v", res)
	}
}

func TestMatcherUnmatched(t *testing.T) {
	m := NewMatcher(&mockDestination{}, nil, nil)

	res, err := m.Match(context.Background(), SearchKey{Title: "Song C", Artist: "Band D"})
	if err != nil {
		t.Fatalf("Match() error = %v, empty result must not error", err)
	}
	if res.Matched {
		t.Errorf("Match() = %+v, want unmatched", res)
	}
}

func TestMatcherSearchErrorIsUnmatched(t *testing.T) {
	m := NewMatcher(&mockDestination{searchErr: fmt.Errorf("boom")}, nil, nil)

	res, err := m.Match(context.Background(), SearchKey{Title: "Song", Artist: "Band"})
	if err != nil {
		t.Fatalf("Match() error = %v, transient search failures must not propagate", err)
	}
	if res.Matched {
		t.Errorf("Match() = %+v, want unmatched", res)
	}
}

func TestMatcherAuthExpiredPropagates(t *testing.T) {
	m := NewMatcher(&mockDestination{searchErr: shared.ErrAuthExpired}, nil, nil)

	_, err := m.Match(context.Background(), SearchKey{Title: "Song", Artist: "Band"})
	if !errors.Is(err, shared.ErrAuthExpired) {
		t.Errorf("Match() error = %v, want ErrAuthExpired", err)
	}
}

func TestMatcherCacheHitSkipsSearch(t *testing.T) {
	key := SearchKey{Title: "Song A", Artist: "Band B"}
	cache := &mapCache{entries: map[SearchKey]Result{
		key: {Matched: true, URI: "spotify:track:cached"},
	}}
	dest := &mockDestination{}
	m := NewMatcher(dest, cache, nil)

	res, err := m.Match(context.Background(), key)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if res.URI != "spotify:track:cached" {
		t.Errorf("Match() uri = %q, want cached value", res.URI)
	}
	if dest.searchCalls != 0 {
		t.Errorf("search called %d times, want 0 on cache hit", dest.searchCalls)
	}
}

func TestMatcherStoresPositiveResults(t *testing.T) {
	key := SearchKey{Title: "Song A", Artist: "Band B"}
	cache := &mapCache{entries: map[SearchKey]Result{}}
	dest := &mockDestination{results: map[string]*services.TrackCandidate{
		"Song A|Band B": {URI: "spotify:track:a"},
	}}
	m := NewMatcher(dest, cache, nil)

	if _, err := m.Match(context.Background(), key); err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if _, ok := cache.entries[key]; !ok {
		t.Error("positive match should be cached")
	}

	// Unmatched results stay out of the cache.
	missKey := SearchKey{Title: "Song X", Artist: "Band Y"}
	if _, err := m.Match(context.Background(), missKey); err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if _, ok := cache.entries[missKey]; ok {
		t.Error("unmatched result must not be cached")
	}
}
