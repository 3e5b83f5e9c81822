package library

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
)

// pagedSource serves canned pages keyed by playlist ID and continuation token.
type pagedSource struct {
	liked      []*services.ItemPage
	playlists  []*services.PlaylistPage
	items      map[string][]*services.ItemPage
	likedCalls int
	failLiked  bool
}

func (s *pagedSource) LikedPage(ctx context.Context, token string) (*services.ItemPage, error) {
	s.likedCalls++
	if s.failLiked {
		return nil, fmt.Errorf("%w: proxy down", shared.ErrUpstreamUnavailable)
	}
	return pageAt(s.liked, token)
}

func (s *pagedSource) PlaylistsPage(ctx context.Context, token string) (*services.PlaylistPage, error) {
	return pageAt(s.playlists, token)
}

func (s *pagedSource) PlaylistItemsPage(ctx context.Context, playlistID, token string) (*services.ItemPage, error) {
	pages, ok := s.items[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return pageAt(pages, token)
}

// pageAt resolves a token of the form "" (first), "p1", "p2", ...
func pageAt[P any](pages []*P, token string) (*P, error) {
	idx := 0
	if token != "" {
		if _, err := fmt.Sscanf(token, "p%d", &idx); err != nil {
			return nil, fmt.Errorf("bad token %q", token)
		}
	}
	if idx >= len(pages) {
		return nil, fmt.Errorf("token %q out of range", token)
	}
	return pages[idx], nil
}

func item(id string) services.SourceItem {
	return services.SourceItem{Title: "Song " + id, RawArtist: "Artist " + id, SourceID: id}
}

func threePageSource() *pagedSource {
	return &pagedSource{
		liked: []*services.ItemPage{
			{Items: []services.SourceItem{item("1"), item("2")}, NextToken: "p1"},
			{Items: []services.SourceItem{item("3")}, NextToken: "p2"},
			{Items: []services.SourceItem{item("4"), item("5")}},
		},
	}
}

func TestLikedItemsPagination(t *testing.T) {
	reader := NewReader(threePageSource())

	got, err := reader.LikedItems().Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(got) != 5 {
		t.Fatalf("Collect() returned %d items, want 5", len(got))
	}
	for i, want := range []string{"1", "2", "3", "4", "5"} {
		if got[i].SourceID != want {
			t.Errorf("item %d = %s, want %s (order must follow pages)", i, got[i].SourceID, want)
		}
	}
}

func TestIteratorLazyFetch(t *testing.T) {
	src := threePageSource()
	reader := NewReader(src)

	it := reader.LikedItems()
	if src.likedCalls != 0 {
		t.Errorf("iterator construction fetched %d pages, want 0", src.likedCalls)
	}

	// Two items live on the first page; no second fetch yet.
	for range 2 {
		if _, ok, err := it.Next(context.Background()); !ok || err != nil {
			t.Fatalf("Next() = %v, %v", ok, err)
		}
	}
	if src.likedCalls != 1 {
		t.Errorf("after first page consumed: %d fetches, want 1", src.likedCalls)
	}

	// Advancing past the buffer triggers the next page.
	if _, ok, _ := it.Next(context.Background()); !ok {
		t.Fatal("Next() should yield third item")
	}
	if src.likedCalls != 2 {
		t.Errorf("after third item: %d fetches, want 2", src.likedCalls)
	}
}

func TestIteratorRestartable(t *testing.T) {
	src := threePageSource()
	reader := NewReader(src)

	first, err := reader.LikedItems().Collect(context.Background())
	if err != nil {
		t.Fatalf("first pass error = %v", err)
	}
	second, err := reader.LikedItems().Collect(context.Background())
	if err != nil {
		t.Fatalf("second pass error = %v", err)
	}

	if len(first) != len(second) {
		t.Errorf("restarted iteration saw %d items, want %d", len(second), len(first))
	}
}

func TestIteratorExhaustedStaysExhausted(t *testing.T) {
	reader := NewReader(&pagedSource{liked: []*services.ItemPage{{}}})
	it := reader.LikedItems()

	for range 3 {
		if _, ok, err := it.Next(context.Background()); ok || err != nil {
			t.Errorf("Next() on empty sequence = %v, %v", ok, err)
		}
	}
}

func TestIteratorFetchErrorSticky(t *testing.T) {
	reader := NewReader(&pagedSource{failLiked: true})
	it := reader.LikedItems()

	_, ok, err := it.Next(context.Background())
	if ok || !errors.Is(err, shared.ErrUpstreamUnavailable) {
		t.Fatalf("Next() = %v, %v; want upstream error", ok, err)
	}

	// The error must persist on subsequent calls.
	_, ok, err = it.Next(context.Background())
	if ok || !errors.Is(err, shared.ErrUpstreamUnavailable) {
		t.Errorf("Next() after error = %v, %v", ok, err)
	}
}

func TestPlaylistItems(t *testing.T) {
	src := &pagedSource{items: map[string][]*services.ItemPage{
		"PL1": {{Items: []services.SourceItem{item("a")}}},
	}}
	reader := NewReader(src)

	got, err := reader.PlaylistItems("PL1").Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 1 || got[0].SourceID != "a" {
		t.Errorf("Collect() = %+v", got)
	}

	if _, err := reader.PlaylistItems("missing").Collect(context.Background()); err == nil {
		t.Error("Collect() for unknown playlist should fail")
	}
}

func TestPlaylists(t *testing.T) {
	src := &pagedSource{playlists: []*services.PlaylistPage{
		{Items: []services.SourcePlaylist{{SourceID: "PL1", Name: "Road Trip"}}, NextToken: "p1"},
		{Items: []services.SourcePlaylist{{SourceID: "PL2", Name: "Focus"}}},
	}}
	reader := NewReader(src)

	got, err := reader.Playlists().Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 2 || got[0].SourceID != "PL1" || got[1].SourceID != "PL2" {
		t.Errorf("Collect() = %+v", got)
	}
}
