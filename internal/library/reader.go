// package library exposes the source music library as lazy, restartable
// sequences over a paginated [services.SourceClient].
//
// Pages are fetched only when the consumer advances past the buffered items,
// so a partially consumed sequence costs only the pages actually read. Each
// Reader method returns a fresh iterator; restarting means calling the method
// again.
package library

import (
	"context"

	"github.com/tuneport/tuneport/internal/services"
)

// Reader enumerates liked items and playlists from the source library.
type Reader struct {
	client services.SourceClient
}

// NewReader creates a Reader over the given source client.
func NewReader(client services.SourceClient) *Reader {
	return &Reader{client: client}
}

// LikedItems returns a fresh iterator over the liked-songs pseudo-playlist.
func (r *Reader) LikedItems() *Iterator[services.SourceItem] {
	return newIterator(func(ctx context.Context, token string) ([]services.SourceItem, string, error) {
		page, err := r.client.LikedPage(ctx, token)
		if err != nil {
			return nil, "", err
		}
		return page.Items, page.NextToken, nil
	})
}

// Playlists returns a fresh iterator over the user's playlists. The listing
// never contains the liked-songs pseudo-playlist.
func (r *Reader) Playlists() *Iterator[services.SourcePlaylist] {
	return newIterator(func(ctx context.Context, token string) ([]services.SourcePlaylist, string, error) {
		page, err := r.client.PlaylistsPage(ctx, token)
		if err != nil {
			return nil, "", err
		}
		return page.Items, page.NextToken, nil
	})
}

// PlaylistItems returns a fresh iterator over one playlist's tracks.
func (r *Reader) PlaylistItems(playlistID string) *Iterator[services.SourceItem] {
	return newIterator(func(ctx context.Context, token string) ([]services.SourceItem, string, error) {
		page, err := r.client.PlaylistItemsPage(ctx, playlistID, token)
		if err != nil {
			return nil, "", err
		}
		return page.Items, page.NextToken, nil
	})
}

// pageFunc fetches one page: the items, the continuation token for the next
// page (empty at the end), or an error.
type pageFunc[T any] func(ctx context.Context, token string) ([]T, string, error)

// Iterator walks a paginated sequence one element at a time.
//
// The zero continuation token addresses the first page; an empty token in a
// response ends the sequence. A fetch error is sticky: every subsequent Next
// call returns it.
type Iterator[T any] struct {
	fetch   pageFunc[T]
	buf     []T
	pos     int
	token   string
	started bool
	done    bool
	err     error
}

func newIterator[T any](fetch pageFunc[T]) *Iterator[T] {
	return &Iterator[T]{fetch: fetch}
}

// Next returns the next element. The boolean is false when the sequence is
// exhausted or a fetch failed; the error distinguishes the two.
func (it *Iterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.err != nil || (it.done && it.pos >= len(it.buf)) {
		return zero, false, it.err
	}

	for it.pos >= len(it.buf) {
		if it.started && it.token == "" {
			it.done = true
			return zero, false, nil
		}

		items, next, err := it.fetch(ctx, it.token)
		if err != nil {
			it.err = err
			return zero, false, err
		}

		it.started = true
		it.buf = items
		it.pos = 0
		it.token = next

		if len(items) == 0 && next == "" {
			it.done = true
			return zero, false, nil
		}
	}

	item := it.buf[it.pos]
	it.pos++
	return item, true, nil
}

// Collect drains the iterator into a slice. Intended for small sequences
// such as the playlist listing.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for {
		item, ok, err := it.Next(ctx)
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, item)
	}
}
