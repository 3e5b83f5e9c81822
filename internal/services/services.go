// package services defines the client contracts for the two music platforms
// involved in a migration: the source library (YouTube Music, read-only) and
// the destination catalog (Spotify, searched and written to).
//
// The core packages consume only these interfaces; wire-format decoding stays
// inside the concrete clients.
package services

import "context"

// SourceItem is one track entry from the source library, as it appears on an
// API page. RawArtist carries whatever label the platform attaches, including
// auto-generated channel decorations.
type SourceItem struct {
	Title     string
	RawArtist string
	SourceID  string
}

// SourcePlaylist is playlist metadata from the source library listing.
// Items are fetched separately, page by page.
type SourcePlaylist struct {
	SourceID   string
	Name       string
	TrackCount int
}

// ItemPage is one page of source items plus the continuation token for the
// next page. An empty NextToken marks the end of the sequence.
type ItemPage struct {
	Items     []SourceItem
	NextToken string
}

// PlaylistPage is one page of source playlists.
type PlaylistPage struct {
	Items     []SourcePlaylist
	NextToken string
}

// TrackCandidate is a destination catalog search hit.
type TrackCandidate struct {
	URI         string
	Name        string
	Artist      string
	Album       string
	ReleaseDate string
}

// DestinationPlaylist is a playlist created on the destination platform.
type DestinationPlaylist struct {
	ID          string
	Name        string
	Description string
}

// SourceClient provides paginated reads of the authenticated user's source
// library. Implementations own authentication and per-request retries; a page
// fetch error surfaces only after the client's retry budget is spent.
type SourceClient interface {
	// LikedPage fetches one page of the liked-songs pseudo-playlist.
	// Pass an empty token for the first page.
	LikedPage(ctx context.Context, token string) (*ItemPage, error)

	// PlaylistsPage fetches one page of the user's playlists.
	PlaylistsPage(ctx context.Context, token string) (*PlaylistPage, error)

	// PlaylistItemsPage fetches one page of a playlist's tracks.
	PlaylistItemsPage(ctx context.Context, playlistID, token string) (*ItemPage, error)
}

// DestinationClient provides the destination catalog operations used by the
// matcher and synchronizer.
type DestinationClient interface {
	// CurrentUserID returns the authenticated user's ID.
	CurrentUserID(ctx context.Context) (string, error)

	// CreatePlaylist creates an empty playlist owned by the given user.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*DestinationPlaylist, error)

	// SearchTrack issues a single-candidate catalog search scoped to title and
	// artist. A nil candidate with a nil error means no result.
	SearchTrack(ctx context.Context, title, artist string) (*TrackCandidate, error)

	// AddItems appends up to 20 track URIs to a playlist in one write call.
	AddItems(ctx context.Context, playlistID string, uris []string) error
}
