// YouTube Music implementation of [SourceClient]
//
// Communicates with the ytmusicapi proxy server. The proxy paginates library
// endpoints with continuation tokens; one request returns one page.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tuneport/tuneport/internal/shared"
)

const defaultYTBaseURL = "http://localhost:8080"

// LikedPlaylistID is the reserved identifier of the liked-songs
// pseudo-playlist. It never appears in the user's playlist listing.
const LikedPlaylistID = "LM"

// YouTubeArtist represents an artist label in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID string          `json:"videoId"`
	Title   string          `json:"title"`
	Artists []YouTubeArtist `json:"artists"`
}

type youtubeItemsPage struct {
	Tracks       []YouTubeTrack `json:"tracks"`
	Continuation string         `json:"continuation"`
}

type youtubePlaylistsPage struct {
	Playlists []struct {
		PlaylistID string `json:"playlistId"`
		Title      string `json:"title"`
		Count      int    `json:"count"`
	} `json:"playlists"`
	Continuation string `json:"continuation"`
}

// YouTubeService implements [SourceClient] via the ytmusicapi proxy.
//
// Page fetches are retried a fixed number of times; the caller only sees
// [shared.ErrUpstreamUnavailable] once the budget is spent.
type YouTubeService struct {
	baseURL    string
	authFile   string
	retries    int
	retryDelay time.Duration
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Music client.
//
// authFile is the path to the browser headers file the proxy authenticates
// with (see setup youtube). retries bounds per-page fetch attempts.
func NewYouTubeService(baseURL, authFile string, retries int) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if retries <= 0 {
		retries = 3
	}

	return &YouTubeService{
		baseURL:    baseURL,
		authFile:   authFile,
		retries:    retries,
		retryDelay: time.Second,
		httpClient: http.DefaultClient,
	}
}

// SetHTTPClient overrides the HTTP client. Used by tests.
func (y *YouTubeService) SetHTTPClient(c *http.Client) { y.httpClient = c }

// SetRetryDelay overrides the pause between page fetch retries. Used by tests.
func (y *YouTubeService) SetRetryDelay(d time.Duration) { y.retryDelay = d }

func (y *YouTubeService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("youtube music API error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("youtube music API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// fetchPage retries doRequest up to the configured budget, then wraps the
// last error in [shared.ErrUpstreamUnavailable].
func (y *YouTubeService) fetchPage(ctx context.Context, endpoint string, result any) error {
	var lastErr error
	for attempt := 0; attempt < y.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(y.retryDelay):
			}
		}
		if lastErr = y.doRequest(ctx, endpoint, result); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", shared.ErrUpstreamUnavailable, lastErr)
}

// LikedPage fetches one page of the liked-songs pseudo-playlist.
func (y *YouTubeService) LikedPage(ctx context.Context, token string) (*ItemPage, error) {
	return y.itemsPage(ctx, LikedPlaylistID, token)
}

// PlaylistItemsPage fetches one page of a playlist's tracks.
func (y *YouTubeService) PlaylistItemsPage(ctx context.Context, playlistID, token string) (*ItemPage, error) {
	return y.itemsPage(ctx, playlistID, token)
}

func (y *YouTubeService) itemsPage(ctx context.Context, playlistID, token string) (*ItemPage, error) {
	endpoint := fmt.Sprintf("/api/playlists/%s/tracks", url.PathEscape(playlistID))
	if token != "" {
		endpoint += "?continuation=" + url.QueryEscape(token)
	}

	var page youtubeItemsPage
	if err := y.fetchPage(ctx, endpoint, &page); err != nil {
		return nil, err
	}

	items := make([]SourceItem, len(page.Tracks))
	for i, track := range page.Tracks {
		item := SourceItem{
			Title:    track.Title,
			SourceID: track.VideoID,
		}
		if len(track.Artists) > 0 {
			item.RawArtist = track.Artists[0].Name
		}
		items[i] = item
	}

	return &ItemPage{Items: items, NextToken: page.Continuation}, nil
}

// PlaylistsPage fetches one page of the user's library playlists.
//
// The liked-songs collection is not part of this listing; it is addressed
// directly via [LikedPlaylistID].
func (y *YouTubeService) PlaylistsPage(ctx context.Context, token string) (*PlaylistPage, error) {
	endpoint := "/api/library/playlists"
	if token != "" {
		endpoint += "?continuation=" + url.QueryEscape(token)
	}

	var page youtubePlaylistsPage
	if err := y.fetchPage(ctx, endpoint, &page); err != nil {
		return nil, err
	}

	playlists := make([]SourcePlaylist, len(page.Playlists))
	for i, pl := range page.Playlists {
		playlists[i] = SourcePlaylist{
			SourceID:   pl.PlaylistID,
			Name:       pl.Title,
			TrackCount: pl.Count,
		}
	}

	return &PlaylistPage{Items: playlists, NextToken: page.Continuation}, nil
}
