// Spotify implementation of [DestinationClient]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tuneport/tuneport/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyCredentials contains the OAuth2 client settings for Spotify.
type SpotifyCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// SpotifyUser represents the authenticated Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyArtist represents a Spotify artist reference.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album reference.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Album   SpotifyAlbum    `json:"album"`
	URI     string          `json:"uri"`
}

// SpotifyPlaylist represents a Spotify playlist as returned on creation.
type SpotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	URI         string `json:"uri"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

// SpotifyService implements [DestinationClient] against the Spotify Web API.
//
// The OAuth2 token is an explicit value passed in at construction; the
// underlying [oauth2] transport refreshes it when a refresh token is present.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a Spotify client from OAuth2 credentials and a
// previously obtained token. The token may be nil; calls then fail with
// [shared.ErrNotAuthenticated] until Authenticate is called.
func NewSpotifyService(creds SpotifyCredentials, token *oauth2.Token) (*SpotifyService, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes: []string{
			"playlist-modify-private",
			"playlist-modify-public",
			"user-read-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{
		config:  config,
		baseURL: spotifyBaseURL,
	}
	if token != nil {
		s.token = token
		s.httpClient = config.Client(context.Background(), token)
	}
	return s, nil
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Authenticate exchanges an authorization code for a token and installs the
// authenticated transport.
func (s *SpotifyService) Authenticate(ctx context.Context, authCode string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %v", shared.ErrAuthFailed, err)
	}
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return token, nil
}

// SetBaseURL overrides the API base URL. Used by tests.
func (s *SpotifyService) SetBaseURL(u string) { s.baseURL = u }

// SetHTTPClient overrides the HTTP client, bypassing the OAuth2 transport. Used by tests.
func (s *SpotifyService) SetHTTPClient(c *http.Client) {
	s.httpClient = c
	if s.token == nil {
		s.token = &oauth2.Token{AccessToken: "test"}
	}
}

// doRequest performs an authenticated request against the Spotify API and
// decodes the JSON response into result when non-nil.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: spotify returned 401", shared.ErrAuthExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: spotify API error (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: spotify API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUserID returns the authenticated user's Spotify ID.
func (s *SpotifyService) CurrentUserID(ctx context.Context) (string, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// CreatePlaylist creates an empty playlist owned by the given user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*DestinationPlaylist, error) {
	body := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}{name, description, public}

	var created SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return &DestinationPlaylist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
	}, nil
}

// SearchTrack issues a field-scoped track search and returns the first
// candidate, or nil when the catalog has no result. The query requests
// exactly one item; ranking beyond first-returned is the catalog's business.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, artist string) (*TrackCandidate, error) {
	query := fmt.Sprintf("track:%s artist:%s", title, artist)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=1", url.QueryEscape(query))

	var response spotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, nil
	}

	hit := response.Tracks.Items[0]
	candidate := &TrackCandidate{
		URI:         hit.URI,
		Name:        hit.Name,
		Album:       hit.Album.Name,
		ReleaseDate: hit.Album.ReleaseDate,
	}
	if len(hit.Artists) > 0 {
		candidate.Artist = hit.Artists[0].Name
	}
	return candidate, nil
}

// AddItems appends track URIs to a playlist in one write call.
//
// The endpoint accepts at most 20 URIs per call; larger slices are rejected
// here rather than silently split, since batching is the synchronizer's job.
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if len(uris) > 20 {
		return fmt.Errorf("%w: at most 20 uris per write call, got %d", shared.ErrInvalidArgument, len(uris))
	}

	body := struct {
		URIs []string `json:"uris"`
	}{uris}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return err
	}
	return nil
}
