// Package spotify is a minimal Spotify Web API client covering the calls the
// season summary needs: top items, the recently-played feed, audio features,
// artist genres, recommendations, and playlist writes.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/acrompton/spotify-season-tools/internal/summary"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// API batch limits for the multi-ID endpoints.
const (
	maxArtistsPerRequest  = 50
	maxFeaturesPerRequest = 100
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
}

func NewClient(tokens oauth2.TokenSource) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
}

// NewClientWithBaseURL points the client at a different API host. Used by
// tests.
func NewClientWithBaseURL(tokens oauth2.TokenSource, baseURL string) *Client {
	c := NewClient(tokens)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// GetTopArtists returns the user's precomputed top artists for the window
// ("short_term", "medium_term", "long_term").
func (c *Client) GetTopArtists(ctx context.Context, window string, limit int) ([]summary.ArtistSnapshot, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("time_range", window)

	var page wirePagedArtists
	if err := c.doJSON(ctx, http.MethodGet, "/me/top/artists", query, nil, &page); err != nil {
		return nil, fmt.Errorf("getting top artists: %w", err)
	}

	artists := make([]summary.ArtistSnapshot, 0, len(page.Items))
	for _, a := range page.Items {
		artists = append(artists, mapArtist(a))
	}
	return artists, nil
}

// GetTopTracks returns the user's precomputed top tracks for the window.
func (c *Client) GetTopTracks(ctx context.Context, window string, limit int) ([]summary.TrackSnapshot, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("time_range", window)

	var page wirePagedTracks
	if err := c.doJSON(ctx, http.MethodGet, "/me/top/tracks", query, nil, &page); err != nil {
		return nil, fmt.Errorf("getting top tracks: %w", err)
	}

	tracks := make([]summary.TrackSnapshot, 0, len(page.Items))
	for _, t := range page.Items {
		tracks = append(tracks, mapTrack(t))
	}
	return tracks, nil
}

// GetRecentlyPlayed returns one page of the recently-played feed. The cursor
// for the following page is the last item's played-at time in Unix
// milliseconds, which is also what the API reports in cursors.after.
func (c *Client) GetRecentlyPlayed(ctx context.Context, limit int, after string) (summary.RecentPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if after != "" {
		query.Set("after", after)
	}

	var resp wireRecentlyPlayed
	if err := c.doJSON(ctx, http.MethodGet, "/me/player/recently-played", query, nil, &resp); err != nil {
		return summary.RecentPage{}, fmt.Errorf("getting recently played: %w", err)
	}

	page := summary.RecentPage{
		HasMore:    resp.Next != "",
		LastCursor: resp.Cursors.After,
	}
	for _, item := range resp.Items {
		page.Items = append(page.Items, mapPlayedItem(item))
	}
	if page.LastCursor == "" && len(resp.Items) > 0 {
		page.LastCursor = afterCursor(resp.Items[len(resp.Items)-1].PlayedAt)
	}
	return page, nil
}

// afterCursor converts a played-at timestamp into the millisecond cursor the
// feed pages by. Unparseable timestamps yield "", which ends pagination.
func afterCursor(playedAt string) string {
	t, err := time.Parse(time.RFC3339Nano, playedAt)
	if err != nil {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// GetAudioFeatures returns audio features order-aligned with ids. Entries the
// API has no analysis for come back nil.
func (c *Client) GetAudioFeatures(ctx context.Context, ids []string) ([]*summary.AudioFeatures, error) {
	features := make([]*summary.AudioFeatures, 0, len(ids))

	for start := 0; start < len(ids); start += maxFeaturesPerRequest {
		end := start + maxFeaturesPerRequest
		if end > len(ids) {
			end = len(ids)
		}

		query := url.Values{}
		query.Set("ids", strings.Join(ids[start:end], ","))

		var page wireAudioFeaturesPage
		if err := c.doJSON(ctx, http.MethodGet, "/audio-features", query, nil, &page); err != nil {
			return nil, fmt.Errorf("getting audio features: %w", err)
		}
		for _, f := range page.AudioFeatures {
			if f == nil {
				features = append(features, nil)
				continue
			}
			features = append(features, &summary.AudioFeatures{
				ID:           f.ID,
				Danceability: f.Danceability,
				Energy:       f.Energy,
				Valence:      f.Valence,
			})
		}
	}
	return features, nil
}

// GetArtistGenres looks up genres for the given artist IDs in one batched
// call per 50 IDs, keyed by artist ID.
func (c *Client) GetArtistGenres(ctx context.Context, ids []string) (map[string][]string, error) {
	genres := make(map[string][]string, len(ids))

	for start := 0; start < len(ids); start += maxArtistsPerRequest {
		end := start + maxArtistsPerRequest
		if end > len(ids) {
			end = len(ids)
		}

		query := url.Values{}
		query.Set("ids", strings.Join(ids[start:end], ","))

		var resp wireSeveralArtists
		if err := c.doJSON(ctx, http.MethodGet, "/artists", query, nil, &resp); err != nil {
			return nil, fmt.Errorf("getting artists: %w", err)
		}
		for _, a := range resp.Artists {
			genres[a.ID] = a.Genres
		}
	}
	return genres, nil
}

// GetRecommendations returns recommended tracks seeded by track IDs.
func (c *Client) GetRecommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]summary.TrackSnapshot, error) {
	query := url.Values{}
	query.Set("seed_tracks", strings.Join(seedTrackIDs, ","))
	query.Set("limit", strconv.Itoa(limit))

	var resp wireRecommendations
	if err := c.doJSON(ctx, http.MethodGet, "/recommendations", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("getting recommendations: %w", err)
	}

	tracks := make([]summary.TrackSnapshot, 0, len(resp.Tracks))
	for _, t := range resp.Tracks {
		tracks = append(tracks, mapTrack(t))
	}
	return tracks, nil
}

// Me returns the authenticated user's Spotify ID.
func (c *Client) Me(ctx context.Context) (string, error) {
	var user wireUser
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, nil, &user); err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}

// FindPlaylistByName scans the user's playlists for an exact name match.
// Returns nil when no playlist has that name.
func (c *Client) FindPlaylistByName(ctx context.Context, name string) (*summary.PlaylistRef, error) {
	offset := 0
	for {
		query := url.Values{}
		query.Set("limit", "50")
		query.Set("offset", strconv.Itoa(offset))

		var page wirePagedPlaylists
		if err := c.doJSON(ctx, http.MethodGet, "/me/playlists", query, nil, &page); err != nil {
			return nil, fmt.Errorf("listing playlists: %w", err)
		}
		for _, p := range page.Items {
			if p.Name == name {
				ref := mapPlaylist(p)
				return &ref, nil
			}
		}
		if page.Next == "" || len(page.Items) == 0 {
			return nil, nil
		}
		offset += len(page.Items)
	}
}

// CreatePlaylist creates a private playlist for the user.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name string) (summary.PlaylistRef, error) {
	body := map[string]interface{}{
		"name":   name,
		"public": false,
	}

	var created wirePlaylist
	path := fmt.Sprintf("/users/%s/playlists", userID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, &created); err != nil {
		return summary.PlaylistRef{}, fmt.Errorf("creating playlist: %w", err)
	}
	return mapPlaylist(created), nil
}

// ReplacePlaylistTracks overwrites the playlist's contents with trackIDs.
// Replacing rather than appending keeps the playlist upsert idempotent.
func (c *Client) ReplacePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	uris := make([]string, 0, len(trackIDs))
	for _, id := range trackIDs {
		uris = append(uris, "spotify:track:"+id)
	}
	body := map[string]interface{}{"uris": uris}

	path := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return fmt.Errorf("replacing playlist tracks: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	return retry.Do(
		func() error {
			var reader *bytes.Reader
			if payload != nil {
				reader = bytes.NewReader(payload)
			} else {
				reader = bytes.NewReader(nil)
			}
			req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
			if err != nil {
				return fmt.Errorf("building request for %s: %w", path, err)
			}
			req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
			if payload != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("calling %s: %w", path, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode/100 != 2 {
				return &StatusError{Code: resp.StatusCode, Endpoint: path}
			}
			if out == nil {
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decoding %s response: %w", path, err)
			}
			return nil
		},
		retry.RetryIf(func(err error) bool {
			var se *StatusError
			return errors.As(err, &se) && se.Temporary()
		}),
		retry.Attempts(3),
		retry.LastErrorOnly(true),
	)
}
