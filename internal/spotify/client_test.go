package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

type staticTokenSource struct{}

func (staticTokenSource) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"}, nil
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithBaseURL(staticTokenSource{}, server.URL)
}

func TestGetTopArtists(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/top/artists" {
			t.Errorf("path = %s, want /me/top/artists", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("time_range"); got != "medium_term" {
			t.Errorf("time_range = %q, want medium_term", got)
		}
		w.Write([]byte(`{"items": [
			{"id": "a1", "name": "First", "popularity": 80, "genres": ["rock"],
			 "images": [{"url": "http://img/large"}, {"url": "http://img/small"}]},
			{"id": "a2", "name": "Second", "popularity": 70, "genres": [], "images": []}
		]}`))
	}))

	artists, err := client.GetTopArtists(context.Background(), "medium_term", 10)
	if err != nil {
		t.Fatalf("GetTopArtists: %v", err)
	}
	if len(artists) != 2 {
		t.Fatalf("got %d artists, want 2", len(artists))
	}
	if artists[0].ImageURL != "http://img/large" {
		t.Errorf("ImageURL = %q, want the first image", artists[0].ImageURL)
	}
	if artists[1].ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty for no images", artists[1].ImageURL)
	}
}

func TestGetRecentlyPlayedCursor(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"items": [
				{"played_at": "2024-03-01T08:00:00.000Z",
				 "track": {"id": "t1", "name": "One", "popularity": 50,
					"album": {"name": "Album"},
					"artists": [{"id": "a1", "name": "A"}, {"id": "b1", "name": "B"}]}}
			],
			"next": "",
			"cursors": {"after": "", "before": ""}
		}`))
	}))

	page, err := client.GetRecentlyPlayed(context.Background(), 50, "")
	if err != nil {
		t.Fatalf("GetRecentlyPlayed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(page.Items))
	}

	event := page.Items[0]
	if len(event.ArtistNames) != 2 || event.ArtistNames[0] != "A" {
		t.Errorf("ArtistNames = %v, want both credited artists in order", event.ArtistNames)
	}
	if event.PrimaryArtistID() != "a1" {
		t.Errorf("PrimaryArtistID = %q, want a1", event.PrimaryArtistID())
	}

	// Missing cursors fall back to the last item's millisecond timestamp.
	if page.LastCursor != "1709280000000" {
		t.Errorf("LastCursor = %q, want 1709280000000", page.LastCursor)
	}
}

func TestGetAudioFeaturesKeepsNilEntries(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "t1,t2" {
			t.Errorf("ids = %q, want t1,t2", got)
		}
		w.Write([]byte(`{"audio_features": [
			{"id": "t1", "danceability": 0.4, "energy": 0.8, "valence": 0.6},
			null
		]}`))
	}))

	features, err := client.GetAudioFeatures(context.Background(), []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("GetAudioFeatures: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("got %d entries, want 2 (order-aligned)", len(features))
	}
	if features[0] == nil || features[0].Energy != 0.8 {
		t.Errorf("features[0] = %+v, want decoded entry", features[0])
	}
	if features[1] != nil {
		t.Errorf("features[1] = %+v, want nil", features[1])
	}
}

func TestGetArtistGenres(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"artists": [
			{"id": "a1", "genres": ["rock", "indie"]},
			{"id": "a2", "genres": []}
		]}`))
	}))

	genres, err := client.GetArtistGenres(context.Background(), []string{"a1", "a2"})
	if err != nil {
		t.Fatalf("GetArtistGenres: %v", err)
	}
	if len(genres["a1"]) != 2 {
		t.Errorf("a1 genres = %v, want two", genres["a1"])
	}
}

func TestRetryOnServerError(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id": "user1"}`))
	}))

	id, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me after retries: %v", err)
	}
	if id != "user1" {
		t.Errorf("id = %q, want user1", id)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Me(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 StatusError", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (4xx is not retried)", attempts)
	}
}

func TestReplacePlaylistTracks(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/playlists/p1/tracks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			URIs []string `json:"uris"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if len(body.URIs) != 2 || body.URIs[0] != "spotify:track:t1" {
			t.Errorf("uris = %v", body.URIs)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	if err := client.ReplacePlaylistTracks(context.Background(), "p1", []string{"t1", "t2"}); err != nil {
		t.Fatalf("ReplacePlaylistTracks: %v", err)
	}
}

func TestFindPlaylistByName(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"id": "p1", "name": "Other"},
			{"id": "p2", "name": "Your Top Tracks + Recommendations",
			 "external_urls": {"spotify": "http://open/p2"}}
		], "next": ""}`))
	}))

	ref, err := client.FindPlaylistByName(context.Background(), "Your Top Tracks + Recommendations")
	if err != nil {
		t.Fatalf("FindPlaylistByName: %v", err)
	}
	if ref == nil || ref.ID != "p2" || ref.URL != "http://open/p2" {
		t.Errorf("ref = %+v, want p2", ref)
	}

	missing, err := client.FindPlaylistByName(context.Background(), "No Such Playlist")
	if err != nil {
		t.Fatalf("FindPlaylistByName (missing): %v", err)
	}
	if missing != nil {
		t.Errorf("ref = %+v, want nil for no match", missing)
	}
}
