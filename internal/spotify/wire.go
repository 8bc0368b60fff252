package spotify

import (
	"github.com/acrompton/spotify-season-tools/internal/summary"
)

// Wire types mirror the Spotify Web API payloads. Mapping to the summary
// domain types happens right after decoding so nothing upstream-shaped leaks
// out of this package.

type wireImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type wireArtist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Popularity int         `json:"popularity"`
	Genres     []string    `json:"genres"`
	Images     []wireImage `json:"images"`
}

type wireTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Album      struct {
		Name   string      `json:"name"`
		Images []wireImage `json:"images"`
	} `json:"album"`
	Artists []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
}

type wirePagedArtists struct {
	Items []wireArtist `json:"items"`
}

type wirePagedTracks struct {
	Items []wireTrack `json:"items"`
}

type wirePlayedItem struct {
	Track    wireTrack `json:"track"`
	PlayedAt string    `json:"played_at"`
}

type wireRecentlyPlayed struct {
	Items   []wirePlayedItem `json:"items"`
	Next    string           `json:"next"`
	Cursors struct {
		After  string `json:"after"`
		Before string `json:"before"`
	} `json:"cursors"`
}

type wireAudioFeatures struct {
	ID           string  `json:"id"`
	Danceability float64 `json:"danceability"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
}

type wireAudioFeaturesPage struct {
	AudioFeatures []*wireAudioFeatures `json:"audio_features"`
}

type wireSeveralArtists struct {
	Artists []wireArtist `json:"artists"`
}

type wireRecommendations struct {
	Tracks []wireTrack `json:"tracks"`
}

type wireUser struct {
	ID string `json:"id"`
}

type wirePlaylist struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type wirePagedPlaylists struct {
	Items []wirePlaylist `json:"items"`
	Next  string         `json:"next"`
}

func mapArtist(a wireArtist) summary.ArtistSnapshot {
	snap := summary.ArtistSnapshot{
		ID:         a.ID,
		Name:       a.Name,
		Popularity: a.Popularity,
		Genres:     a.Genres,
	}
	if len(a.Images) > 0 {
		snap.ImageURL = a.Images[0].URL
	}
	return snap
}

func mapTrack(t wireTrack) summary.TrackSnapshot {
	snap := summary.TrackSnapshot{
		ID:         t.ID,
		Name:       t.Name,
		Album:      t.Album.Name,
		Popularity: t.Popularity,
	}
	if len(t.Artists) > 0 {
		snap.Artist = t.Artists[0].Name
	}
	return snap
}

func mapPlayedItem(item wirePlayedItem) summary.PlayEvent {
	event := summary.PlayEvent{
		TrackID:    item.Track.ID,
		TrackName:  item.Track.Name,
		AlbumName:  item.Track.Album.Name,
		Popularity: item.Track.Popularity,
		PlayedAt:   item.PlayedAt,
	}
	for _, artist := range item.Track.Artists {
		event.ArtistNames = append(event.ArtistNames, artist.Name)
		event.ArtistIDs = append(event.ArtistIDs, artist.ID)
	}
	return event
}

func mapPlaylist(p wirePlaylist) summary.PlaylistRef {
	return summary.PlaylistRef{
		ID:   p.ID,
		Name: p.Name,
		URL:  p.ExternalURLs.Spotify,
	}
}
