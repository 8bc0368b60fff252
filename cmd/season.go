/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"context"
	"fmt"

	"github.com/acrompton/spotify-season-tools/internal/summary"
)

const (
	// topItemWindow is the Spotify affinity window the seasonal report reads:
	// roughly the last six months.
	topItemWindow = "medium_term"

	topItemLimit       = 10
	recentPageSize     = 50
	recommendationSize = 5
	playlistSeedCount  = 5

	// generatedPlaylistName is the well-known name the report playlist is
	// found and replaced under on later runs.
	generatedPlaylistName = "Your Top Tracks + Recommendations"
)

// seasonAPI is the slice of the Spotify client the report generation needs.
type seasonAPI interface {
	GetTopArtists(ctx context.Context, window string, limit int) ([]summary.ArtistSnapshot, error)
	GetTopTracks(ctx context.Context, window string, limit int) ([]summary.TrackSnapshot, error)
	GetRecentlyPlayed(ctx context.Context, limit int, after string) (summary.RecentPage, error)
	GetAudioFeatures(ctx context.Context, ids []string) ([]*summary.AudioFeatures, error)
	GetArtistGenres(ctx context.Context, ids []string) (map[string][]string, error)
	GetRecommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]summary.TrackSnapshot, error)
	Me(ctx context.Context) (string, error)
	FindPlaylistByName(ctx context.Context, name string) (*summary.PlaylistRef, error)
	CreatePlaylist(ctx context.Context, userID, name string) (summary.PlaylistRef, error)
	ReplacePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// generateSeasonReport fetches everything the report needs from the API and
// runs the aggregation passes. When withPlaylist is set it also upserts the
// generated playlist and links it from the report.
func generateSeasonReport(ctx context.Context, client seasonAPI, withPlaylist bool) (summary.SeasonalReport, error) {
	var report summary.SeasonalReport

	topArtists, err := client.GetTopArtists(ctx, topItemWindow, topItemLimit)
	if err != nil {
		return report, fmt.Errorf("fetching top artists: %w", err)
	}
	topTracks, err := client.GetTopTracks(ctx, topItemWindow, topItemLimit)
	if err != nil {
		return report, fmt.Errorf("fetching top tracks: %w", err)
	}

	plays, err := summary.FetchAllRecentPlays(func(after string) (summary.RecentPage, error) {
		return client.GetRecentlyPlayed(ctx, recentPageSize, after)
	}, recentPageSize)
	if err != nil {
		return report, fmt.Errorf("fetching recent plays: %w", err)
	}

	trackIDs := make([]string, len(plays))
	for i, play := range plays {
		trackIDs[i] = play.TrackID
	}
	features, err := client.GetAudioFeatures(ctx, trackIDs)
	if err != nil {
		return report, fmt.Errorf("fetching audio features: %w", err)
	}

	var recommended []summary.TrackSnapshot
	if len(topTracks) > 0 {
		seeds := make([]string, 0, playlistSeedCount)
		for _, track := range topTracks {
			if len(seeds) == playlistSeedCount {
				break
			}
			seeds = append(seeds, track.ID)
		}
		recommended, err = client.GetRecommendations(ctx, seeds, recommendationSize)
		if err != nil {
			return report, fmt.Errorf("fetching recommendations: %w", err)
		}
	}

	var playlist *summary.PlaylistRef
	if withPlaylist {
		playlist, err = upsertSeasonPlaylist(ctx, client, topTracks, recommended)
		if err != nil {
			return report, fmt.Errorf("updating playlist: %w", err)
		}
	}

	input := summary.ReportInput{
		RecentPlays: plays,
		Features:    features,
		TopArtists:  topArtists,
		TopTracks:   topTracks,
		Recommended: recommended,
		Playlist:    playlist,
	}
	return summary.BuildSeasonalReport(input, func(ids []string) (map[string][]string, error) {
		return client.GetArtistGenres(ctx, ids)
	})
}

// upsertSeasonPlaylist puts the top tracks plus recommendations into the
// well-known playlist, creating it only when it does not exist yet. An
// existing playlist keeps its identity and followers; only its tracks are
// replaced.
func upsertSeasonPlaylist(ctx context.Context, client seasonAPI, topTracks, recommended []summary.TrackSnapshot) (*summary.PlaylistRef, error) {
	var trackIDs []string
	for _, track := range topTracks {
		if len(trackIDs) == playlistSeedCount {
			break
		}
		trackIDs = append(trackIDs, track.ID)
	}
	for _, track := range recommended {
		trackIDs = append(trackIDs, track.ID)
	}
	if len(trackIDs) == 0 {
		return nil, nil
	}

	playlist, err := client.FindPlaylistByName(ctx, generatedPlaylistName)
	if err != nil {
		return nil, fmt.Errorf("looking up playlist: %w", err)
	}
	if playlist == nil {
		userID, err := client.Me(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching profile: %w", err)
		}
		created, err := client.CreatePlaylist(ctx, userID, generatedPlaylistName)
		if err != nil {
			return nil, fmt.Errorf("creating playlist: %w", err)
		}
		playlist = &created
	}

	if err := client.ReplacePlaylistTracks(ctx, playlist.ID, trackIDs); err != nil {
		return nil, fmt.Errorf("replacing playlist tracks: %w", err)
	}
	return playlist, nil
}
