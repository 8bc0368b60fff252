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

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playlistCmd)
}

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Updates the generated top-tracks playlist",
	Long: `Fills the "` + generatedPlaylistName + `" playlist with your current top
tracks plus recommendations seeded from them. The playlist is created on the
first run and reused afterwards, so followers and its URL are stable.`,
	RunE: runPlaylist,
}

func runPlaylist(cmd *cobra.Command, args []string) error {
	db, user, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	client := newSpotifyClient(db, user)

	topTracks, err := client.GetTopTracks(ctx, topItemWindow, topItemLimit)
	if err != nil {
		return fmt.Errorf("fetching top tracks: %w", err)
	}
	if len(topTracks) == 0 {
		fmt.Println("No top tracks yet, nothing to do")
		return nil
	}

	seeds := make([]string, 0, playlistSeedCount)
	for _, track := range topTracks {
		if len(seeds) == playlistSeedCount {
			break
		}
		seeds = append(seeds, track.ID)
	}
	recommended, err := client.GetRecommendations(ctx, seeds, recommendationSize)
	if err != nil {
		return fmt.Errorf("fetching recommendations: %w", err)
	}

	playlist, err := upsertSeasonPlaylist(ctx, client, topTracks, recommended)
	if err != nil {
		return err
	}
	fmt.Printf("Updated playlist %q: %s\n", playlist.Name, playlist.URL)
	return nil
}
