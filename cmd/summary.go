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
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/acrompton/spotify-season-tools/internal/summary"
)

var summaryPlaylist bool

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryPlaylist, "playlist", false, "Also update the generated playlist")
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the seasonal listening report",
	Long: `Fetches your top items and recently-played feed from Spotify, runs the
aggregations, and prints the report as tables. Pass --playlist to also update
the generated playlist with your top tracks and recommendations.`,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, user, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	client := newSpotifyClient(db, user)
	report, err := generateSeasonReport(context.Background(), client, summaryPlaylist)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	return renderReport(os.Stdout, report)
}

// renderReport writes the human-readable version of the report. The same
// rendering backs the summary command and the emailed report.
func renderReport(out io.Writer, report summary.SeasonalReport) error {
	fmt.Fprintln(out, "Top artists")
	artists := tablewriter.NewWriter(out)
	artists.SetHeader([]string{"Artist", "Streams", "Top Track", "Popularity", "Genres"})
	for _, artist := range report.TopArtists {
		artists.Append([]string{
			artist.Name,
			strconv.Itoa(artist.Streams),
			artist.MostPopularTrack,
			strconv.Itoa(artist.Popularity),
			strings.Join(artist.Genres, ", "),
		})
	}
	artists.Render()

	fmt.Fprintln(out, "\nTop tracks")
	renderTrackTable(out, report.TopTracks)
	fmt.Fprintf(out, "Average popularity: %.1f\n", report.AveragePopularity)

	if len(report.RecommendedTracks) > 0 {
		fmt.Fprintln(out, "\nRecommended tracks")
		renderTrackTable(out, report.RecommendedTracks)
	}
	if report.Playlist != nil {
		fmt.Fprintf(out, "\nPlaylist %q: %s\n", report.Playlist.Name, report.Playlist.URL)
	}

	fmt.Fprintf(out, "\nListening habits (%d plays)\n", report.Habits.TotalPlays)
	hours := tablewriter.NewWriter(out)
	hours.SetHeader([]string{"Hour", "Plays"})
	for _, bucket := range report.Habits.Hourly {
		hours.Append([]string{fmt.Sprintf("%02d:00", bucket.Hour), strconv.Itoa(bucket.Count)})
	}
	hours.Render()

	fmt.Fprintln(out, "\nListening trends")
	fmt.Fprintf(out, "Danceability: %s\n", formatDelta(report.Trends.FeatureTrends.Danceability))
	fmt.Fprintf(out, "Energy:       %s\n", formatDelta(report.Trends.FeatureTrends.Energy))
	fmt.Fprintf(out, "Valence:      %s\n", formatDelta(report.Trends.FeatureTrends.Valence))
	if len(report.Trends.TopGenres) > 0 {
		var genres []string
		for _, genre := range report.Trends.TopGenres {
			genres = append(genres, fmt.Sprintf("%s (%d)", genre.Genre, genre.Count))
		}
		fmt.Fprintf(out, "Top genres: %s\n", strings.Join(genres, ", "))
	}
	if len(report.Trends.EmergingGenres) > 0 {
		fmt.Fprintf(out, "Emerging genres: %s\n", strings.Join(report.Trends.EmergingGenres, ", "))
	}
	for _, message := range report.Trends.Recommendations {
		fmt.Fprintf(out, "- %s\n", message)
	}

	return nil
}

func renderTrackTable(out io.Writer, tracks []summary.TrackStat) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Track", "Artist", "Album", "Popularity"})
	for _, track := range tracks {
		table.Append([]string{track.Name, track.Artist, track.Album, strconv.Itoa(track.Popularity)})
	}
	table.Render()
}

// formatDelta renders one rolling-mean delta. NaN means fewer plays than one
// rolling window, so there is no trend to report.
func formatDelta(delta float64) string {
	if math.IsNaN(delta) {
		return "not enough plays"
	}
	return fmt.Sprintf("%+.3f", delta)
}
