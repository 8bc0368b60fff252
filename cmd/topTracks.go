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
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var topTracksNum int

func init() {
	rootCmd.AddCommand(topTracksCmd)
	topTracksCmd.Flags().IntVarP(&topTracksNum, "num", "n", 20, "Number of tracks to display")
}

var topTracksCmd = &cobra.Command{
	Use:   "top-tracks <date> [end-date]",
	Short: "Prints your most-played tracks from the local archive",
	Long: `Reads the plays archived by the update command and prints the tracks
with the most plays in the given range. Dates may be a year (2024), a month
(2024-06), a day (2024-06-15), or a season (2024-summer).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTopTracks,
}

func runTopTracks(cmd *cobra.Command, args []string) error {
	start, end, err := parseDateRangeFromArgs(args)
	if err != nil {
		return err
	}

	db, user, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	tracks, err := db.GetTopTracksWithCount(user, start, end)
	if err != nil {
		return fmt.Errorf("querying top tracks: %w", err)
	}

	var totalPlays int64
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Artist", "Track", "Plays"})
	for i, track := range tracks {
		if i < topTracksNum {
			table.Append([]string{track.Artist, track.Track, strconv.FormatInt(track.Count, 10)})
		}
		totalPlays += track.Count
	}
	table.Render()

	const dateFormat = "2006-01-02"
	fmt.Printf("Found %d tracks and %d plays from %s to %s\n",
		len(tracks), totalPlays, start.Format(dateFormat), end.Format(dateFormat))

	return nil
}
