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

var topArtistsNum int

func init() {
	rootCmd.AddCommand(topArtistsCmd)
	topArtistsCmd.Flags().IntVarP(&topArtistsNum, "num", "n", 20, "Number of artists to display")
}

var topArtistsCmd = &cobra.Command{
	Use:   "top-artists <date> [end-date]",
	Short: "Prints your most-played artists from the local archive",
	Long: `Reads the plays archived by the update command and prints the artists
with the most plays in the given range. Dates may be a year (2024), a month
(2024-06), a day (2024-06-15), or a season (2024-summer).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTopArtists,
}

func runTopArtists(cmd *cobra.Command, args []string) error {
	start, end, err := parseDateRangeFromArgs(args)
	if err != nil {
		return err
	}

	db, user, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	artists, err := db.GetTopArtistsWithCount(user, start, end)
	if err != nil {
		return fmt.Errorf("querying top artists: %w", err)
	}

	var totalPlays int64
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Artist", "Plays"})
	for i, artist := range artists {
		if i < topArtistsNum {
			table.Append([]string{artist.Artist, strconv.FormatInt(artist.Count, 10)})
		}
		totalPlays += artist.Count
	}
	table.Render()

	const dateFormat = "2006-01-02"
	fmt.Printf("Found %d artists and %d plays from %s to %s\n",
		len(artists), totalPlays, start.Format(dateFormat), end.Format(dateFormat))

	return nil
}
