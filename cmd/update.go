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
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acrompton/spotify-season-tools/internal/store"
	"github.com/acrompton/spotify-season-tools/internal/summary"
)

type UpdateConfig struct {
	DbPath string
	User   string
	Force  bool
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Archives your recently-played feed",
	Long: `Fetches the recently-played feed from Spotify and stores it in the local
SQLite database. Spotify only retains the most recent plays, so run this
regularly to build history the feed alone cannot provide.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := UpdateConfig{
			DbPath: viper.GetString("database"),
			User:   viper.GetString("user"),
			Force:  viper.GetBool("force"),
		}

		err := updateDatabase(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	var force bool
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Fetch even if the database was updated in the past 24 hours (idempotent)")
	viper.BindPFlag("force", updateCmd.Flags().Lookup("force"))
}

func updateDatabase(config UpdateConfig) error {
	if config.User == "" {
		return fmt.Errorf("--user is required")
	}
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	err = db.CreateUser(config.User)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	lastUpdated, err := db.GetLastUpdated(config.User)
	if err != nil {
		return err
	}
	now := time.Now()
	if !lastUpdated.IsZero() && now.Sub(lastUpdated).Hours() < 24 && !config.Force {
		fmt.Printf("User data was already updated in the past 24 hours\n")
		return nil
	}

	latestListen, err := db.GetLatestListen(config.User)
	if err != nil {
		return fmt.Errorf("getting latest listen: %w", err)
	}
	if !latestListen.IsZero() {
		fmt.Printf("Latest local listening data is from: %s\n", latestListen.Format("2006-01-02"))
	}

	fmt.Printf("Updating database for %q\n", config.User)
	client := newSpotifyClient(db, config.User)

	imported, err := archiveRecentPlays(context.Background(), db, client, config.User, latestListen, config.Force)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d plays\n", imported)

	err = db.SetLastUpdated(config.User, now)
	if err != nil {
		return err
	}

	return nil
}

// recentFeed is the slice of the Spotify client the archive loop needs.
type recentFeed interface {
	GetRecentlyPlayed(ctx context.Context, limit int, after string) (summary.RecentPage, error)
}

// archiveRecentPlays drains the recently-played feed into the database. A
// short page, an exhausted upstream, or a missing resume cursor all end the
// loop; continuing with an empty cursor would refetch the newest page
// forever. Without force, the loop also stops once it pages back past the
// newest archived listen.
func archiveRecentPlays(ctx context.Context, db *store.Store, feed recentFeed, user string, latestListen time.Time, force bool) (int, error) {
	page := 1
	after := ""
	imported := 0
	for {
		recent, err := feed.GetRecentlyPlayed(ctx, recentPageSize, after)
		if err != nil {
			return imported, fmt.Errorf("fetching recent plays: %w", err)
		}
		if len(recent.Items) == 0 {
			break
		}

		var playsToImport []store.PlayImport
		var oldest time.Time
		for _, play := range recent.Items {
			playedAt, err := parsePlayedAt(play.PlayedAt)
			if err != nil {
				return imported, err
			}
			playsToImport = append(playsToImport, store.PlayImport{
				Artist:     primaryArtistName(play),
				Album:      play.AlbumName,
				TrackName:  play.TrackName,
				SpotifyID:  play.TrackID,
				Popularity: play.Popularity,
				PlayedAt:   playedAt,
			})
			oldest = playedAt
		}

		err = db.AddRecentPlays(user, playsToImport)
		if err != nil {
			return imported, fmt.Errorf("inserting recent plays (page %d): %w", page, err)
		}
		imported += len(playsToImport)

		fmt.Printf("Downloaded page %v (oldest: %s)\n", page, oldest.Format("2006-01-02"))
		page += 1

		if len(recent.Items) < recentPageSize || !recent.HasMore || recent.LastCursor == "" {
			break
		}
		if !force && !latestListen.IsZero() && oldest.Before(latestListen) {
			fmt.Println("Refreshed back to existing data")
			break
		}
		after = recent.LastCursor
	}

	return imported, nil
}

func parsePlayedAt(value string) (time.Time, error) {
	playedAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, &summary.ParseError{Value: value, Err: err}
	}
	return playedAt, nil
}

func primaryArtistName(play summary.PlayEvent) string {
	if len(play.ArtistNames) == 0 {
		return ""
	}
	return play.ArtistNames[0]
}
