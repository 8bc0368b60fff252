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
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acrompton/spotify-season-tools/internal/summary"
)

var emailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Emails the seasonal listening report",
	Long: `Generates the seasonal report and emails it to the given address via
SendGrid. Requires from and sendgrid_api_key to be set.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	RunE: runEmail,
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	emailCmd.Flags().String("from", "", "Address to send the report from")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))
}

func runEmail(cmd *cobra.Command, args []string) error {
	db, user, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	client := newSpotifyClient(db, user)
	report, err := generateSeasonReport(context.Background(), client, false)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	subject := fmt.Sprintf("Seasonal listening report for %s, %s", user, time.Now().Format("2006-01-02"))
	body := reportEmailBody(user, report)

	if viper.GetBool("dryRun") {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, body)
		return nil
	}

	toAddress := args[0]
	from := mail.NewEmail("spotify-season-tools", viper.GetString("from"))
	to := mail.NewEmail(toAddress, toAddress)
	message := mail.NewSingleEmail(from, subject, to, body, body)
	sender := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	if _, err := sender.Send(message); err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}

	fmt.Printf("Sent report to %s\n", toAddress)
	return nil
}

// reportEmailBody renders the report as a self-contained HTML document.
func reportEmailBody(user string, report summary.SeasonalReport) string {
	var out strings.Builder
	out.WriteString(`
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`)

	fmt.Fprintf(&out, "<h2>Top artists for %s:</h2>\n", html.EscapeString(user))
	writeEmailTable(&out, []string{"Artist", "Streams", "Top Track", "Popularity"}, artistRows(report.TopArtists))

	out.WriteString("<h2>Top tracks:</h2>\n")
	writeEmailTable(&out, []string{"Track", "Artist", "Album", "Popularity"}, trackRows(report.TopTracks))
	fmt.Fprintf(&out, "<div>Average popularity: %.1f</div>\n", report.AveragePopularity)

	if len(report.RecommendedTracks) > 0 {
		out.WriteString("<h2>Recommended tracks:</h2>\n")
		writeEmailTable(&out, []string{"Track", "Artist", "Album", "Popularity"}, trackRows(report.RecommendedTracks))
	}

	fmt.Fprintf(&out, "<h2>Listening habits (%d plays):</h2>\n", report.Habits.TotalPlays)
	var hourRows [][]string
	for _, bucket := range report.Habits.Hourly {
		hourRows = append(hourRows, []string{fmt.Sprintf("%02d:00", bucket.Hour), strconv.Itoa(bucket.Count)})
	}
	writeEmailTable(&out, []string{"Hour", "Plays"}, hourRows)

	out.WriteString("<h2>Listening trends:</h2>\n<ul>\n")
	fmt.Fprintf(&out, "<li>Danceability: %s</li>\n", formatDelta(report.Trends.FeatureTrends.Danceability))
	fmt.Fprintf(&out, "<li>Energy: %s</li>\n", formatDelta(report.Trends.FeatureTrends.Energy))
	fmt.Fprintf(&out, "<li>Valence: %s</li>\n", formatDelta(report.Trends.FeatureTrends.Valence))
	for _, message := range report.Trends.Recommendations {
		fmt.Fprintf(&out, "<li>%s</li>\n", html.EscapeString(message))
	}
	out.WriteString("</ul>\n")

	out.WriteString(`  </body>
</html>
`)
	return out.String()
}

func artistRows(artists []summary.ArtistStat) [][]string {
	var rows [][]string
	for _, artist := range artists {
		rows = append(rows, []string{artist.Name, strconv.Itoa(artist.Streams), artist.MostPopularTrack, strconv.Itoa(artist.Popularity)})
	}
	return rows
}

func trackRows(tracks []summary.TrackStat) [][]string {
	var rows [][]string
	for _, track := range tracks {
		rows = append(rows, []string{track.Name, track.Artist, track.Album, strconv.Itoa(track.Popularity)})
	}
	return rows
}

func writeEmailTable(out *strings.Builder, headers []string, rows [][]string) {
	if len(rows) == 0 {
		out.WriteString("<div>No listens found.</div>\n")
		return
	}
	out.WriteString("<table>\n<thead>\n<tr>")
	for _, header := range headers {
		fmt.Fprintf(out, "<th>%s</th>", html.EscapeString(header))
	}
	out.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range rows {
		out.WriteString("<tr>")
		for _, column := range row {
			fmt.Fprintf(out, "<td>%s</td>", html.EscapeString(column))
		}
		out.WriteString("</tr>\n")
	}
	out.WriteString("</tbody>\n</table>\n")
}
