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

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acrompton/spotify-season-tools/internal/spotify"
	"github.com/acrompton/spotify-season-tools/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "spotify-season-tools",
	Short: "Tools for summarizing your Spotify listening history",
	Long: `Builds seasonal listening reports from the Spotify Web API: top artists
and tracks, stream counts from your recently-played feed, hourly listening
habits, and audio-feature trends. Supports archiving plays to a local
database, emailing reports, and serving them over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.spotify-season-tools.yaml)")
	rootCmd.PersistentFlags().String("client_id", "", "Spotify application client ID")
	rootCmd.PersistentFlags().String("client_secret", "", "Spotify application client secret")
	rootCmd.PersistentFlags().String("user", "", "Name of the local user to operate on")
	rootCmd.PersistentFlags().String("database", "season.db", "Path to the SQLite database")
	rootCmd.PersistentFlags().String("redirect_url", "http://localhost:8080/callback", "OAuth redirect URL registered with the Spotify application")
	viper.BindPFlag("client_id", rootCmd.PersistentFlags().Lookup("client_id"))
	viper.BindPFlag("client_secret", rootCmd.PersistentFlags().Lookup("client_secret"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("redirect_url", rootCmd.PersistentFlags().Lookup("redirect_url"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".spotify-season-tools" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".spotify-season-tools")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// openStore opens the configured database, creating it if needed, and makes
// sure the configured user exists.
func openStore() (*store.Store, string, error) {
	user := viper.GetString("user")
	if user == "" {
		return nil, "", fmt.Errorf("--user is required")
	}
	db, err := store.New(viper.GetString("database"))
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}
	if err := db.CreateUser(user); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("creating user: %w", err)
	}
	return db, user, nil
}

// newSpotifyClient builds a Spotify client whose tokens are loaded from and
// persisted to the given store.
func newSpotifyClient(db *store.Store, user string) *spotify.Client {
	cfg := spotify.OAuthConfig(
		viper.GetString("client_id"),
		viper.GetString("client_secret"),
		viper.GetString("redirect_url"))
	source := spotify.NewStoredTokenSource(cfg, db, user)
	return spotify.NewClient(source)
}
