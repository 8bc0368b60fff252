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
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acrompton/spotify-season-tools/internal/spotify"
)

func init() {
	rootCmd.AddCommand(authenticateCmd)
}

var authenticateCmd = &cobra.Command{
	Use:   "authenticate",
	Short: "Authorize this tool to read your Spotify listening history",
	Long: `Starts the OAuth authorization-code flow. Prints a URL to open in a
browser, listens on the configured redirect URL for the callback, and stores
the resulting credential in the database.`,
	RunE: runAuthenticate,
}

func runAuthenticate(cmd *cobra.Command, args []string) error {
	db, user, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	redirect, err := url.Parse(viper.GetString("redirect_url"))
	if err != nil {
		return fmt.Errorf("parsing redirect_url: %w", err)
	}

	cfg := spotify.OAuthConfig(
		viper.GetString("client_id"),
		viper.GetString("client_secret"),
		redirect.String())
	source := spotify.NewStoredTokenSource(cfg, db, user)

	state := uuid.New().String()
	fmt.Println("Open this URL in a browser to authorize:")
	fmt.Println(cfg.AuthCodeURL(state))

	type callback struct {
		code string
		err  error
	}
	got := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			got <- callback{err: fmt.Errorf("state mismatch in callback")}
			return
		}
		if e := r.FormValue("error"); e != "" {
			http.Error(w, "authorization denied", http.StatusBadRequest)
			got <- callback{err: fmt.Errorf("authorization denied: %v", e)}
			return
		}
		fmt.Fprintln(w, "Authorized! You can close this window.")
		got <- callback{code: r.FormValue("code")}
	})

	server := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			got <- callback{err: fmt.Errorf("callback server: %w", err)}
		}
	}()

	cb := <-got
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
	if cb.err != nil {
		return cb.err
	}

	if err := source.Exchange(context.Background(), cb.code); err != nil {
		return err
	}
	fmt.Printf("Stored credentials for %q\n", user)
	return nil
}
