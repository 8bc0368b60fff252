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
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acrompton/spotify-season-tools/internal/spotify"
	"github.com/acrompton/spotify-season-tools/internal/store"
)

// reportCacheTTL is how long a generated season summary is served from the
// database before it is rebuilt from the API.
const reportCacheTTL = time.Hour

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the seasonal report over HTTP",
	Long: `Runs an HTTP server with a browser-driven OAuth flow and a JSON season
summary endpoint. Configuration is read from flags, the config file, and a
.env file in the working directory if one exists.`,
	RunE: runServe,
}

type server struct {
	db     *store.Store
	user   string
	client *spotify.Client
	source *spotify.StoredTokenSource

	mu           sync.Mutex
	pendingState string
}

func runServe(cmd *cobra.Command, args []string) error {
	// Optional; local development keeps credentials in .env.
	godotenv.Load()

	db, user, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := spotify.OAuthConfig(
		viper.GetString("client_id"),
		viper.GetString("client_secret"),
		viper.GetString("redirect_url"))
	source := spotify.NewStoredTokenSource(cfg, db, user)

	s := &server{
		db:     db,
		user:   user,
		client: spotify.NewClient(source),
		source: source,
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/login", func(c *gin.Context) {
		state := uuid.New().String()
		s.mu.Lock()
		s.pendingState = state
		s.mu.Unlock()
		c.Redirect(http.StatusFound, cfg.AuthCodeURL(state))
	})

	router.GET("/callback", func(c *gin.Context) {
		s.mu.Lock()
		expected := s.pendingState
		s.pendingState = ""
		s.mu.Unlock()
		if expected == "" || c.Query("state") != expected {
			c.JSON(http.StatusBadRequest, gin.H{"message": "state mismatch"})
			return
		}
		if err := s.source.Exchange(c.Request.Context(), c.Query("code")); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
			return
		}
		c.Redirect(http.StatusFound, "/season-summary")
	})

	router.GET("/season-summary", s.seasonSummary)

	fmt.Printf("Listening on %s\n", serveAddr)
	return router.Run(serveAddr)
}

const seasonSummaryRoute = "season-summary"

func (s *server) seasonSummary(c *gin.Context) {
	cached, err := s.db.GetCachedReport(s.user, seasonSummaryRoute, reportCacheTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if cached != "" {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
		return
	}

	report, err := generateSeasonReport(c.Request.Context(), s.client, true)
	if err != nil {
		if spotify.IsAuthError(err) {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
		return
	}

	body, err := json.Marshal(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if err := s.db.SaveReport(s.user, seasonSummaryRoute, string(body)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
